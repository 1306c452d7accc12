package handlers

import (
	"errors"

	"renthub/internal/core/services"
	"renthub/internal/pkg/pagination"
	"renthub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// NotificationHandler handles notification endpoints
type NotificationHandler struct {
	notifyService *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifyService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notifyService: notifyService,
	}
}

// List lists the caller's notifications, newest first
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(uint)

	params := pagination.GetParams(c)
	notifications, total, err := h.notifyService.ListForUser(c.Context(), userID, params.Offset, params.Limit)
	if err != nil {
		return response.FromError(c, err)
	}

	items := make([]interface{}, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, n.ToResponse())
	}

	return response.Success(c, "Notifications retrieved successfully", pagination.NewResponse(items, params, total))
}

// MarkRead marks one of the caller's notifications as read
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid notification ID")
	}

	userID, _ := c.Locals("userID").(uint)

	if err := h.notifyService.MarkRead(c.Context(), uint(id), userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Notification not found")
		}
		return response.FromError(c, err)
	}

	return response.Success(c, "Notification marked as read", nil)
}
