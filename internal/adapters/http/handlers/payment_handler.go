package handlers

import (
	"renthub/internal/core/domain"
	"renthub/internal/core/services"
	"renthub/internal/pkg/pagination"
	"renthub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	paymentService *services.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// CreateInitialIntentRequest represents an initial payment intent request
type CreateInitialIntentRequest struct {
	ApplicationID uint `json:"application_id"`
}

// CreateInitialIntent requests a processor charge intent for the initial
// payment. The amount is computed server-side from the property's pricing.
func (h *PaymentHandler) CreateInitialIntent(c *fiber.Ctx) error {
	var req CreateInitialIntentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.ApplicationID == 0 {
		return response.BadRequest(c, "Application is required")
	}

	userID, _ := c.Locals("userID").(uint)

	result, err := h.paymentService.CreateInitialPaymentIntent(c.Context(), req.ApplicationID, userID)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, "Payment intent created successfully", result)
}

// CreateRentIntentRequest represents a rent payment intent request
type CreateRentIntentRequest struct {
	LeaseID uint    `json:"lease_id"`
	Amount  float64 `json:"amount"`
}

// CreateRentIntent requests a processor charge intent for a rent payment
func (h *PaymentHandler) CreateRentIntent(c *fiber.Ctx) error {
	var req CreateRentIntentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.LeaseID == 0 {
		return response.BadRequest(c, "Lease is required")
	}

	userID, _ := c.Locals("userID").(uint)

	result, err := h.paymentService.CreateRentPaymentIntent(c.Context(), req.LeaseID, req.Amount, domain.PaymentMonthlyRent, userID)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, "Payment intent created successfully", result)
}

// ListForTenant lists the tenant's own payments
func (h *PaymentHandler) ListForTenant(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid tenant ID")
	}

	userID, _ := c.Locals("userID").(uint)
	if uint(id) != userID {
		return response.Forbidden(c, "You can only view your own payments")
	}

	params := pagination.GetParams(c)
	payments, total, err := h.paymentService.ListByTenant(c.Context(), uint(id), params.Offset, params.Limit)
	if err != nil {
		return response.FromError(c, err)
	}

	items := make([]interface{}, 0, len(payments))
	for _, payment := range payments {
		items = append(items, payment.ToResponse())
	}

	return response.Success(c, "Payments retrieved successfully", pagination.NewResponse(items, params, total))
}

// ListForManager lists payments across the manager's properties
func (h *PaymentHandler) ListForManager(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid manager ID")
	}

	userID, _ := c.Locals("userID").(uint)
	if uint(id) != userID {
		return response.Forbidden(c, "You can only view payments for your own properties")
	}

	params := pagination.GetParams(c)
	payments, total, err := h.paymentService.ListByManager(c.Context(), uint(id), params.Offset, params.Limit)
	if err != nil {
		return response.FromError(c, err)
	}

	items := make([]interface{}, 0, len(payments))
	for _, payment := range payments {
		items = append(items, payment.ToResponse())
	}

	return response.Success(c, "Payments retrieved successfully", pagination.NewResponse(items, params, total))
}
