package handlers

import (
	"time"

	"renthub/internal/core/domain"
	"renthub/internal/core/services"
	"renthub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ApplicationHandler handles rental application endpoints
type ApplicationHandler struct {
	applicationService *services.ApplicationService
	paymentService     *services.PaymentService
	leaseService       *services.LeaseService
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(
	applicationService *services.ApplicationService,
	paymentService *services.PaymentService,
	leaseService *services.LeaseService,
) *ApplicationHandler {
	return &ApplicationHandler{
		applicationService: applicationService,
		paymentService:     paymentService,
		leaseService:       leaseService,
	}
}

// SubmitApplicationRequest represents submit application request
type SubmitApplicationRequest struct {
	PropertyID  uint   `json:"property_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Message     string `json:"message,omitempty"`
}

// Submit creates a new application for the authenticated tenant
func (h *ApplicationHandler) Submit(c *fiber.Ctx) error {
	var req SubmitApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.PropertyID == 0 {
		return response.BadRequest(c, "Property is required")
	}

	userID, _ := c.Locals("userID").(uint)

	input := &services.SubmitApplicationInput{
		PropertyID:  req.PropertyID,
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Message:     req.Message,
	}

	app, err := h.applicationService.Submit(c.Context(), input, userID)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, "Application submitted successfully", fiber.Map{
		"application": app.ToResponse(),
	})
}

// List lists applications visible to the caller
func (h *ApplicationHandler) List(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(uint)
	role, _ := c.Locals("role").(string)

	apps, err := h.applicationService.ListForUser(c.Context(), userID, domain.Role(role))
	if err != nil {
		return response.FromError(c, err)
	}

	items := make([]interface{}, 0, len(apps))
	for _, app := range apps {
		items = append(items, app.ToResponse())
	}

	return response.Success(c, "Applications retrieved successfully", fiber.Map{
		"applications": items,
	})
}

// GetByID gets one application. Tenants see their own, managers see
// applications against their properties.
func (h *ApplicationHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid application ID")
	}

	userID, _ := c.Locals("userID").(uint)
	role, _ := c.Locals("role").(string)

	app, err := h.applicationService.GetByID(c.Context(), uint(id))
	if err != nil {
		return response.FromError(c, err)
	}

	if role == string(domain.RoleTenant) && app.TenantID != userID {
		return response.Forbidden(c, "You don't have access to this application")
	}
	if role == string(domain.RoleManager) && (app.Property == nil || app.Property.ManagerID != userID) {
		return response.Forbidden(c, "You don't have access to this application")
	}

	return response.Success(c, "Application retrieved successfully", fiber.Map{
		"application": app.ToResponse(),
	})
}

// SetStatusRequest represents a manager decision
type SetStatusRequest struct {
	Status string `json:"status"`
}

// SetStatus applies a manager decision to a pending application
func (h *ApplicationHandler) SetStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid application ID")
	}

	var req SetStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	decision, ok := domain.ParseDecision(req.Status)
	if !ok {
		return response.FromError(c, services.ErrInvalidTransition)
	}

	userID, _ := c.Locals("userID").(uint)

	app, err := h.applicationService.SetStatus(c.Context(), uint(id), decision, userID)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Application status updated successfully", fiber.Map{
		"application": app.ToResponse(),
	})
}

// GetPaymentBreakdown returns the cost to activate the application's lease
func (h *ApplicationHandler) GetPaymentBreakdown(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid application ID")
	}

	result, err := h.paymentService.GetInitialPaymentBreakdown(c.Context(), uint(id))
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Payment breakdown retrieved successfully", result)
}

// CompletePaymentRequest represents a client-driven payment completion
type CompletePaymentRequest struct {
	ChargeRef string `json:"charge_ref,omitempty"`
	StartDate string `json:"start_date,omitempty"`
}

// CompletePayment finalizes the initial payment and activates the lease.
// Safe to retry: a second call returns the lease created by the first.
func (h *ApplicationHandler) CompletePayment(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid application ID")
	}

	var req CompletePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	var startDate *time.Time
	if req.StartDate != "" {
		parsed, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return response.BadRequest(c, "Invalid start date, expected YYYY-MM-DD")
		}
		startDate = &parsed
	}

	userID, _ := c.Locals("userID").(uint)

	result, err := h.leaseService.CompleteInitialPayment(c.Context(), uint(id), userID, req.ChargeRef, startDate)
	if err != nil {
		return response.FromError(c, err)
	}

	message := "Lease activated successfully"
	if result.AlreadyCompleted {
		message = "Payment was already completed"
	}
	return response.Success(c, message, result)
}
