package handlers

import (
	"log"
	"strconv"

	"renthub/internal/core/services"
	"renthub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// WebhookHandler handles payment processor webhooks
type WebhookHandler struct {
	stripeService  *services.StripeService
	leaseService   *services.LeaseService
	paymentService *services.PaymentService
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(
	stripeService *services.StripeService,
	leaseService *services.LeaseService,
	paymentService *services.PaymentService,
) *WebhookHandler {
	return &WebhookHandler{
		stripeService:  stripeService,
		leaseService:   leaseService,
		paymentService: paymentService,
	}
}

// HandleStripe processes a signed Stripe event. The raw body must be used
// for verification; any re-serialization breaks the signature.
//
// Events may be redelivered, so every downstream call is idempotent and a
// repeat delivery answers 200 without side effects.
func (h *WebhookHandler) HandleStripe(c *fiber.Ctx) error {
	event, err := h.stripeService.ParseWebhook(c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		log.Printf("webhook rejected: %v", err)
		return response.BadRequest(c, "Invalid webhook signature")
	}

	if event.Type != "payment_intent.succeeded" {
		// Acknowledge everything else so the processor stops retrying
		return response.Success(c, "Event ignored", nil)
	}

	metadata := event.Intent.Metadata

	if raw, ok := metadata["application_id"]; ok {
		appID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			log.Printf("webhook %s carries bad application_id %q", event.Intent.ID, raw)
			return response.BadRequest(c, "Invalid application reference")
		}

		// callerID 0: the signature already authenticated the processor
		result, err := h.leaseService.CompleteInitialPayment(c.Context(), uint(appID), 0, event.Intent.ID, nil)
		if err != nil {
			log.Printf("webhook %s failed to complete application %d: %v", event.Intent.ID, appID, err)
			return response.FromError(c, err)
		}
		if result.AlreadyCompleted {
			return response.Success(c, "Payment was already completed", nil)
		}
		return response.Success(c, "Lease activated", nil)
	}

	if raw, ok := metadata["payment_id"]; ok {
		paymentID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			log.Printf("webhook %s carries bad payment_id %q", event.Intent.ID, raw)
			return response.BadRequest(c, "Invalid payment reference")
		}

		amount := float64(event.Intent.AmountReceived) / 100
		if _, err := h.paymentService.RecordRentPayment(c.Context(), uint(paymentID), amount, event.Intent.ID); err != nil {
			log.Printf("webhook %s failed to record payment %d: %v", event.Intent.ID, paymentID, err)
			return response.FromError(c, err)
		}
		return response.Success(c, "Payment recorded", nil)
	}

	log.Printf("webhook %s succeeded without known metadata, ignoring", event.Intent.ID)
	return response.Success(c, "Event ignored", nil)
}
