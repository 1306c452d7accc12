package routes

import (
	"renthub/internal/adapters/http/handlers"
	"renthub/internal/adapters/http/middleware"
	"renthub/internal/adapters/persistence/repositories"
	"renthub/internal/config"
	"renthub/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, hub *services.SSEHub) {
	// Initialize repositories
	appRepo := repositories.NewApplicationRepository(db)
	propertyRepo := repositories.NewPropertyRepository(db)
	leaseRepo := repositories.NewLeaseRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)

	// Initialize services
	notifyService := services.NewNotificationService(notificationRepo, hub)
	stripeService := services.NewStripeService(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
	applicationService := services.NewApplicationService(appRepo, propertyRepo, notifyService)
	paymentService := services.NewPaymentService(appRepo, propertyRepo, leaseRepo, paymentRepo, stripeService, notifyService)
	leaseService := services.NewLeaseService(db, notifyService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	applicationHandler := handlers.NewApplicationHandler(applicationService, paymentService, leaseService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	webhookHandler := handlers.NewWebhookHandler(stripeService, leaseService, paymentService)
	notificationHandler := handlers.NewNotificationHandler(notifyService)
	eventsHandler := handlers.NewEventsHandler(hub)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// Registered ahead of the auth middleware: processor webhooks
	// authenticate by signature, not JWT
	apiV1.Post("/payments/webhook", webhookHandler.HandleStripe)

	apiV1.Use(middleware.AuthMiddleware(cfg))

	// Applications
	applications := apiV1.Group("/applications")
	applications.Post("/", middleware.TenantOnly(), applicationHandler.Submit)
	applications.Get("/", applicationHandler.List)
	applications.Get("/:id", applicationHandler.GetByID)
	applications.Put("/:id/status", middleware.ManagerOnly(), applicationHandler.SetStatus)
	applications.Get("/:id/initial-payment", middleware.TenantOnly(), applicationHandler.GetPaymentBreakdown)
	applications.Post("/:id/complete-payment", middleware.TenantOnly(), applicationHandler.CompletePayment)

	// Payments
	payments := apiV1.Group("/payments")
	payments.Post("/create-initial-intent", middleware.TenantOnly(), middleware.PaymentRateLimiter(), paymentHandler.CreateInitialIntent)
	payments.Post("/create-intent", middleware.TenantOnly(), middleware.PaymentRateLimiter(), paymentHandler.CreateRentIntent)
	payments.Get("/tenant/:id", middleware.TenantOnly(), paymentHandler.ListForTenant)
	payments.Get("/manager/:id", middleware.ManagerOrAdmin(), paymentHandler.ListForManager)

	// Notifications
	notifications := apiV1.Group("/notifications")
	notifications.Get("/", notificationHandler.List)
	notifications.Patch("/:id/read", notificationHandler.MarkRead)

	// Realtime events
	apiV1.Get("/events", eventsHandler.Stream)
}
