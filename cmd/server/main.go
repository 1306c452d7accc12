package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"renthub/internal/adapters/http/middleware"
	"renthub/internal/adapters/http/routes"
	"renthub/internal/adapters/persistence/models"
	"renthub/internal/adapters/persistence/repositories"
	"renthub/internal/config"
	"renthub/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}
	log.Println("Database migration completed")

	// Seed demo data in development
	if cfg.IsDev() {
		if err := config.SeedDemoData(db); err != nil {
			log.Printf("Warning: Failed to seed demo data: %v", err)
		}
	}

	// Realtime hub and notification service shared by HTTP and jobs
	hub := services.NewSSEHub()
	notifyService := services.NewNotificationService(repositories.NewNotificationRepository(db), hub)

	// Recurring jobs: reminders, monthly generation, overdue detection
	scheduler := services.NewSchedulerService(
		repositories.NewLeaseRepository(db),
		repositories.NewPaymentRepository(db),
		notifyService,
	)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "RentHub API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	routes.Setup(app, db, cfg, hub)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server stopped gracefully")
}
