package main

import (
	"context"
	"log"
	"os"

	"taskboard/config"
	"taskboard/middleware"
	"taskboard/routes"
	"taskboard/utils"
	"taskboard/worker"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
)

func main() {
	// Initialize logger
	logger := log.New(os.Stdout, "SERVER: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Initialize error reporting when a DSN is configured
	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Printf("Sentry initialization failed: %v", err)
		}
	}

	// Create Fiber app
	app := fiber.New()

	// Add CORS middleware
	app.Use(middleware.CORS())

	// Analytics cache; nil (no-op) when Redis is disabled
	cache := utils.NewCache(config.AppConfig.Redis, config.AppConfig.AnalyticsCacheTTL)

	// Initialize and start the orphan cleanup worker
	cleanupWorker := worker.NewCleanupWorker(config.DB, log.New(os.Stdout, "CLEANUP: ", log.LstdFlags), config.AppConfig.CleanupInterval)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cleanupWorker.Start(ctx)

	// Setup routes
	routes.SetupRoutes(app, config.DB, cache)

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	})

	// Start server
	logger.Printf("🚀 Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
