package main

import (
	"context"
	"log"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"techpals/config"
	"techpals/middleware"
	"techpals/routes"
	"techpals/utils"
	"techpals/worker"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Error reporting
	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Warnf("Sentry initialization failed: %v", err)
		}
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Optional redis for token revocation
	if err := config.ConnectRedis(); err != nil {
		logger.Warnf("Redis unavailable: %v", err)
	}

	// Create Fiber app
	app := fiber.New()

	app.Use(middleware.CORS())

	// Due-date reminder worker
	mailer := utils.NewMailer(log.New(os.Stdout, "MAIL: ", log.LstdFlags))
	reminderWorker := worker.NewReminderWorker(config.DB, mailer, log.New(os.Stdout, "REMINDER: ", log.LstdFlags))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reminderWorker.Start(ctx)

	// Setup routes
	routes.SetupRoutes(app, config.DB)

	// Uploaded profile images, chat attachments and blog images
	app.Static("/media", config.AppConfig.UploadDir)

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	})

	// Start server
	logger.Infof("Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
