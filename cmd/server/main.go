package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/phase-progress-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/phase-progress-backend/internal/apps/progress"
	"github.com/ahmetcoskunkizilkaya/phase-progress-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/phase-progress-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/phase-progress-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/phase-progress-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/phase-progress-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/phase-progress-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/phase-progress-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/phase-progress-backend/internal/routes"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()
	slog.Info("starting", "mode", cfg.Mode(), "auth", cfg.AuthEnabled())

	if !cfg.OfflineMode && cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required in online mode")
		os.Exit(1)
	}

	metrics.Init()

	var pgLogHandler *logging.PGHandler
	cleanupDone := make(chan struct{})

	if !cfg.OfflineMode {
		// Database
		if err := database.Connect(cfg); err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}

		if err := database.MigrateShared(); err != nil {
			slog.Error("shared migration failed", "error", err)
			os.Exit(1)
		}

		// PostgreSQL log handler (ERROR+ async batch)
		pgLogHandler = logging.NewPGHandler(database.DB, 5*time.Second)
		slog.SetDefault(slog.New(logging.NewMultiHandler(
			logging.NewJSONHandler(os.Stdout),
			pgLogHandler,
		)))

		logging.StartCleanup(database.DB, cfg.LogRetention, cleanupDone)
	}

	// Services
	progressService := progress.NewProgressService(progress.NewStore(cfg, database.DB))

	plugins := []apps.Plugin{
		progress.New(progressService),
	}

	if !cfg.OfflineMode {
		for _, p := range plugins {
			if models := p.Models(); len(models) > 0 {
				if err := database.MigrateModels(models); err != nil {
					slog.Error("plugin migration failed", "plugin", p.ID(), "error", err)
					os.Exit(1)
				}
				slog.Info("plugin migrated", "plugin", p.ID(), "models", len(models))
			}
		}
	}

	// Seed the default user so identity-less requests have a record
	if cfg.SeedDefaultUser && cfg.DefaultUserID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := progressService.Provision(ctx, cfg.DefaultUserID)
		cancel()
		if err != nil {
			slog.Error("default user seed failed", "user_id", cfg.DefaultUserID, "error", err)
			os.Exit(1)
		}
		slog.Info("default user seeded", "user_id", cfg.DefaultUserID)
	}

	// Handlers
	healthHandler := handlers.NewHealthHandler(cfg, database.Ping)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(metrics.Middleware())
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	// Routes
	routes.Setup(app, cfg, database.DB, healthHandler, plugins)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	if pgLogHandler != nil {
		pgLogHandler.Stop()
	}
	sentry.Flush(2 * time.Second)

	if err := database.Close(); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: message})
}
