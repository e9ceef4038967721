package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/phase-progress-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/phase-progress-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/phase-progress-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/phase-progress-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/phase-progress-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	healthHandler *handlers.HealthHandler,
	plugins []apps.Plugin,
) {
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")

	// General API rate limiter per IP
	api.Use(limiter.New(limiter.Config{
		Max:               cfg.RateLimitPerMinute,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health (no identity required)
	api.Get("/health", healthHandler.Check)

	// Plugin routes - each plugin gets /api/<id> behind the identity middleware
	for _, p := range plugins {
		group := api.Group("/"+p.ID(), middleware.Identity(cfg))
		p.RegisterRoutes(group, db, cfg)
	}
}
