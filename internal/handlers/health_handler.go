package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/phase-progress-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/phase-progress-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	cfg  *config.Config
	ping func() error
}

func NewHealthHandler(cfg *config.Config, ping func() error) *HealthHandler {
	return &HealthHandler{cfg: cfg, ping: ping}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "disabled"
	if !h.cfg.OfflineMode {
		dbStatus = "ok"
		if err := h.ping(); err != nil {
			dbStatus = "unhealthy: " + err.Error()
		}
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Mode:      h.cfg.Mode(),
	})
}
