package progress

import (
	"github.com/ahmetcoskunkizilkaya/phase-progress-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProgressPlugin struct {
	service *ProgressService
}

func New(service *ProgressService) *ProgressPlugin {
	return &ProgressPlugin{service: service}
}

// NewStore picks the store for the configured mode. db may be nil in offline mode.
func NewStore(cfg *config.Config, db *gorm.DB) Store {
	if cfg.OfflineMode {
		return NewMemoryStore()
	}
	return NewGormStore(db)
}

func (p *ProgressPlugin) ID() string { return "progress" }

func (p *ProgressPlugin) Models() []interface{} {
	return []interface{}{
		&ProgressRecord{},
	}
}

func (p *ProgressPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	handler := NewProgressHandler(p.service, !cfg.AuthEnabled())

	router.Get("/", handler.GetProgress)
	router.Post("/", handler.UpdateProgress)
	router.Post("/update-after-evaluation", handler.RecordEvaluation)
	router.Post("/phase", handler.ChangePhase)
	router.Post("/onboarding-complete", handler.CompleteOnboarding)
}
