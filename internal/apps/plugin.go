package apps

import (
	"github.com/ahmetcoskunkizilkaya/phase-progress-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Plugin defines the interface every feature module must implement.
type Plugin interface {
	// ID returns the unique plugin identifier. It is also the route prefix under /api.
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	// Only migrated in online mode.
	Models() []interface{}

	// RegisterRoutes mounts plugin routes on the given Fiber group.
	// The group is already prefixed with /api/<ID> and has the identity middleware applied.
	RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config)
}
