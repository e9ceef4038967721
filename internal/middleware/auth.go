package middleware

import (
	"github.com/ahmetcoskunkizilkaya/phase-progress-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/phase-progress-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/phase-progress-backend/internal/identity"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

// Identity resolves the acting user for private routes.
// With a JWT secret configured the bearer token's sub claim is the user id;
// otherwise every request acts as cfg.DefaultUserID.
func Identity(cfg *config.Config) fiber.Handler {
	if !cfg.AuthEnabled() {
		return func(c *fiber.Ctx) error {
			c.Locals(identity.LocalsKey, cfg.DefaultUserID)
			return c.Next()
		}
	}

	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		SuccessHandler: func(c *fiber.Ctx) error {
			sub, err := identity.SubjectFromToken(c)
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
					Error: "Unauthorized: token has no subject",
				})
			}
			c.Locals(identity.LocalsKey, sub)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: "Unauthorized: invalid or expired token",
			})
		},
	})
}
