package identity

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// LocalsKey holds the resolved user identifier in Fiber context locals.
const LocalsKey = "user_id"

var (
	ErrNoIdentity   = errors.New("no user identity in context")
	ErrInvalidToken = errors.New("invalid token in context")
	ErrMissingSub   = errors.New("missing sub claim")
)

// UserID returns the user identifier resolved by the identity middleware.
func UserID(c *fiber.Ctx) (string, error) {
	if id, ok := c.Locals(LocalsKey).(string); ok && id != "" {
		return id, nil
	}
	return "", ErrNoIdentity
}

// SubjectFromToken extracts the sub claim from the JWT stored by jwtware.
func SubjectFromToken(c *fiber.Ctx) (string, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrMissingSub
	}
	return sub, nil
}
