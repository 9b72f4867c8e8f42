// Package identity turns a verified JWT into the caller's user id.
package identity

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const localsKey = "identity"

var (
	ErrNoToken    = errors.New("invalid token in context")
	ErrBadClaims  = errors.New("invalid claims")
	ErrMissingSub = errors.New("missing sub claim")
)

// Identity is the authenticated caller. UserID is the identity provider's
// stable subject; it is opaque to this service.
type Identity struct {
	UserID    string
	Anonymous bool
}

// Resolve reads the JWT that jwtware stored under Locals("user").
func Resolve(c *fiber.Ctx) (Identity, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return Identity{}, ErrNoToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrBadClaims
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Identity{}, ErrMissingSub
	}

	anonymous, _ := claims["anonymous"].(bool)
	if provider, _ := claims["provider"].(string); provider == "anonymous" {
		anonymous = true
	}
	return Identity{UserID: sub, Anonymous: anonymous}, nil
}

// Store attaches id to the request so handlers resolve it only once.
func Store(c *fiber.Ctx, id Identity) {
	c.Locals(localsKey, id)
}

// FromContext returns the identity stored by the identity middleware, or
// resolves it from the token when the middleware did not run.
func FromContext(c *fiber.Ctx) (Identity, bool) {
	if id, ok := c.Locals(localsKey).(Identity); ok {
		return id, true
	}
	id, err := Resolve(c)
	if err != nil {
		return Identity{}, false
	}
	return id, true
}

// GetUserID returns the caller's user id or "" when unauthenticated.
func GetUserID(c *fiber.Ctx) string {
	id, _ := FromContext(c)
	return id.UserID
}
