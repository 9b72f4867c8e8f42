package middleware

import (
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/identity"
	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

// RequireIdentity runs after JWTProtected. It rejects tokens without a
// subject and stores the resolved identity for handlers.
func RequireIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := identity.Resolve(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Code:    "unauthorized",
				Message: "Unauthorized: " + err.Error(),
			})
		}
		identity.Store(c, id)
		c.Locals("user_id", id.UserID)

		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.Scope().SetUser(sentry.User{ID: id.UserID})
		}
		return c.Next()
	}
}
