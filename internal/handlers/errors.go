package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/services"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

var errorStatuses = []struct {
	kind   error
	status int
}{
	{services.ErrUnauthorized, fiber.StatusUnauthorized},
	{services.ErrValidation, fiber.StatusBadRequest},
	{services.ErrNotFound, fiber.StatusNotFound},
	{services.ErrForbidden, fiber.StatusForbidden},
	{services.ErrConflict, fiber.StatusConflict},
	{services.ErrRateLimited, fiber.StatusTooManyRequests},
	{services.ErrPayloadTooLarge, fiber.StatusRequestEntityTooLarge},
	{services.ErrUpload, fiber.StatusBadGateway},
}

func statusOf(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.kind) {
			return e.status
		}
	}
	return fiber.StatusInternalServerError
}

// respondError writes the error body for a service error. Anything that maps
// to 500 is logged and sent to Sentry.
func respondError(c *fiber.Ctx, err error) error {
	status := statusOf(err)
	if status >= fiber.StatusInternalServerError {
		slog.Error("request failed",
			"path", c.Path(),
			"method", c.Method(),
			"user_id", identity.GetUserID(c),
			"error", err,
		)
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
	} else if status == fiber.StatusBadGateway {
		slog.Warn("upstream failure", "path", c.Path(), "error", err)
	}

	return c.Status(status).JSON(dto.ErrorResponse{
		Error:   true,
		Code:    services.CodeOf(err),
		Message: services.MessageOf(err),
	})
}

func badRequest(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Code: code, Message: message,
	})
}
