package handlers

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	retention *services.RetentionService
}

func NewAdminHandler(retention *services.RetentionService) *AdminHandler {
	return &AdminHandler{retention: retention}
}

// Sweep runs the retention sweep now, ignoring the once-per-day ledger.
func (h *AdminHandler) Sweep(c *fiber.Ctx) error {
	result, err := h.retention.Sweep(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	slog.Info("forced retention sweep",
		"user_id", c.Locals("user_id"),
		"deleted", result.Deleted,
		"failed", result.Failed,
	)
	return c.JSON(dto.SweepResponse{
		Candidates:     result.Candidates,
		Deleted:        result.Deleted,
		Skipped:        result.Skipped,
		Failed:         result.Failed,
		OrphanedClaims: result.OrphanedClaims,
		Cutoff:         result.Cutoff.UTC().Format(time.RFC3339),
	})
}
