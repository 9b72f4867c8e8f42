package handlers

import (
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/models"
	"github.com/gofiber/fiber/v2"
)

// ConfigHandler serves the settings clients need to render forms and
// explain limits. The response is built once at startup.
type ConfigHandler struct {
	resp dto.ClientConfigResponse
}

func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{resp: dto.ClientConfigResponse{
		Categories:           models.ReportCategories,
		ReportTypes:          []string{models.ReportTypeLost, models.ReportTypeFound},
		DailyClaimLimit:      cfg.ClaimDailyLimit,
		RetentionGraceHours:  int(cfg.RetentionGracePeriod.Hours()),
		MaxImageBytes:        int64(cfg.MaxImageBytes),
		ImageUploadsEnabled:  cfg.MediaUploadURL != "",
		AutoRejectOnApproval: cfg.AutoRejectSiblings,
	}}
}

func (h *ConfigHandler) GetConfig(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "public, max-age=300")
	return c.JSON(h.resp)
}
