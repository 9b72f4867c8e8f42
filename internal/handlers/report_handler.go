package handlers

import (
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ReportHandler struct {
	reports       *services.ReportService
	claims        *services.ClaimService
	maxImageBytes int64
}

func NewReportHandler(reports *services.ReportService, claims *services.ClaimService, maxImageBytes int64) *ReportHandler {
	return &ReportHandler{reports: reports, claims: claims, maxImageBytes: maxImageBytes}
}

// List returns reports filtered by query params (public).
func (h *ReportHandler) List(c *fiber.Ctx) error {
	resp, err := h.reports.List(c.UserContext(), services.ListReportsInput{
		Category:   c.Query("category"),
		Status:     c.Query("status"),
		Type:       c.Query("type"),
		ReporterID: c.Query("reporterId"),
		Page:       c.QueryInt("page", 1),
		Limit:      c.QueryInt("limit", services.DefaultPageSize),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *ReportHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid_id", "Invalid report ID")
	}

	report, err := h.reports.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// Create accepts JSON or a multipart form with an optional "image" file.
func (h *ReportHandler) Create(c *fiber.Ctx) error {
	id, _ := identity.FromContext(c)

	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid_body", "Invalid request body")
	}

	image, err := readImage(c, h.maxImageBytes)
	if err != nil {
		return badRequest(c, "invalid_image", "Could not read image")
	}

	report, err := h.reports.Create(c.UserContext(), services.CreateReportInput{
		ReporterID:  id.UserID,
		Anonymous:   id.Anonymous,
		Type:        req.Type,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Image:       image,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

func (h *ReportHandler) Delete(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid_id", "Invalid report ID")
	}

	if err := h.reports.Delete(c.UserContext(), reportID, identity.GetUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkClaimed lets the owner close a report without approving a claim.
func (h *ReportHandler) MarkClaimed(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid_id", "Invalid report ID")
	}

	report, err := h.claims.MarkReportClaimed(c.UserContext(), reportID, identity.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}
