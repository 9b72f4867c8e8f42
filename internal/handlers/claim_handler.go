package handlers

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ClaimHandler struct {
	claims        *services.ClaimService
	maxImageBytes int64
}

func NewClaimHandler(claims *services.ClaimService, maxImageBytes int64) *ClaimHandler {
	return &ClaimHandler{claims: claims, maxImageBytes: maxImageBytes}
}

// Create files a claim. Multipart requests may attach an "image" as proof.
func (h *ClaimHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid_body", "Invalid request body")
	}

	reportID, err := uuid.Parse(strings.TrimSpace(req.ReportID))
	if err != nil {
		return badRequest(c, "invalid_report_id", "reportId must be a valid report ID")
	}

	image, err := readImage(c, h.maxImageBytes)
	if err != nil {
		return badRequest(c, "invalid_image", "Could not read image")
	}

	claim, err := h.claims.CreateClaim(c.UserContext(), services.CreateClaimInput{
		ReportID:    reportID,
		ClaimantID:  identity.GetUserID(c),
		Description: req.Description,
		ProofImage:  image,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(claim)
}

// Decide approves or rejects a pending claim on one of the caller's reports.
func (h *ClaimHandler) Decide(c *fiber.Ctx) error {
	claimID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid_id", "Invalid claim ID")
	}

	var req dto.DecideClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid_body", "Invalid request body")
	}

	action := strings.ToLower(strings.TrimSpace(req.Action))
	claim, err := h.claims.DecideClaim(c.UserContext(), claimID, identity.GetUserID(c), action)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(claim)
}

func (h *ClaimHandler) List(c *fiber.Ctx) error {
	resp, err := h.claims.ListClaimsForUser(c.UserContext(), identity.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
