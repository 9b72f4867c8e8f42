package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/models"
	"github.com/google/uuid"
)

// CreateReportRequest is the JSON (or multipart form) body of POST /api/reports.
// Multipart requests may add an "image" file part.
type CreateReportRequest struct {
	Type        string `json:"type" form:"type"`
	Description string `json:"description" form:"description"`
	Category    string `json:"category" form:"category"`
	Location    string `json:"location" form:"location"`
}

type ReportListResponse struct {
	Reports    []models.Report `json:"reports"`
	Pagination PaginationMeta  `json:"pagination"`
}

// ReportSummary is a read-only snapshot of a report attached to claim listings.
// It is nil when the report no longer exists.
type ReportSummary struct {
	ID          uuid.UUID  `json:"id"`
	Type        string     `json:"type"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	Status      string     `json:"status"`
	ClaimedAt   *time.Time `json:"claimedAt,omitempty"`
}

func NewReportSummary(r *models.Report) *ReportSummary {
	if r == nil {
		return nil
	}
	return &ReportSummary{
		ID:          r.ID,
		Type:        r.Type,
		Description: r.Description,
		Category:    r.Category,
		ImageURL:    r.ImageURL,
		Status:      r.Status,
		ClaimedAt:   r.ClaimedAt,
	}
}
