package repository

import (
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportsMatching returns a GORM scope applying the non-empty fields of f.
func ReportsMatching(f ReportFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Category != "" {
			db = db.Where("category = ?", f.Category)
		}
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.Type != "" {
			db = db.Where("type = ?", f.Type)
		}
		if f.ReporterID != "" {
			db = db.Where("reporter_id = ?", f.ReporterID)
		}
		return db
	}
}

// ActiveClaims filters to claims that still hold a stake in their report.
func ActiveClaims(reportID uuid.UUID, claimantID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("report_id = ? AND claimant_id = ? AND status IN ?",
			reportID, claimantID, []string{models.ClaimStatusPending, models.ClaimStatusApproved})
	}
}

func NewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}
