package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ClaimStatusPending  = "pending"
	ClaimStatusApproved = "approved"
	ClaimStatusRejected = "rejected"
)

// Claim is a user's assertion that a report's item belongs to them.
// ReportID is a weak reference: claims outlive their report and get ReportDeletedAt stamped instead.
type Claim struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReportID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_claims_report_claimant,priority:1" json:"reportId"`
	ClaimantID      string     `gorm:"size:128;not null;index;index:idx_claims_report_claimant,priority:2" json:"claimantId"`
	Description     string     `gorm:"type:text;not null" json:"description"`
	ProofImageURL   string     `gorm:"size:1024" json:"proofImage,omitempty"`
	Status          string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ReportDeletedAt *time.Time `json:"reportDeletedAt,omitempty"`
	CreatedAt       time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (Claim) TableName() string {
	return "claims"
}

// IsTerminal reports whether the claim has already been approved or rejected.
func (c *Claim) IsTerminal() bool {
	return c.Status == ClaimStatusApproved || c.Status == ClaimStatusRejected
}
