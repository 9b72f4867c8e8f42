package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReportStatusOpen    = "open"
	ReportStatusClaimed = "claimed"

	ReportTypeLost  = "lost"
	ReportTypeFound = "found"
)

// ReportCategories is the closed set of item categories a report may use.
var ReportCategories = []string{
	"electronics", "documents", "keys", "wallets", "bags",
	"clothing", "jewelry", "pets", "accessories", "other",
}

// Report is a posted lost/found item listing. ReporterID is the external identity of its owner.
type Report struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReporterID  string     `gorm:"size:128;not null;index" json:"reporterId"`
	Type        string     `gorm:"size:10;not null;default:'lost'" json:"type"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Category    string     `gorm:"size:50;not null;index" json:"category"`
	Location    string     `gorm:"size:255" json:"location,omitempty"`
	ImageURL    string     `gorm:"size:1024" json:"imageUrl,omitempty"`
	Status      string     `gorm:"size:20;not null;default:'open';index:idx_reports_status_claimed_at,priority:1" json:"status"`
	ClaimedAt   *time.Time `gorm:"index:idx_reports_status_claimed_at,priority:2" json:"claimedAt,omitempty"`
	CreatedAt   time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (Report) TableName() string {
	return "reports"
}

// IsValidCategory reports whether c belongs to ReportCategories.
func IsValidCategory(c string) bool {
	for _, known := range ReportCategories {
		if known == c {
			return true
		}
	}
	return false
}
