package models

import (
	"time"

	"github.com/google/uuid"
)

// DailyClaimCounter counts claims created by one user on one calendar day (YYYY-MM-DD).
type DailyClaimCounter struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    string    `gorm:"size:128;not null;uniqueIndex:idx_daily_claim_counters_user_day,priority:1" json:"userId"`
	Day       string    `gorm:"size:10;not null;uniqueIndex:idx_daily_claim_counters_user_day,priority:2;index" json:"day"`
	Count     int       `gorm:"not null;default:0" json:"count"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (DailyClaimCounter) TableName() string {
	return "daily_claim_counters"
}
