package models

import (
	"time"

	"github.com/google/uuid"
)

// SweepRun records that the retention sweep has been claimed for a given day.
type SweepRun struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RunDate   string    `gorm:"size:10;not null;uniqueIndex" json:"runDate"`
	StartedAt time.Time `gorm:"not null" json:"startedAt"`
	CreatedAt time.Time `json:"createdAt"`
}

func (SweepRun) TableName() string {
	return "sweep_runs"
}
