package ratelimit

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCounter keeps counters in the daily_claim_counters table.
type GormCounter struct {
	db *gorm.DB
}

func NewGormCounter(db *gorm.DB) *GormCounter {
	return &GormCounter{db: db}
}

func (c *GormCounter) Get(ctx context.Context, userID, day string) (int, error) {
	var counts []int
	if err := c.db.WithContext(ctx).Model(&models.DailyClaimCounter{}).
		Where("user_id = ? AND day = ?", userID, day).
		Limit(1).
		Pluck("count", &counts).Error; err != nil {
		return 0, err
	}
	if len(counts) == 0 {
		return 0, nil
	}
	return counts[0], nil
}

// Increment upserts the (user, day) row and returns the new count in one statement.
func (c *GormCounter) Increment(ctx context.Context, userID, day string) (int, error) {
	row := models.DailyClaimCounter{
		ID:     uuid.New(),
		UserID: userID,
		Day:    day,
		Count:  1,
	}
	err := c.db.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "day"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"count":      gorm.Expr("daily_claim_counters.count + 1"),
				"updated_at": time.Now(),
			}),
		},
		clause.Returning{Columns: []clause.Column{{Name: "count"}}},
	).Create(&row).Error
	if err != nil {
		return 0, err
	}
	return row.Count, nil
}
