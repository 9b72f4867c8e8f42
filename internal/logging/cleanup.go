package logging

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/models"
	"gorm.io/gorm"
)

const retentionDays = 30

// StartCleanup runs a daily goroutine that prunes system_logs and claim
// counters older than 30 days. Past-day counters are never read again.
func StartCleanup(db *gorm.DB, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				PruneOnce(db, time.Now().UTC())
			case <-done:
				return
			}
		}
	}()
}

// PruneOnce deletes expired system logs and daily claim counters relative to now.
func PruneOnce(db *gorm.DB, now time.Time) {
	cutoff := now.AddDate(0, 0, -retentionDays)

	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		slog.Error("log cleanup failed", "action", "prune_system_logs", "error", result.Error)
	} else if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "deleted", result.RowsAffected)
	}

	// day keys are YYYY-MM-DD so string order is chronological
	result = db.Where("day < ?", cutoff.Format("2006-01-02")).Delete(&models.DailyClaimCounter{})
	if result.Error != nil {
		slog.Error("claim counter cleanup failed", "action", "prune_claim_counters", "error", result.Error)
	} else if result.RowsAffected > 0 {
		slog.Info("claim counter cleanup completed", "deleted", result.RowsAffected)
	}
}
