package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/ratelimit"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/repository"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
)

// ErrSweepAlreadyRan is returned by RunDaily when today's sweep was already claimed.
var ErrSweepAlreadyRan = errors.New("retention sweep already ran today")

type SweepResult struct {
	Cutoff         time.Time
	Candidates     int
	Deleted        int
	Skipped        int
	Failed         int
	OrphanedClaims int64
}

// RetentionService deletes reports that have been claimed for longer than
// the grace period. Claims on deleted reports are kept and marked.
type RetentionService struct {
	store repository.Store
	grace time.Duration
	loc   *time.Location
	now   func() time.Time
}

func NewRetentionService(store repository.Store, grace time.Duration, loc *time.Location) *RetentionService {
	if loc == nil {
		loc = time.UTC
	}
	return &RetentionService{store: store, grace: grace, loc: loc, now: time.Now}
}

func (s *RetentionService) WithClock(now func() time.Time) *RetentionService {
	s.now = now
	return s
}

// Sweep deletes every report claimed before now-grace, each in its own
// transaction. A failed report is logged and counted; the sweep continues.
func (s *RetentionService) Sweep(ctx context.Context) (*SweepResult, error) {
	start := time.Now()
	defer func() { metrics.RetentionDurationSeconds.Observe(time.Since(start).Seconds()) }()

	cutoff := s.now().Add(-s.grace)
	result := &SweepResult{Cutoff: cutoff}

	candidates, err := s.store.ListClaimedBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list expired reports: %w", err)
	}
	result.Candidates = len(candidates)

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		deleted, orphaned, err := s.deleteExpired(ctx, candidate.ID, cutoff)
		switch {
		case err != nil:
			result.Failed++
			metrics.RetentionFailuresTotal.Inc()
			slog.Error("retention delete failed",
				"action", "retention_sweep", "report_id", candidate.ID.String(), "error", err)
		case deleted:
			result.Deleted++
			result.OrphanedClaims += orphaned
			metrics.RetentionReportsDeletedTotal.Inc()
		default:
			result.Skipped++
		}
	}

	slog.Info("retention sweep completed",
		"cutoff", cutoff.Format(time.RFC3339),
		"candidates", result.Candidates,
		"deleted", result.Deleted,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"claims_detached", result.OrphanedClaims)
	return result, nil
}

// deleteExpired re-reads the report under lock so a report that vanished or
// changed since the candidate scan is skipped rather than deleted.
func (s *RetentionService) deleteExpired(ctx context.Context, id uuid.UUID, cutoff time.Time) (bool, int64, error) {
	var deleted bool
	var orphaned int64

	err := s.store.InTx(ctx, func(tx repository.Tx) error {
		report, err := tx.LockReport(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if report.Status != models.ReportStatusClaimed || report.ClaimedAt == nil || !report.ClaimedAt.Before(cutoff) {
			return nil
		}
		if err := tx.DeleteReport(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			return err
		}
		orphaned, err = tx.MarkClaimsReportDeleted(ctx, id, s.now())
		if err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	return deleted, orphaned, nil
}

// RunDaily runs Sweep at most once per calendar day across all processes.
// The day's ledger entry is released when the sweep fails so a later
// trigger can retry.
func (s *RetentionService) RunDaily(ctx context.Context) (*SweepResult, error) {
	now := s.now()
	day := ratelimit.DayKey(now, s.loc)

	claimed, err := s.store.ClaimSweepRun(ctx, day, now)
	if err != nil {
		metrics.RetentionRunsTotal.WithLabelValues("failed").Inc()
		s.report(err, day)
		return nil, err
	}
	if !claimed {
		metrics.RetentionRunsTotal.WithLabelValues("skipped").Inc()
		slog.Info("retention sweep skipped", "day", day, "reason", "already ran")
		return nil, ErrSweepAlreadyRan
	}

	result, err := s.Sweep(ctx)
	if err != nil {
		metrics.RetentionRunsTotal.WithLabelValues("failed").Inc()
		s.report(err, day)
		if relErr := s.store.ReleaseSweepRun(context.WithoutCancel(ctx), day); relErr != nil {
			slog.Error("failed to release sweep ledger", "action", "retention_sweep", "day", day, "error", relErr)
		}
		return result, err
	}

	metrics.RetentionRunsTotal.WithLabelValues("completed").Inc()
	return result, nil
}

// Start calls RunDaily every interval until done is closed. Errors are
// logged and reported, never returned.
func (s *RetentionService) Start(interval time.Duration, done chan struct{}) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		s.runQuietly()
		for {
			select {
			case <-ticker.C:
				s.runQuietly()
			case <-done:
				return
			}
		}
	}()
}

func (s *RetentionService) runQuietly() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	_, _ = s.RunDaily(ctx)
}

func (s *RetentionService) report(err error, day string) {
	slog.Error("retention sweep failed", "action", "retention_sweep", "day", day, "error", err)
	sentry.CaptureException(err)
}
