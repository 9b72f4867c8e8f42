package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/models"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("record not found")

// ReportFilter narrows ListReports. Zero values mean "no filter".
type ReportFilter struct {
	Category   string
	Status     string
	Type       string
	ReporterID string
	Page       int
	Limit      int
}

func (f ReportFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

type Reports interface {
	CreateReport(ctx context.Context, report *models.Report) error
	GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error)
	ListReports(ctx context.Context, filter ReportFilter) ([]models.Report, int64, error)
	ListReportsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Report, error)
	ListReportIDsByReporter(ctx context.Context, reporterID string) ([]uuid.UUID, error)
	ListClaimedBefore(ctx context.Context, cutoff time.Time) ([]models.Report, error)
}

type Claims interface {
	CreateClaim(ctx context.Context, claim *models.Claim) error
	GetClaim(ctx context.Context, id uuid.UUID) (*models.Claim, error)
	ListClaimsByClaimant(ctx context.Context, claimantID string) ([]models.Claim, error)
	ListClaimsByReports(ctx context.Context, reportIDs []uuid.UUID) ([]models.Claim, error)
	// CountActiveClaims counts pending or approved claims by claimantID on reportID.
	CountActiveClaims(ctx context.Context, reportID uuid.UUID, claimantID string) (int64, error)
}

// Tx is the set of writes that must commit together. Rows returned by the
// Lock methods stay locked until the surrounding transaction ends; callers
// lock the report before its claims.
type Tx interface {
	GetClaim(ctx context.Context, id uuid.UUID) (*models.Claim, error)
	LockReport(ctx context.Context, id uuid.UUID) (*models.Report, error)
	LockClaim(ctx context.Context, id uuid.UUID) (*models.Claim, error)
	MarkReportClaimed(ctx context.Context, id uuid.UUID, at time.Time) error
	SetClaimStatus(ctx context.Context, id uuid.UUID, status string, at time.Time) error
	RejectPendingClaims(ctx context.Context, reportID, exceptID uuid.UUID, at time.Time) (int64, error)
	DeleteReport(ctx context.Context, id uuid.UUID) error
	MarkClaimsReportDeleted(ctx context.Context, reportID uuid.UUID, at time.Time) (int64, error)
}

// SweepLedger guarantees one retention sweep per calendar day across processes.
type SweepLedger interface {
	// ClaimSweepRun returns false when day has already been claimed.
	ClaimSweepRun(ctx context.Context, day string, at time.Time) (bool, error)
	ReleaseSweepRun(ctx context.Context, day string) error
}

type Store interface {
	Reports
	Claims
	SweepLedger
	InTx(ctx context.Context, fn func(tx Tx) error) error
	Ping(ctx context.Context) error
}
