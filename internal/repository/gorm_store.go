package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the Postgres-backed Store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) CreateReport(ctx context.Context, report *models.Report) error {
	if err := s.db.WithContext(ctx).Create(report).Error; err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

func (s *GormStore) GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&report).Error; err != nil {
		return nil, translate(err)
	}
	return &report, nil
}

func (s *GormStore) ListReports(ctx context.Context, filter ReportFilter) ([]models.Report, int64, error) {
	var reports []models.Report
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Report{}).Scopes(ReportsMatching(filter))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}
	if err := query.Scopes(NewestFirst).Limit(filter.Limit).Offset(filter.Offset()).Find(&reports).Error; err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}
	return reports, total, nil
}

func (s *GormStore) ListReportsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Report, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var reports []models.Report
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("list reports by ids: %w", err)
	}
	return reports, nil
}

func (s *GormStore) ListReportIDsByReporter(ctx context.Context, reporterID string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&models.Report{}).
		Where("reporter_id = ?", reporterID).
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list report ids: %w", err)
	}
	return ids, nil
}

func (s *GormStore) ListClaimedBefore(ctx context.Context, cutoff time.Time) ([]models.Report, error) {
	var reports []models.Report
	if err := s.db.WithContext(ctx).
		Where("status = ? AND claimed_at < ?", models.ReportStatusClaimed, cutoff).
		Order("claimed_at ASC").
		Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("list expired reports: %w", err)
	}
	return reports, nil
}

func (s *GormStore) CreateClaim(ctx context.Context, claim *models.Claim) error {
	if err := s.db.WithContext(ctx).Create(claim).Error; err != nil {
		return fmt.Errorf("create claim: %w", err)
	}
	return nil
}

func (s *GormStore) GetClaim(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	var claim models.Claim
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&claim).Error; err != nil {
		return nil, translate(err)
	}
	return &claim, nil
}

func (s *GormStore) ListClaimsByClaimant(ctx context.Context, claimantID string) ([]models.Claim, error) {
	var claims []models.Claim
	if err := s.db.WithContext(ctx).
		Where("claimant_id = ?", claimantID).
		Scopes(NewestFirst).
		Find(&claims).Error; err != nil {
		return nil, fmt.Errorf("list claims made: %w", err)
	}
	return claims, nil
}

func (s *GormStore) ListClaimsByReports(ctx context.Context, reportIDs []uuid.UUID) ([]models.Claim, error) {
	if len(reportIDs) == 0 {
		return nil, nil
	}
	var claims []models.Claim
	if err := s.db.WithContext(ctx).
		Where("report_id IN ?", reportIDs).
		Scopes(NewestFirst).
		Find(&claims).Error; err != nil {
		return nil, fmt.Errorf("list claims received: %w", err)
	}
	return claims, nil
}

func (s *GormStore) CountActiveClaims(ctx context.Context, reportID uuid.UUID, claimantID string) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Claim{}).
		Scopes(ActiveClaims(reportID, claimantID)).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count active claims: %w", err)
	}
	return n, nil
}

func (s *GormStore) ClaimSweepRun(ctx context.Context, day string, at time.Time) (bool, error) {
	run := models.SweepRun{ID: uuid.New(), RunDate: day, StartedAt: at}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "run_date"}}, DoNothing: true}).
		Create(&run)
	if result.Error != nil {
		return false, fmt.Errorf("claim sweep run: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (s *GormStore) ReleaseSweepRun(ctx context.Context, day string) error {
	if err := s.db.WithContext(ctx).Where("run_date = ?", day).Delete(&models.SweepRun{}).Error; err != nil {
		return fmt.Errorf("release sweep run: %w", err)
	}
	return nil
}

func (s *GormStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) GetClaim(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	var claim models.Claim
	if err := t.db.WithContext(ctx).Where("id = ?", id).First(&claim).Error; err != nil {
		return nil, translate(err)
	}
	return &claim, nil
}

func (t *gormTx) LockReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&report).Error; err != nil {
		return nil, translate(err)
	}
	return &report, nil
}

func (t *gormTx) LockClaim(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	var claim models.Claim
	if err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&claim).Error; err != nil {
		return nil, translate(err)
	}
	return &claim, nil
}

func (t *gormTx) MarkReportClaimed(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := t.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     models.ReportStatusClaimed,
			"claimed_at": at,
			"updated_at": at,
		})
	if result.Error != nil {
		return fmt.Errorf("mark report claimed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *gormTx) SetClaimStatus(ctx context.Context, id uuid.UUID, status string, at time.Time) error {
	result := t.db.WithContext(ctx).Model(&models.Claim{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": at,
		})
	if result.Error != nil {
		return fmt.Errorf("set claim status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *gormTx) RejectPendingClaims(ctx context.Context, reportID, exceptID uuid.UUID, at time.Time) (int64, error) {
	result := t.db.WithContext(ctx).Model(&models.Claim{}).
		Where("report_id = ? AND id <> ? AND status = ?", reportID, exceptID, models.ClaimStatusPending).
		Updates(map[string]interface{}{
			"status":     models.ClaimStatusRejected,
			"updated_at": at,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("reject sibling claims: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (t *gormTx) DeleteReport(ctx context.Context, id uuid.UUID) error {
	result := t.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Report{})
	if result.Error != nil {
		return fmt.Errorf("delete report: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *gormTx) MarkClaimsReportDeleted(ctx context.Context, reportID uuid.UUID, at time.Time) (int64, error) {
	result := t.db.WithContext(ctx).Model(&models.Claim{}).
		Where("report_id = ? AND report_deleted_at IS NULL", reportID).
		Updates(map[string]interface{}{
			"report_deleted_at": at,
			"updated_at":        at,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("mark orphaned claims: %w", result.Error)
	}
	return result.RowsAffected, nil
}
