package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/media"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/repository"
	"github.com/google/uuid"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)

type CreateReportInput struct {
	ReporterID  string `json:"reporterId" validate:"required"`
	Anonymous   bool   `json:"-"`
	Type        string `json:"type" validate:"oneof=lost found"`
	Description string `json:"description" validate:"min=5,max=1000"`
	Category    string `json:"category" validate:"required,category"`
	Location    string `json:"location" validate:"max=255"`
	Image       []byte `json:"-"`
}

type ListReportsInput struct {
	Category   string `json:"category" validate:"omitempty,category"`
	Status     string `json:"status" validate:"omitempty,oneof=open claimed"`
	Type       string `json:"type" validate:"omitempty,oneof=lost found"`
	ReporterID string `json:"reporterId"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
}

type ReportService struct {
	store         repository.Store
	uploader      media.Uploader
	filter        *ContentFilter
	validate      *Validator
	maxImageBytes int64
	now           func() time.Time
}

func NewReportService(store repository.Store, uploader media.Uploader, maxImageBytes int64) *ReportService {
	return &ReportService{
		store:         store,
		uploader:      uploader,
		filter:        NewContentFilter(),
		validate:      NewValidator(),
		maxImageBytes: maxImageBytes,
		now:           time.Now,
	}
}

func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

func (s *ReportService) Create(ctx context.Context, in CreateReportInput) (*models.Report, error) {
	if in.ReporterID == "" {
		return nil, ErrAuthRequired
	}
	if in.Anonymous {
		return nil, ErrAnonymousNotAllowed
	}

	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	in.Location = strings.TrimSpace(in.Location)
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	if in.Type == "" {
		in.Type = models.ReportTypeLost
	}

	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if err := s.filter.check(in.Description); err != nil {
		return nil, err
	}

	var imageURL string
	if len(in.Image) > 0 {
		if s.maxImageBytes > 0 && int64(len(in.Image)) > s.maxImageBytes {
			return nil, ErrImageTooLarge
		}
		url, err := s.uploader.Upload(ctx, in.Image, media.FolderReports)
		if err != nil {
			return nil, uploadError(err)
		}
		imageURL = url
	}

	now := s.now()
	report := &models.Report{
		ID:          uuid.New(),
		ReporterID:  in.ReporterID,
		Type:        in.Type,
		Description: in.Description,
		Category:    in.Category,
		Location:    in.Location,
		ImageURL:    imageURL,
		Status:      models.ReportStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateReport(ctx, report); err != nil {
		return nil, storeError("failed to create report", err)
	}

	metrics.ReportsCreatedTotal.Inc()
	slog.Info("report created", "user_id", in.ReporterID, "report_id", report.ID.String(), "category", report.Category)
	return report, nil
}

func (s *ReportService) List(ctx context.Context, in ListReportsInput) (*dto.ReportListResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit <= 0 {
		in.Limit = DefaultPageSize
	}
	if in.Limit > MaxPageSize {
		in.Limit = MaxPageSize
	}

	reports, total, err := s.store.ListReports(ctx, repository.ReportFilter{
		Category:   in.Category,
		Status:     in.Status,
		Type:       in.Type,
		ReporterID: in.ReporterID,
		Page:       in.Page,
		Limit:      in.Limit,
	})
	if err != nil {
		return nil, storeError("failed to list reports", err)
	}
	if reports == nil {
		reports = []models.Report{}
	}
	return &dto.ReportListResponse{
		Reports:    reports,
		Pagination: dto.PaginationMeta{Page: in.Page, Limit: in.Limit, Total: total},
	}, nil
}

func (s *ReportService) Get(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	report, err := s.store.GetReport(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, storeError("failed to load report", err)
	}
	return report, nil
}

// Delete removes a report on its owner's request. Claims on the report are
// kept and stamped with report_deleted_at in the same transaction.
func (s *ReportService) Delete(ctx context.Context, id uuid.UUID, actorID string) error {
	if actorID == "" {
		return ErrAuthRequired
	}

	var orphaned int64
	err := s.store.InTx(ctx, func(tx repository.Tx) error {
		report, err := tx.LockReport(ctx, id)
		if err != nil {
			return notFoundAs(err, ErrReportNotFound, "failed to lock report")
		}
		if report.ReporterID != actorID {
			return ErrNotReportOwner
		}
		if err := tx.DeleteReport(ctx, id); err != nil {
			return notFoundAs(err, ErrReportNotFound, "failed to delete report")
		}
		orphaned, err = tx.MarkClaimsReportDeleted(ctx, id, s.now())
		if err != nil {
			return storeError("failed to detach claims", err)
		}
		return nil
	})
	if err != nil {
		return asServiceError("failed to delete report", err)
	}

	slog.Info("report deleted", "user_id", actorID, "report_id", id.String(), "claims_detached", orphaned)
	return nil
}
