package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/media"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/ratelimit"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/repository"
	"github.com/google/uuid"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

type ClaimSettings struct {
	DailyLimit         int
	AutoRejectSiblings bool
	MaxImageBytes      int64
}

type CreateClaimInput struct {
	ReportID    uuid.UUID
	ClaimantID  string
	Description string
	ProofImage  []byte
}

type claimFields struct {
	Description string `json:"description" validate:"required,max=1000"`
}

// ClaimService owns the claim lifecycle: creation under the daily limit,
// owner decisions, and the report's open -> claimed transition.
type ClaimService struct {
	store    repository.Store
	limiter  *ratelimit.DailyLimiter
	uploader media.Uploader
	filter   *ContentFilter
	validate *Validator
	settings ClaimSettings
	now      func() time.Time
}

func NewClaimService(store repository.Store, limiter *ratelimit.DailyLimiter, uploader media.Uploader, settings ClaimSettings) *ClaimService {
	return &ClaimService{
		store:    store,
		limiter:  limiter,
		uploader: uploader,
		filter:   NewContentFilter(),
		validate: NewValidator(),
		settings: settings,
		now:      time.Now,
	}
}

func (s *ClaimService) WithClock(now func() time.Time) *ClaimService {
	s.now = now
	return s
}

func (s *ClaimService) DailyLimit() int {
	return s.settings.DailyLimit
}

// CreateClaim files a pending claim on an open report. The daily counter is
// read before any work and incremented only after the claim is stored.
func (s *ClaimService) CreateClaim(ctx context.Context, in CreateClaimInput) (*models.Claim, error) {
	if in.ClaimantID == "" {
		return nil, ErrAuthRequired
	}
	if in.ReportID == uuid.Nil {
		return nil, validationError("reportId is required")
	}

	description := strings.TrimSpace(in.Description)
	if err := s.validate.Struct(claimFields{Description: description}); err != nil {
		return nil, err
	}
	if err := s.filter.check(description); err != nil {
		return nil, err
	}

	exceeded, err := s.limiter.WouldExceed(ctx, in.ClaimantID, s.settings.DailyLimit)
	if err != nil {
		return nil, storeError("failed to check daily claim limit", err)
	}
	if exceeded {
		metrics.ClaimsRateLimitedTotal.Inc()
		return nil, ErrDailyClaimLimit
	}

	report, err := s.store.GetReport(ctx, in.ReportID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, storeError("failed to load report", err)
	}
	if report.Status == models.ReportStatusClaimed {
		return nil, ErrReportAlreadyClaimed
	}
	if report.ReporterID == in.ClaimantID {
		return nil, ErrCannotClaimOwnReport
	}

	active, err := s.store.CountActiveClaims(ctx, report.ID, in.ClaimantID)
	if err != nil {
		return nil, storeError("failed to check existing claims", err)
	}
	if active > 0 {
		return nil, ErrDuplicateClaim
	}

	var proofURL string
	if len(in.ProofImage) > 0 {
		if s.settings.MaxImageBytes > 0 && int64(len(in.ProofImage)) > s.settings.MaxImageBytes {
			return nil, ErrImageTooLarge
		}
		proofURL, err = s.uploader.Upload(ctx, in.ProofImage, media.FolderClaims)
		if err != nil {
			return nil, uploadError(err)
		}
	}

	now := s.now()
	claim := &models.Claim{
		ID:            uuid.New(),
		ReportID:      report.ID,
		ClaimantID:    in.ClaimantID,
		Description:   description,
		ProofImageURL: proofURL,
		Status:        models.ClaimStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.CreateClaim(ctx, claim); err != nil {
		return nil, storeError("failed to create claim", err)
	}

	if _, err := s.limiter.Increment(ctx, in.ClaimantID); err != nil {
		slog.Error("daily claim counter increment failed",
			"user_id", in.ClaimantID, "claim_id", claim.ID.String(), "action", "create_claim", "error", err)
	}

	metrics.ClaimsCreatedTotal.Inc()
	slog.Info("claim created",
		"user_id", in.ClaimantID, "claim_id", claim.ID.String(), "report_id", report.ID.String())
	return claim, nil
}

// DecideClaim approves or rejects a pending claim on behalf of the report's
// owner. All reads and writes happen in one transaction with the report row
// locked before the claim row.
func (s *ClaimService) DecideClaim(ctx context.Context, claimID uuid.UUID, actorID, action string) (*models.Claim, error) {
	if actorID == "" {
		return nil, ErrAuthRequired
	}
	if action != ActionApprove && action != ActionReject {
		return nil, ErrInvalidDecisionAction
	}

	var decided *models.Claim
	var siblings int64

	err := s.store.InTx(ctx, func(tx repository.Tx) error {
		claim, err := tx.GetClaim(ctx, claimID)
		if err != nil {
			return notFoundAs(err, ErrClaimNotFound, "failed to load claim")
		}
		report, err := tx.LockReport(ctx, claim.ReportID)
		if err != nil {
			return notFoundAs(err, ErrReportNotFound, "failed to lock report")
		}
		claim, err = tx.LockClaim(ctx, claimID)
		if err != nil {
			return notFoundAs(err, ErrClaimNotFound, "failed to lock claim")
		}

		if report.ReporterID != actorID {
			return ErrNotReportOwner
		}
		if claim.Status != models.ClaimStatusPending {
			return ErrClaimAlreadyDecided
		}

		now := s.now()
		status := models.ClaimStatusRejected
		if action == ActionApprove {
			if report.Status == models.ReportStatusClaimed {
				return ErrReportAlreadyClaimed
			}
			if err := tx.MarkReportClaimed(ctx, report.ID, now); err != nil {
				return storeError("failed to mark report claimed", err)
			}
			status = models.ClaimStatusApproved
		}
		if err := tx.SetClaimStatus(ctx, claim.ID, status, now); err != nil {
			return storeError("failed to update claim", err)
		}
		if action == ActionApprove && s.settings.AutoRejectSiblings {
			siblings, err = tx.RejectPendingClaims(ctx, report.ID, claim.ID, now)
			if err != nil {
				return storeError("failed to reject other claims", err)
			}
		}

		claim.Status = status
		claim.UpdatedAt = now
		decided = claim
		return nil
	})
	if err != nil {
		return nil, asServiceError("failed to decide claim", err)
	}

	metrics.ClaimDecisionsTotal.WithLabelValues(action).Inc()
	if siblings > 0 {
		metrics.SiblingClaimsRejectedTotal.Add(float64(siblings))
	}
	slog.Info("claim decided",
		"user_id", actorID, "claim_id", decided.ID.String(), "report_id", decided.ReportID.String(),
		"action", action, "siblings_rejected", siblings)
	return decided, nil
}

// MarkReportClaimed lets the owner close a report without approving a claim.
// Calling it on an already claimed report returns the report unchanged.
func (s *ClaimService) MarkReportClaimed(ctx context.Context, reportID uuid.UUID, actorID string) (*models.Report, error) {
	if actorID == "" {
		return nil, ErrAuthRequired
	}

	var result *models.Report
	err := s.store.InTx(ctx, func(tx repository.Tx) error {
		report, err := tx.LockReport(ctx, reportID)
		if err != nil {
			return notFoundAs(err, ErrReportNotFound, "failed to lock report")
		}
		if report.ReporterID != actorID {
			return ErrNotReportOwner
		}
		if report.Status == models.ReportStatusClaimed {
			result = report
			return nil
		}

		now := s.now()
		if err := tx.MarkReportClaimed(ctx, report.ID, now); err != nil {
			return storeError("failed to mark report claimed", err)
		}
		report.Status = models.ReportStatusClaimed
		report.ClaimedAt = &now
		report.UpdatedAt = now
		result = report
		return nil
	})
	if err != nil {
		return nil, asServiceError("failed to mark report claimed", err)
	}
	return result, nil
}

// ListClaimsForUser returns the claims userID made and the claims made on
// userID's reports, newest first, each with a snapshot of its report.
func (s *ClaimService) ListClaimsForUser(ctx context.Context, userID string) (*dto.ClaimsOverviewResponse, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}

	made, err := s.store.ListClaimsByClaimant(ctx, userID)
	if err != nil {
		return nil, storeError("failed to list claims", err)
	}
	ownIDs, err := s.store.ListReportIDsByReporter(ctx, userID)
	if err != nil {
		return nil, storeError("failed to list reports", err)
	}
	received, err := s.store.ListClaimsByReports(ctx, ownIDs)
	if err != nil {
		return nil, storeError("failed to list received claims", err)
	}

	reports, err := s.reportsFor(ctx, made, received)
	if err != nil {
		return nil, storeError("failed to load reports", err)
	}

	out := &dto.ClaimsOverviewResponse{
		ClaimsMade:     withReports(made, reports),
		ClaimsReceived: withReports(received, reports),
		DailyLimit:     s.settings.DailyLimit,
	}

	usage, err := s.limiter.Usage(ctx, userID, s.settings.DailyLimit)
	if err != nil {
		slog.Warn("daily claim usage unavailable", "user_id", userID, "error", err)
	} else {
		out.RemainingToday = &usage.Remaining
	}
	return out, nil
}

func (s *ClaimService) reportsFor(ctx context.Context, lists ...[]models.Claim) (map[uuid.UUID]*models.Report, error) {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, claims := range lists {
		for _, c := range claims {
			if !seen[c.ReportID] {
				seen[c.ReportID] = true
				ids = append(ids, c.ReportID)
			}
		}
	}

	reports, err := s.store.ListReportsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.Report, len(reports))
	for i := range reports {
		byID[reports[i].ID] = &reports[i]
	}
	return byID, nil
}

func withReports(claims []models.Claim, reports map[uuid.UUID]*models.Report) []dto.ClaimResponse {
	sort.SliceStable(claims, func(i, j int) bool {
		return claims[i].CreatedAt.After(claims[j].CreatedAt)
	})
	out := make([]dto.ClaimResponse, 0, len(claims))
	for _, c := range claims {
		out = append(out, dto.ClaimResponse{Claim: c, Report: dto.NewReportSummary(reports[c.ReportID])})
	}
	return out
}

func notFoundAs(err error, notFound *ServiceError, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound
	}
	return storeError(op, err)
}
