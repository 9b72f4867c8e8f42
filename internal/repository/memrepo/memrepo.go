// Package memrepo is an in-memory repository.Store for tests. Transactions
// are serialized and applied atomically: a failing transaction leaves no trace.
package memrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/repository"
	"github.com/google/uuid"
)

type reportRow struct {
	report models.Report
	seq    int
}

type claimRow struct {
	claim models.Claim
	seq   int
}

type state struct {
	reports map[uuid.UUID]reportRow
	claims  map[uuid.UUID]claimRow
	runs    map[string]time.Time
}

func (s *state) clone() *state {
	c := &state{
		reports: make(map[uuid.UUID]reportRow, len(s.reports)),
		claims:  make(map[uuid.UUID]claimRow, len(s.claims)),
		runs:    make(map[string]time.Time, len(s.runs)),
	}
	for k, v := range s.reports {
		c.reports[k] = v
	}
	for k, v := range s.claims {
		c.claims[k] = v
	}
	for k, v := range s.runs {
		c.runs[k] = v
	}
	return c
}

type Store struct {
	mu     sync.Mutex
	st     *state
	seq    int
	failOn map[string]error
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		st: &state{
			reports: make(map[uuid.UUID]reportRow),
			claims:  make(map[uuid.UUID]claimRow),
			runs:    make(map[string]time.Time),
		},
		failOn: make(map[string]error),
	}
}

// FailOn makes every later call of the named operation (e.g. "SetClaimStatus") return err.
// Pass a nil err to clear it.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failOn, op)
		return
	}
	s.failOn[op] = err
}

// FailForReport makes transactional locks and deletes of one report return err.
func (s *Store) FailForReport(id uuid.UUID, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOn["report:"+id.String()] = err
}

func (s *Store) fail(op string) error {
	return s.failOn[op]
}

func (s *Store) nextSeq() int {
	s.seq++
	return s.seq
}

// PutReport stores report as-is, bypassing defaults. Useful for seeding fixtures.
func (s *Store) PutReport(report models.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.reports[report.ID] = reportRow{report: report, seq: s.nextSeq()}
}

// PutClaim stores claim as-is.
func (s *Store) PutClaim(claim models.Claim) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.claims[claim.ID] = claimRow{claim: claim, seq: s.nextSeq()}
}

func (s *Store) ReportCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.reports)
}

func (s *Store) ClaimCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.claims)
}

func (s *Store) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fail("Ping")
}

func (s *Store) CreateReport(_ context.Context, report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateReport"); err != nil {
		return err
	}
	now := time.Now().UTC()
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	report.UpdatedAt = report.CreatedAt
	s.st.reports[report.ID] = reportRow{report: *report, seq: s.nextSeq()}
	return nil
}

func (s *Store) GetReport(_ context.Context, id uuid.UUID) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetReport"); err != nil {
		return nil, err
	}
	row, ok := s.st.reports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	r := row.report
	return &r, nil
}

func (s *Store) ListReports(_ context.Context, f repository.ReportFilter) ([]models.Report, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListReports"); err != nil {
		return nil, 0, err
	}
	var rows []reportRow
	for _, row := range s.st.reports {
		r := row.report
		if (f.Category == "" || r.Category == f.Category) &&
			(f.Status == "" || r.Status == f.Status) &&
			(f.Type == "" || r.Type == f.Type) &&
			(f.ReporterID == "" || r.ReporterID == f.ReporterID) {
			rows = append(rows, row)
		}
	}
	sortReports(rows)
	total := int64(len(rows))

	start := f.Offset()
	if start > len(rows) {
		start = len(rows)
	}
	end := len(rows)
	if f.Limit > 0 && start+f.Limit < end {
		end = start + f.Limit
	}
	out := make([]models.Report, 0, end-start)
	for _, row := range rows[start:end] {
		out = append(out, row.report)
	}
	return out, total, nil
}

func (s *Store) ListReportsByIDs(_ context.Context, ids []uuid.UUID) ([]models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Report
	for _, id := range ids {
		if row, ok := s.st.reports[id]; ok {
			out = append(out, row.report)
		}
	}
	return out, nil
}

func (s *Store) ListReportIDsByReporter(_ context.Context, reporterID string) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uuid.UUID
	for id, row := range s.st.reports {
		if row.report.ReporterID == reporterID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *Store) ListClaimedBefore(_ context.Context, cutoff time.Time) ([]models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListClaimedBefore"); err != nil {
		return nil, err
	}
	var out []models.Report
	for _, row := range s.st.reports {
		r := row.report
		if r.Status == models.ReportStatusClaimed && r.ClaimedAt != nil && r.ClaimedAt.Before(cutoff) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClaimedAt.Before(*out[j].ClaimedAt) })
	return out, nil
}

func (s *Store) CreateClaim(_ context.Context, claim *models.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateClaim"); err != nil {
		return err
	}
	now := time.Now().UTC()
	if claim.ID == uuid.Nil {
		claim.ID = uuid.New()
	}
	if claim.CreatedAt.IsZero() {
		claim.CreatedAt = now
	}
	claim.UpdatedAt = claim.CreatedAt
	s.st.claims[claim.ID] = claimRow{claim: *claim, seq: s.nextSeq()}
	return nil
}

func (s *Store) GetClaim(_ context.Context, id uuid.UUID) (*models.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.st.claims[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := row.claim
	return &c, nil
}

func (s *Store) ListClaimsByClaimant(_ context.Context, claimantID string) ([]models.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claimsWhere(func(c models.Claim) bool { return c.ClaimantID == claimantID }), nil
}

func (s *Store) ListClaimsByReports(_ context.Context, reportIDs []uuid.UUID) ([]models.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(map[uuid.UUID]bool, len(reportIDs))
	for _, id := range reportIDs {
		set[id] = true
	}
	return s.claimsWhere(func(c models.Claim) bool { return set[c.ReportID] }), nil
}

func (s *Store) CountActiveClaims(_ context.Context, reportID uuid.UUID, claimantID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := s.claimsWhere(func(c models.Claim) bool {
		return c.ReportID == reportID && c.ClaimantID == claimantID &&
			(c.Status == models.ClaimStatusPending || c.Status == models.ClaimStatusApproved)
	})
	return int64(len(active)), nil
}

func (s *Store) claimsWhere(keep func(models.Claim) bool) []models.Claim {
	var rows []claimRow
	for _, row := range s.st.claims {
		if keep(row.claim) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].claim.CreatedAt.Equal(rows[j].claim.CreatedAt) {
			return rows[i].claim.CreatedAt.After(rows[j].claim.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
	out := make([]models.Claim, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.claim)
	}
	return out
}

func sortReports(rows []reportRow) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].report.CreatedAt.Equal(rows[j].report.CreatedAt) {
			return rows[i].report.CreatedAt.After(rows[j].report.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
}

func (s *Store) ClaimSweepRun(_ context.Context, day string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ClaimSweepRun"); err != nil {
		return false, err
	}
	if _, ok := s.st.runs[day]; ok {
		return false, nil
	}
	s.st.runs[day] = at
	return true, nil
}

func (s *Store) ReleaseSweepRun(_ context.Context, day string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.st.runs, day)
	return nil
}

func (s *Store) InTx(_ context.Context, fn func(tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	staged := &memTx{store: s, st: s.st.clone()}
	if err := fn(staged); err != nil {
		return err
	}
	s.st = staged.st
	return nil
}

type memTx struct {
	store *Store
	st    *state
}

func (t *memTx) GetClaim(_ context.Context, id uuid.UUID) (*models.Claim, error) {
	row, ok := t.st.claims[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := row.claim
	return &c, nil
}

func (t *memTx) LockReport(_ context.Context, id uuid.UUID) (*models.Report, error) {
	if err := t.store.fail("LockReport"); err != nil {
		return nil, err
	}
	if err := t.store.fail("report:" + id.String()); err != nil {
		return nil, err
	}
	row, ok := t.st.reports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	r := row.report
	return &r, nil
}

func (t *memTx) LockClaim(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	return t.GetClaim(ctx, id)
}

func (t *memTx) MarkReportClaimed(_ context.Context, id uuid.UUID, at time.Time) error {
	if err := t.store.fail("MarkReportClaimed"); err != nil {
		return err
	}
	row, ok := t.st.reports[id]
	if !ok {
		return repository.ErrNotFound
	}
	claimedAt := at
	row.report.Status = models.ReportStatusClaimed
	row.report.ClaimedAt = &claimedAt
	row.report.UpdatedAt = at
	t.st.reports[id] = row
	return nil
}

func (t *memTx) SetClaimStatus(_ context.Context, id uuid.UUID, status string, at time.Time) error {
	if err := t.store.fail("SetClaimStatus"); err != nil {
		return err
	}
	row, ok := t.st.claims[id]
	if !ok {
		return repository.ErrNotFound
	}
	row.claim.Status = status
	row.claim.UpdatedAt = at
	t.st.claims[id] = row
	return nil
}

func (t *memTx) RejectPendingClaims(_ context.Context, reportID, exceptID uuid.UUID, at time.Time) (int64, error) {
	var n int64
	for id, row := range t.st.claims {
		if row.claim.ReportID == reportID && id != exceptID && row.claim.Status == models.ClaimStatusPending {
			row.claim.Status = models.ClaimStatusRejected
			row.claim.UpdatedAt = at
			t.st.claims[id] = row
			n++
		}
	}
	return n, nil
}

func (t *memTx) DeleteReport(_ context.Context, id uuid.UUID) error {
	if err := t.store.fail("DeleteReport"); err != nil {
		return err
	}
	if err := t.store.fail("report:" + id.String()); err != nil {
		return err
	}
	if _, ok := t.st.reports[id]; !ok {
		return repository.ErrNotFound
	}
	delete(t.st.reports, id)
	return nil
}

func (t *memTx) MarkClaimsReportDeleted(_ context.Context, reportID uuid.UUID, at time.Time) (int64, error) {
	var n int64
	for id, row := range t.st.claims {
		if row.claim.ReportID == reportID && row.claim.ReportDeletedAt == nil {
			deletedAt := at
			row.claim.ReportDeletedAt = &deletedAt
			row.claim.UpdatedAt = at
			t.st.claims[id] = row
			n++
		}
	}
	return n, nil
}
