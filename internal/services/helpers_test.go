package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/ratelimit"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/repository/memrepo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	userA = "user-a"
	userB = "user-b"
	userC = "user-c"
)

type fakeUploader struct {
	mu      sync.Mutex
	url     string
	err     error
	calls   int
	folders []string
}

func (f *fakeUploader) Upload(_ context.Context, _ []byte, folder string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.folders = append(f.folders, folder)
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

// flakyCounter is a MemoryCounter whose increments can be made to fail.
type flakyCounter struct {
	*ratelimit.MemoryCounter
	incrementErr error
}

func (f *flakyCounter) Increment(ctx context.Context, userID, day string) (int, error) {
	if f.incrementErr != nil {
		return 0, f.incrementErr
	}
	return f.MemoryCounter.Increment(ctx, userID, day)
}

type testEnv struct {
	store     *memrepo.Store
	counter   *flakyCounter
	uploader  *fakeUploader
	limiter   *ratelimit.DailyLimiter
	claims    *ClaimService
	reports   *ReportService
	retention *RetentionService
	now       time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWith(t, ClaimSettings{DailyLimit: 3, AutoRejectSiblings: true, MaxImageBytes: 1024})
}

func newTestEnvWith(t *testing.T, settings ClaimSettings) *testEnv {
	t.Helper()
	e := &testEnv{
		store:    memrepo.New(),
		counter:  &flakyCounter{MemoryCounter: ratelimit.NewMemoryCounter()},
		uploader: &fakeUploader{url: "https://cdn.example.com/img.jpg"},
		now:      time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return e.now }

	e.limiter = ratelimit.NewDailyLimiter(e.counter, time.UTC).WithClock(clock)
	e.claims = NewClaimService(e.store, e.limiter, e.uploader, settings).WithClock(clock)
	e.reports = NewReportService(e.store, e.uploader, 1024).WithClock(clock)
	e.retention = NewRetentionService(e.store, 96*time.Hour, time.UTC).WithClock(clock)
	return e
}

func (e *testEnv) advance(d time.Duration) {
	e.now = e.now.Add(d)
}

func (e *testEnv) newReport(t *testing.T, reporterID string) *models.Report {
	t.Helper()
	report, err := e.reports.Create(context.Background(), CreateReportInput{
		ReporterID:  reporterID,
		Description: "black phone with a cracked screen",
		Category:    "electronics",
	})
	require.NoError(t, err)
	return report
}

func (e *testEnv) newClaim(t *testing.T, reportID uuid.UUID, claimantID string) *models.Claim {
	t.Helper()
	claim, err := e.claims.CreateClaim(context.Background(), CreateClaimInput{
		ReportID:    reportID,
		ClaimantID:  claimantID,
		Description: "my phone",
	})
	require.NoError(t, err)
	return claim
}

func (e *testEnv) getReport(t *testing.T, id uuid.UUID) *models.Report {
	t.Helper()
	report, err := e.store.GetReport(context.Background(), id)
	require.NoError(t, err)
	return report
}

func (e *testEnv) getClaim(t *testing.T, id uuid.UUID) *models.Claim {
	t.Helper()
	claim, err := e.store.GetClaim(context.Background(), id)
	require.NoError(t, err)
	return claim
}

func (e *testEnv) usedToday(t *testing.T, userID string) int {
	t.Helper()
	usage, err := e.limiter.Usage(context.Background(), userID, 3)
	require.NoError(t, err)
	return usage.Used
}
