package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// CounterStore persists per-user, per-day claim counts. Increment must be atomic.
type CounterStore interface {
	Get(ctx context.Context, userID, day string) (int, error)
	Increment(ctx context.Context, userID, day string) (int, error)
}

type Usage struct {
	Day       string
	Used      int
	Limit     int
	Remaining int
}

// DailyLimiter enforces a fixed number of actions per user per calendar day.
// Days roll over implicitly: each day has its own counter key.
type DailyLimiter struct {
	store CounterStore
	loc   *time.Location
	now   func() time.Time
}

func NewDailyLimiter(store CounterStore, loc *time.Location) *DailyLimiter {
	if loc == nil {
		loc = time.UTC
	}
	return &DailyLimiter{store: store, loc: loc, now: time.Now}
}

// WithClock replaces the time source. Used by tests to cross day boundaries.
func (l *DailyLimiter) WithClock(now func() time.Time) *DailyLimiter {
	l.now = now
	return l
}

// DayKey formats t as YYYY-MM-DD in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

func (l *DailyLimiter) Today() string {
	return DayKey(l.now(), l.loc)
}

// WouldExceed reports whether userID has already used limit actions today.
func (l *DailyLimiter) WouldExceed(ctx context.Context, userID string, limit int) (bool, error) {
	n, err := l.store.Get(ctx, userID, l.Today())
	if err != nil {
		return false, fmt.Errorf("read daily counter: %w", err)
	}
	return n >= limit, nil
}

func (l *DailyLimiter) Increment(ctx context.Context, userID string) (int, error) {
	n, err := l.store.Increment(ctx, userID, l.Today())
	if err != nil {
		return 0, fmt.Errorf("increment daily counter: %w", err)
	}
	return n, nil
}

func (l *DailyLimiter) Usage(ctx context.Context, userID string, limit int) (Usage, error) {
	day := l.Today()
	n, err := l.store.Get(ctx, userID, day)
	if err != nil {
		return Usage{}, fmt.Errorf("read daily counter: %w", err)
	}
	remaining := limit - n
	if remaining < 0 {
		remaining = 0
	}
	return Usage{Day: day, Used: n, Limit: limit, Remaining: remaining}, nil
}

// MemoryCounter is a process-local CounterStore for development and tests.
type MemoryCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{counts: make(map[string]int)}
}

func (m *MemoryCounter) Get(_ context.Context, userID, day string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[day+":"+userID], nil
}

func (m *MemoryCounter) Increment(_ context.Context, userID, day string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := day + ":" + userID
	m.counts[key]++
	return m.counts[key], nil
}
