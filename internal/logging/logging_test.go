package logging

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureHandler struct {
	level   slog.Level
	records []slog.Record
	err     error
}

func (c *captureHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= c.level }
func (c *captureHandler) Handle(_ context.Context, r slog.Record) error {
	c.records = append(c.records, r)
	return c.err
}
func (c *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return c }
func (c *captureHandler) WithGroup(string) slog.Handler      { return c }

func TestMultiHandlerFansOutByLevel(t *testing.T) {
	info := &captureHandler{level: slog.LevelInfo}
	errOnly := &captureHandler{level: slog.LevelError}
	logger := slog.New(NewMultiHandler(info, errOnly))

	logger.Info("claim created")
	logger.Error("sweep failed")

	assert.Len(t, info.records, 2)
	require.Len(t, errOnly.records, 1)
	assert.Equal(t, "sweep failed", errOnly.records[0].Message)
}

func TestMultiHandlerKeepsDeliveringWhenOneSinkFails(t *testing.T) {
	broken := &captureHandler{level: slog.LevelInfo, err: errors.New("disk full")}
	healthy := &captureHandler{level: slog.LevelInfo}
	h := NewMultiHandler(broken, healthy)

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "msg", 0))

	assert.Error(t, err)
	assert.Len(t, healthy.records, 1)
}

func TestRecordToSystemLogMapsKnownAttrs(t *testing.T) {
	record := slog.NewRecord(time.Now(), slog.LevelError, "approve failed", 0)
	record.AddAttrs(
		slog.String("user_id", "user-1"),
		slog.String("claim_id", "c-1"),
		slog.String("error", "deadlock"),
		slog.Int("attempt", 2),
	)

	entry := recordToSystemLog(record, []slog.Attr{slog.String("action", "decide_claim")})

	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "decide_claim", entry.Action)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "user-1", *entry.UserID)
	require.NotNil(t, entry.ClaimID)
	assert.Equal(t, "c-1", *entry.ClaimID)
	assert.Nil(t, entry.ReportID)
	assert.Equal(t, "deadlock", entry.Error)

	var extra map[string]interface{}
	require.NoError(t, json.Unmarshal(entry.Extra, &extra))
	assert.EqualValues(t, 2, extra["attempt"])
}
