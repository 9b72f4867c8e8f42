package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/media"
	"github.com/stretchr/testify/assert"
)

func TestServiceErrorMatching(t *testing.T) {
	assert.ErrorIs(t, ErrReportNotFound, ErrNotFound)
	assert.NotErrorIs(t, ErrReportNotFound, ErrClaimNotFound)

	wrapped := fmt.Errorf("handler: %w", ErrDuplicateClaim)
	assert.ErrorIs(t, wrapped, ErrDuplicateClaim)
	assert.ErrorIs(t, wrapped, ErrConflict)
	assert.Equal(t, "duplicate_claim", CodeOf(wrapped))

	cause := errors.New("pq: connection reset")
	storeErr := storeError("failed to load report", cause)
	assert.ErrorIs(t, storeErr, ErrStore)
	assert.ErrorIs(t, storeErr, cause)
	assert.Equal(t, "failed to load report: pq: connection reset", storeErr.Error())
	assert.Equal(t, "an unexpected error occurred", MessageOf(storeErr))
	assert.Equal(t, "internal_error", CodeOf(errors.New("boom")))
}

func TestUploadErrorCodes(t *testing.T) {
	failed := uploadError(fmt.Errorf("%w: timeout", media.ErrUploadFailed))
	assert.ErrorIs(t, failed, ErrUpload)
	assert.Equal(t, "upload_failed", CodeOf(failed))

	disabled := uploadError(fmt.Errorf("%w: %w", media.ErrUploadFailed, media.ErrNotConfigured))
	assert.Equal(t, "upload_unavailable", CodeOf(disabled))
}

func TestAsServiceErrorKeepsKind(t *testing.T) {
	assert.Same(t, ErrNotReportOwner, asServiceError("op", ErrNotReportOwner))
	assert.ErrorIs(t, asServiceError("op", errors.New("deadlock")), ErrStore)
}

func TestContentFilter(t *testing.T) {
	cf := NewContentFilter()

	tests := []struct {
		text   string
		ok     bool
		reason string
	}{
		{"black wallet with two cards inside", true, ""},
		{"", true, ""},
		{"Lost near Glassboro station", true, ""},
		{"this is bullshit", false, "inappropriate_language"},
		{"visit www.scam-site.com now", false, "url_not_allowed"},
		{"helloooooo anyone", false, "spam_detected"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			ok, reason := cf.FilterContent(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}

	assert.True(t, cf.ContainsProfanity("what the FUCK"))
	assert.False(t, cf.ContainsProfanity("classic brass lamp"))
}
