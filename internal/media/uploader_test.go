package media

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUploader(url string, retries int) *HTTPUploader {
	return NewHTTPUploader(Config{
		URL:             url,
		APIKey:          "media-key",
		Timeout:         time.Second,
		MaxRetries:      retries,
		InitialInterval: time.Millisecond,
	})
}

func TestUploadSendsMultipartAndReturnsSecureURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer media-key", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, FolderClaims, r.FormValue("folder"))

		f, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, []byte("jpeg-bytes"), data)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"secure_url":"https://cdn.example.com/claims/1.jpg","url":"http://cdn.example.com/claims/1.jpg"}`))
	}))
	defer srv.Close()

	url, err := testUploader(srv.URL, 0).Upload(context.Background(), []byte("jpeg-bytes"), FolderClaims)

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/claims/1.jpg", url)
}

func TestUploadFallsBackToURLField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"url":"http://cdn.example.com/reports/2.jpg"}`))
	}))
	defer srv.Close()

	url, err := testUploader(srv.URL, 0).Upload(context.Background(), []byte("x"), FolderReports)

	require.NoError(t, err)
	assert.Equal(t, "http://cdn.example.com/reports/2.jpg", url)
}

func TestUploadRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"secure_url":"https://cdn.example.com/ok.jpg"}`))
	}))
	defer srv.Close()

	url, err := testUploader(srv.URL, 2).Upload(context.Background(), []byte("x"), FolderClaims)

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/ok.jpg", url)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestUploadGivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testUploader(srv.URL, 2).Upload(context.Background(), []byte("x"), FolderClaims)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUploadFailed)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestUploadDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("bad key"))
	}))
	defer srv.Close()

	_, err := testUploader(srv.URL, 2).Upload(context.Background(), []byte("x"), FolderClaims)

	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestUploadAttemptTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	up := NewHTTPUploader(Config{URL: srv.URL, Timeout: 50 * time.Millisecond, InitialInterval: time.Millisecond})
	start := time.Now()
	_, err := up.Upload(context.Background(), []byte("x"), FolderClaims)

	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNewWithoutURLIsDisabled(t *testing.T) {
	up := New(Config{})

	_, err := up.Upload(context.Background(), []byte("x"), FolderReports)

	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
