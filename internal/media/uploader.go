// Package media uploads user images to the external media host and returns
// the public URL it assigns.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/metrics"
	"github.com/cenkalti/backoff/v4"
)

const (
	FolderReports = "reports"
	FolderClaims  = "claims"
)

var (
	ErrUploadFailed  = errors.New("media upload failed")
	ErrNotConfigured = errors.New("media host not configured")
)

type Uploader interface {
	Upload(ctx context.Context, data []byte, folder string) (string, error)
}

type Config struct {
	URL        string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	// InitialInterval is the first backoff delay; zero means 500ms.
	InitialInterval time.Duration
}

// StatusError is returned when the media host answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("media host returned %d: %s", e.Code, e.Body)
}

// HTTPUploader posts multipart/form-data (file, folder) with a bearer key.
// Each attempt has its own timeout; 5xx and transport errors are retried,
// 4xx are not.
type HTTPUploader struct {
	httpClient      *http.Client
	url             string
	apiKey          string
	timeout         time.Duration
	maxRetries      int
	initialInterval time.Duration
}

// New returns an HTTPUploader, or an uploader that always fails with
// ErrNotConfigured when cfg.URL is empty.
func New(cfg Config) Uploader {
	if strings.TrimSpace(cfg.URL) == "" {
		return disabledUploader{}
	}
	return NewHTTPUploader(cfg)
}

func NewHTTPUploader(cfg Config) *HTTPUploader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 500 * time.Millisecond
	}
	return &HTTPUploader{
		httpClient: &http.Client{
			Transport: &http.Transport{MaxIdleConnsPerHost: 10},
		},
		url:             cfg.URL,
		apiKey:          cfg.APIKey,
		timeout:         cfg.Timeout,
		maxRetries:      cfg.MaxRetries,
		initialInterval: cfg.InitialInterval,
	}
}

func (u *HTTPUploader) Upload(ctx context.Context, data []byte, folder string) (string, error) {
	var url string
	attempt := 0

	op := func() error {
		attempt++
		attemptCtx, cancel := context.WithTimeout(ctx, u.timeout)
		defer cancel()

		got, err := u.uploadOnce(attemptCtx, data, folder)
		if err != nil {
			metrics.MediaUploadFailuresTotal.WithLabelValues(folder).Inc()
			slog.Warn("media upload attempt failed", "folder", folder, "attempt", attempt, "error", err)
			return err
		}
		url = got
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = u.initialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(u.maxRetries)), ctx)

	if err := backoff.Retry(op, policy); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	return url, nil
}

func (u *HTTPUploader) uploadOnce(ctx context.Context, data []byte, folder string) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("folder", folder); err != nil {
		return "", backoff.Permanent(err)
	}
	part, err := w.CreateFormFile("file", "upload")
	if err != nil {
		return "", backoff.Permanent(err)
	}
	if _, err := part.Write(data); err != nil {
		return "", backoff.Permanent(err)
	}
	if err := w.Close(); err != nil {
		return "", backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, &body)
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("build upload request: %w", err))
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if u.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+u.apiKey)
	}

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("read upload response: %w", err)
	}

	if resp.StatusCode >= 400 {
		statusErr := &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
		if resp.StatusCode < 500 {
			return "", backoff.Permanent(statusErr)
		}
		return "", statusErr
	}

	var out struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", backoff.Permanent(fmt.Errorf("decode upload response: %w", err))
	}
	if out.SecureURL != "" {
		return out.SecureURL, nil
	}
	if out.URL != "" {
		return out.URL, nil
	}
	return "", backoff.Permanent(errors.New("upload response has no url"))
}

type disabledUploader struct{}

func (disabledUploader) Upload(context.Context, []byte, string) (string, error) {
	return "", fmt.Errorf("%w: %w", ErrUploadFailed, ErrNotConfigured)
}
