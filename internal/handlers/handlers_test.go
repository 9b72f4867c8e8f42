package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/ratelimit"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/repository/memrepo"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret"
	adminToken = "admin-token"
	adminID    = "admin-1"
	owner      = "owner-1"
	claimant   = "claimant-1"
)

type stubUploader struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (u *stubUploader) Upload(_ context.Context, _ []byte, folder string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++
	if u.err != nil {
		return "", u.err
	}
	return "https://cdn.example.com/" + folder + "/img.jpg", nil
}

type server struct {
	app      *fiber.App
	store    *memrepo.Store
	uploader *stubUploader
}

func newServer(t *testing.T) *server {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:            testSecret,
		AdminToken:           adminToken,
		AdminUserIDs:         adminID,
		ClaimDailyLimit:      3,
		AutoRejectSiblings:   true,
		RetentionGracePeriod: 96 * time.Hour,
		MaxImageBytes:        1024,
	}

	s := &server{store: memrepo.New(), uploader: &stubUploader{}}
	limiter := ratelimit.NewDailyLimiter(ratelimit.NewMemoryCounter(), time.UTC)
	claims := services.NewClaimService(s.store, limiter, s.uploader, services.ClaimSettings{
		DailyLimit:         cfg.ClaimDailyLimit,
		AutoRejectSiblings: cfg.AutoRejectSiblings,
		MaxImageBytes:      int64(cfg.MaxImageBytes),
	})
	reports := services.NewReportService(s.store, s.uploader, int64(cfg.MaxImageBytes))
	retention := services.NewRetentionService(s.store, cfg.RetentionGracePeriod, time.UTC)

	s.app = fiber.New()
	routes.Setup(s.app, cfg,
		handlers.NewHealthHandler(s.store),
		handlers.NewConfigHandler(cfg),
		handlers.NewReportHandler(reports, claims, int64(cfg.MaxImageBytes)),
		handlers.NewClaimHandler(claims, int64(cfg.MaxImageBytes)),
		handlers.NewAdminHandler(retention),
	)
	return s
}

func tokenFor(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func userToken(t *testing.T, sub string) string {
	return tokenFor(t, jwt.MapClaims{"sub": sub})
}

func (s *server) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (s *server) jsonRequest(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.do(t, req)
}

func (s *server) multipartRequest(t *testing.T, path, token string, fields map[string]string, image []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if image != nil {
		part, err := w.CreateFormFile("image", "photo.jpg")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return s.do(t, req)
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (s *server) createReport(t *testing.T, reporter string) models.Report {
	t.Helper()
	resp := s.jsonRequest(t, http.MethodPost, "/api/reports", userToken(t, reporter), dto.CreateReportRequest{
		Description: "black backpack with a laptop",
		Category:    "bags",
		Location:    "library",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return decode[models.Report](t, resp)
}

func (s *server) createClaim(t *testing.T, reportID, user string) *http.Response {
	t.Helper()
	return s.jsonRequest(t, http.MethodPost, "/api/claims", userToken(t, user), dto.CreateClaimRequest{
		ReportID:    reportID,
		Description: "it has my name on the tag",
	})
}
