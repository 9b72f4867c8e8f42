package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	s := newServer(t)

	resp := s.jsonRequest(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	health := decode[dto.HealthResponse](t, resp)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "ok", health.DB)

	s.store.FailOn("Ping", errors.New("connection refused"))
	resp = s.jsonRequest(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestClientConfig(t *testing.T) {
	s := newServer(t)

	resp := s.jsonRequest(t, http.MethodGet, "/api/config", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	cfg := decode[dto.ClientConfigResponse](t, resp)
	assert.Equal(t, models.ReportCategories, cfg.Categories)
	assert.Equal(t, 3, cfg.DailyClaimLimit)
	assert.Equal(t, 96, cfg.RetentionGraceHours)
	assert.False(t, cfg.ImageUploadsEnabled)
}

func TestCreateReportRequiresToken(t *testing.T) {
	s := newServer(t)

	resp := s.jsonRequest(t, http.MethodPost, "/api/reports", "", dto.CreateReportRequest{
		Description: "red umbrella", Category: "accessories",
	})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.True(t, body.Error)
	assert.Equal(t, "unauthorized", body.Code)

	resp = s.jsonRequest(t, http.MethodPost, "/api/reports", "not-a-jwt", dto.CreateReportRequest{
		Description: "red umbrella", Category: "accessories",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	noSub := tokenFor(t, jwt.MapClaims{"email": "x@example.com"})
	resp = s.jsonRequest(t, http.MethodPost, "/api/reports", noSub, dto.CreateReportRequest{
		Description: "red umbrella", Category: "accessories",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCreateReportRejectsAnonymousSessions(t *testing.T) {
	s := newServer(t)

	for _, claims := range []jwt.MapClaims{
		{"sub": "guest-1", "anonymous": true},
		{"sub": "guest-2", "provider": "anonymous"},
	} {
		resp := s.jsonRequest(t, http.MethodPost, "/api/reports", tokenFor(t, claims), dto.CreateReportRequest{
			Description: "red umbrella", Category: "accessories",
		})
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "anonymous_not_allowed", decode[dto.ErrorResponse](t, resp).Code)
	}
	assert.Equal(t, 0, s.store.ReportCount())
}

func TestCreateAndReadReport(t *testing.T) {
	s := newServer(t)
	created := s.createReport(t, owner)

	assert.Equal(t, owner, created.ReporterID)
	assert.Equal(t, models.ReportStatusOpen, created.Status)
	assert.Equal(t, models.ReportTypeLost, created.Type)

	resp := s.jsonRequest(t, http.MethodGet, "/api/reports/"+created.ID.String(), "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	got := decode[models.Report](t, resp)
	assert.Equal(t, created.ID, got.ID)

	resp = s.jsonRequest(t, http.MethodGet, "/api/reports?category=bags&reporterId="+owner, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	list := decode[dto.ReportListResponse](t, resp)
	require.Len(t, list.Reports, 1)
	assert.EqualValues(t, 1, list.Pagination.Total)
}

func TestCreateReportValidationErrors(t *testing.T) {
	s := newServer(t)
	token := userToken(t, owner)

	resp := s.jsonRequest(t, http.MethodPost, "/api/reports", token, dto.CreateReportRequest{
		Description: "key", Category: "keys",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "validation_error", body.Code)
	assert.Equal(t, "description must be at least 5 characters", body.Message)

	req := httptest.NewRequest(http.MethodPost, "/api/reports", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp = s.do(t, req)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_body", decode[dto.ErrorResponse](t, resp).Code)
}

func TestCreateReportMultipartWithImage(t *testing.T) {
	s := newServer(t)

	resp := s.multipartRequest(t, "/api/reports", userToken(t, owner), map[string]string{
		"type":        "found",
		"description": "grey scarf on bench",
		"category":    "clothing",
	}, []byte("jpeg-bytes"))

	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	report := decode[models.Report](t, resp)
	assert.Equal(t, models.ReportTypeFound, report.Type)
	assert.Equal(t, "https://cdn.example.com/reports/img.jpg", report.ImageURL)
	assert.Equal(t, 1, s.uploader.calls)
}

func TestCreateReportImageTooLarge(t *testing.T) {
	s := newServer(t)

	resp := s.multipartRequest(t, "/api/reports", userToken(t, owner), map[string]string{
		"description": "grey scarf on bench",
		"category":    "clothing",
	}, make([]byte, 4096))

	require.Equal(t, fiber.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, "image_too_large", decode[dto.ErrorResponse](t, resp).Code)
	assert.Equal(t, 0, s.uploader.calls)
}

func TestGetReportErrors(t *testing.T) {
	s := newServer(t)

	resp := s.jsonRequest(t, http.MethodGet, "/api/reports/not-a-uuid", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = s.jsonRequest(t, http.MethodGet, "/api/reports/"+uuid.NewString(), "", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "report_not_found", decode[dto.ErrorResponse](t, resp).Code)
}

func TestListReportsStoreFailureHidesCause(t *testing.T) {
	s := newServer(t)
	s.store.FailOn("ListReports", errors.New("pq: password authentication failed"))

	resp := s.jsonRequest(t, http.MethodGet, "/api/reports", "", nil)

	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "internal_error", body.Code)
	assert.Equal(t, "an unexpected error occurred", body.Message)
}

func TestDeleteReport(t *testing.T) {
	s := newServer(t)
	report := s.createReport(t, owner)
	path := "/api/reports/" + report.ID.String()

	resp := s.jsonRequest(t, http.MethodDelete, path, userToken(t, claimant), nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "not_report_owner", decode[dto.ErrorResponse](t, resp).Code)

	resp = s.jsonRequest(t, http.MethodDelete, path, userToken(t, owner), nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = s.jsonRequest(t, http.MethodGet, path, "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestMarkReportClaimed(t *testing.T) {
	s := newServer(t)
	report := s.createReport(t, owner)
	path := "/api/reports/" + report.ID.String() + "/claimed"

	resp := s.jsonRequest(t, http.MethodPatch, path, userToken(t, claimant), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = s.jsonRequest(t, http.MethodPatch, path, userToken(t, owner), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	got := decode[models.Report](t, resp)
	assert.Equal(t, models.ReportStatusClaimed, got.Status)
	require.NotNil(t, got.ClaimedAt)

	resp = s.createClaim(t, report.ID.String(), claimant)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "report_already_claimed", decode[dto.ErrorResponse](t, resp).Code)
}
