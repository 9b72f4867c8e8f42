// Package metrics holds the Prometheus collectors for the claim engine and
// the HTTP surface. Collectors register on the default registry at init.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ClaimsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lf_claims_created_total",
		Help: "Claims successfully created",
	})

	// ClaimDecisionsTotal is labelled by action: approve or reject.
	ClaimDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lf_claim_decisions_total",
		Help: "Claims decided by report owners",
	}, []string{"action"})

	SiblingClaimsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lf_sibling_claims_rejected_total",
		Help: "Pending claims auto-rejected because another claim on the report was approved",
	})

	ClaimsRateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lf_claims_rate_limited_total",
		Help: "Claim attempts refused by the daily limit",
	})

	ReportsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lf_reports_created_total",
		Help: "Reports successfully created",
	})

	RetentionRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lf_retention_runs_total",
		Help: "Retention sweeps by outcome (completed, skipped, failed)",
	}, []string{"outcome"})

	RetentionReportsDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lf_retention_reports_deleted_total",
		Help: "Claimed reports removed by the retention sweep",
	})

	RetentionFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lf_retention_report_failures_total",
		Help: "Per-report deletion failures during retention sweeps",
	})

	RetentionDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lf_retention_duration_seconds",
		Help:    "Retention sweep duration in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	})

	MediaUploadFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lf_media_upload_failures_total",
		Help: "Failed media upload attempts by folder",
	}, []string{"folder"})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lf_http_requests_total",
		Help: "HTTP requests handled",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lf_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// Middleware records request count and latency per route template, so
// /api/claims/:id is one series regardless of the id.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		path := c.Route().Path
		httpRequestsTotal.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}
