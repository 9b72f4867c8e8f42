package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/media"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/ratelimit"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewStdoutHandler(slog.LevelInfo),
		pgLogHandler,
	)))

	// Log and counter cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Claim counter backend
	counter, closeCounter, err := openCounter(cfg)
	if err != nil {
		slog.Error("claim counter init failed", "backend", cfg.RateLimitBackend, "error", err)
		os.Exit(1)
	}

	// Services
	store := repository.NewGormStore(database.DB)
	uploader := media.New(media.Config{
		URL:        cfg.MediaUploadURL,
		APIKey:     cfg.MediaAPIKey,
		Timeout:    cfg.MediaTimeout,
		MaxRetries: cfg.MediaMaxRetries,
	})
	limiter := ratelimit.NewDailyLimiter(counter, cfg.Location())
	maxImageBytes := int64(cfg.MaxImageBytes)

	claimService := services.NewClaimService(store, limiter, uploader, services.ClaimSettings{
		DailyLimit:         cfg.ClaimDailyLimit,
		AutoRejectSiblings: cfg.AutoRejectSiblings,
		MaxImageBytes:      maxImageBytes,
	})
	reportService := services.NewReportService(store, uploader, maxImageBytes)
	retentionService := services.NewRetentionService(store, cfg.RetentionGracePeriod, time.UTC)

	retentionDone := make(chan struct{})
	if cfg.RetentionInProcess {
		slog.Info("in-process retention sweeper enabled", "interval", cfg.RetentionCheckInterval.String())
		retentionService.Start(cfg.RetentionCheckInterval, retentionDone)
	}

	// Handlers
	healthHandler := handlers.NewHealthHandler(store)
	configHandler := handlers.NewConfigHandler(cfg)
	reportHandler := handlers.NewReportHandler(reportService, claimService, maxImageBytes)
	claimHandler := handlers.NewClaimHandler(claimService, maxImageBytes)
	adminHandler := handlers.NewAdminHandler(retentionService)

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    bodyLimit(cfg.MaxImageBytes),
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, healthHandler, configHandler, reportHandler, claimHandler, adminHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(retentionDone)
	close(cleanupDone)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	if closeCounter != nil {
		if err := closeCounter.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}

	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)
	database.Close()

	slog.Info("server stopped")
}

// openCounter picks the daily claim counter backend. The returned closer is
// nil for the postgres backend, which shares database.DB.
func openCounter(cfg *config.Config) (ratelimit.CounterStore, io.Closer, error) {
	switch cfg.RateLimitBackend {
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client, err := ratelimit.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("claim counter backend", "backend", "redis")
		return ratelimit.NewRedisCounter(client), client, nil
	default:
		slog.Info("claim counter backend", "backend", "postgres")
		return ratelimit.NewGormCounter(database.DB), nil, nil
	}
}

// bodyLimit leaves room for form fields around the largest accepted image.
func bodyLimit(maxImageBytes int) int {
	const overhead = 1024 * 1024
	if maxImageBytes <= 0 {
		return 4 * 1024 * 1024
	}
	return maxImageBytes + overhead
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
