// Command sweeper runs the claimed-report retention sweep once and exits.
// Schedule it from cron; repeated runs on the same day are no-ops unless
// -force is given.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/services"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitSetup  = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	force := flag.Bool("force", false, "sweep even if today's run is already recorded")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall time limit for the sweep")
	flag.Parse()

	logging.Setup()
	cfg := config.Load()

	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		return exitSetup
	}
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		return exitSetup
	}
	defer database.Close()
	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		return exitSetup
	}

	pgLogHandler := logging.NewPGHandler(database.DB)
	defer pgLogHandler.Stop()
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewStdoutHandler(slog.LevelInfo),
		pgLogHandler,
	)))

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	retention := services.NewRetentionService(
		repository.NewGormStore(database.DB),
		cfg.RetentionGracePeriod,
		time.UTC,
	)

	var (
		result *services.SweepResult
		err    error
	)
	if *force {
		result, err = retention.Sweep(ctx)
	} else {
		result, err = retention.RunDaily(ctx)
	}

	switch {
	case errors.Is(err, services.ErrSweepAlreadyRan):
		slog.Info("retention sweep skipped, already ran today")
		return exitOK
	case err != nil:
		slog.Error("retention sweep failed", "error", err)
		return exitFailed
	}

	slog.Info("retention sweep finished",
		"cutoff", result.Cutoff.Format(time.RFC3339),
		"candidates", result.Candidates,
		"deleted", result.Deleted,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"orphaned_claims", result.OrphanedClaims,
	)
	if result.Failed > 0 {
		return exitFailed
	}
	return exitOK
}
