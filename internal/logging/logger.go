package logging

import (
	"log/slog"
	"os"
)

// Setup installs a JSON stdout logger as the slog default. The level is
// DEBUG when LOG_LEVEL=debug and INFO otherwise.
func Setup() {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(NewStdoutHandler(level)))
}

func NewStdoutHandler(level slog.Level) slog.Handler {
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
}
