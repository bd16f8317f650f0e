package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/williampepple1/site-snapshot/internal/config"
)

// ParseLevel maps a configured level name onto a slog level, defaulting to info
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing to w in the configured format.
// Every record carries the run ID so lines from one invocation can be grouped.
func New(cfg config.LogConfig, w io.Writer, runID string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With("run", runID)
}

// Init installs a logger for a new run as the process default and returns the run ID
func Init(cfg config.LogConfig, w io.Writer) string {
	runID := uuid.NewString()
	slog.SetDefault(New(cfg, w, runID))
	return runID
}
