package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/williampepple1/site-snapshot/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.name); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestNewJSONCarriesRunID(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LogConfig{Level: "info", Format: "json"}, &buf, "run-1")
	logger.Debug("hidden")
	logger.Info("asset downloaded", "url", "https://x/a.css")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want only the info record:\n%s", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("record is not JSON: %v", err)
	}
	if rec["run"] != "run-1" || rec["url"] != "https://x/a.css" {
		t.Errorf("record = %v", rec)
	}
}

func TestNewTextFormat(t *testing.T) {
	var buf bytes.Buffer
	New(config.LogConfig{Level: "debug", Format: "text"}, &buf, "r").Debug("rendering page")
	if !strings.Contains(buf.String(), "msg=\"rendering page\"") || !strings.Contains(buf.String(), "run=r") {
		t.Errorf("text output = %q", buf.String())
	}
}

func TestInitSetsDefault(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	runID := Init(config.LogConfig{Level: "info", Format: "text"}, &buf)
	if _, err := uuid.Parse(runID); err != nil {
		t.Fatalf("run ID %q is not a UUID: %v", runID, err)
	}
	slog.Info("hello")
	if !strings.Contains(buf.String(), "run="+runID) {
		t.Errorf("default logger output = %q", buf.String())
	}
}
