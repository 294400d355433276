package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REDIT_API_URL", "")
	t.Setenv("GA_KEY", "")
	t.Setenv("REDIT_CLIENT_TIMEOUT", "")
	t.Setenv("GA_RED_LOG_LEVEL", "")

	cfg := Load()
	if cfg.ServerURL != DefaultServerURL {
		t.Errorf("ServerURL = %q, want %q", cfg.ServerURL, DefaultServerURL)
	}
	if cfg.APIKey != "" {
		t.Errorf("APIKey = %q, want empty", cfg.APIKey)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.RequestTimeout)
	}
	if cfg.LogLevel != slog.LevelWarn {
		t.Errorf("LogLevel = %v, want WARN", cfg.LogLevel)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("REDIT_API_URL", "http://localhost:8000")
	t.Setenv("GA_KEY", "secret")
	t.Setenv("REDIT_CLIENT_TIMEOUT", "90s")
	t.Setenv("GA_RED_LOG_LEVEL", "debug")

	cfg := Load()
	if cfg.ServerURL != "http://localhost:8000" {
		t.Errorf("ServerURL = %q", cfg.ServerURL)
	}
	if cfg.APIKey != "secret" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
	if cfg.RequestTimeout != 90*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"45s", 45 * time.Second},
		{"2m", 2 * time.Minute},
		{"garbage", 30 * time.Second},
		{"-5s", 30 * time.Second},
		{"0s", 30 * time.Second},
	}
	for _, tt := range tests {
		if got := parseDuration(tt.input, 30*time.Second); got != tt.want {
			t.Errorf("parseDuration(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelWarn},
		{"", slog.LevelWarn},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.input); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelWarn)

	logger.Debug("debug message")
	logger.Warn("warn message")

	if strings.Contains(stderr.String(), "debug message") {
		t.Error("stderr should not carry entries below the configured level")
	}
	if !strings.Contains(stderr.String(), "warn message") {
		t.Error("stderr should carry warnings")
	}

	// The file sink always captures debug entries as JSON lines.
	lines := strings.Split(strings.TrimSpace(file.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("file sink has %d lines, want 2", len(lines))
	}
	for _, line := range lines {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Errorf("file sink line is not JSON: %v", err)
		}
	}
}

func TestSetupLoggerFallsBackWithoutFile(t *testing.T) {
	badPath := filepath.Join(t.TempDir(), "missing", "ga-red.log")
	logger, cleanup := SetupLogger(badPath, slog.LevelInfo)
	if logger == nil {
		t.Fatal("SetupLogger returned nil logger")
	}
	if err := cleanup(); err != nil {
		t.Errorf("cleanup error = %v", err)
	}
}
