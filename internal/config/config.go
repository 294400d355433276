// Package config loads CLI configuration from the environment.
package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultServerURL is the public REDit server endpoint.
const DefaultServerURL = "https://art-server.generalanalysis.com"

// Config holds all configuration values.
type Config struct {
	// REDit server connection
	ServerURL      string
	APIKey         string
	RequestTimeout time.Duration

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in first; explicit environment variables win.
func Load() Config {
	// A missing .env file is fine - it's optional.
	_ = godotenv.Load()

	return Config{
		ServerURL:      getEnv("REDIT_API_URL", DefaultServerURL),
		APIKey:         os.Getenv("GA_KEY"),
		RequestTimeout: parseDuration(getEnv("REDIT_CLIENT_TIMEOUT", "30s"), 30*time.Second),

		LogFile:  getEnv("GA_RED_LOG_FILE", "/tmp/ga-red.log"),
		LogLevel: parseLogLevel(getEnv("GA_RED_LOG_LEVEL", "WARN")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
