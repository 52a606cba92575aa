package app

import (
	"os"
	"strconv"
	"time"
)

// DefaultTokenEndpoint is the Login with Amazon token URL.
const DefaultTokenEndpoint = "https://api.amazon.com/auth/o2/token"

type Config struct {
	ClientID      string // Required: LWA client identifier
	ClientSecret  string // Required: LWA client secret
	RefreshToken  string // Required: seed refresh token (superseded by persisted rotations)
	TokenEndpoint string // Optional: token endpoint URL (default: LWA)

	DatabaseFile  string        // Optional: path to SQLite database file (default: ./lwauth.db)
	RefreshMargin float64       // Optional: fraction of token lifetime kept as headroom
	BackoffFloor  time.Duration // Optional: initial retry delay
	BackoffCap    time.Duration // Optional: maximum retry delay
	Env           string        // Environment (dev, staging, prod) (default: dev)
	LogLevel      string        // Log level (debug, info, warn, error) (default: info)
	LogFormat     string        // Log format (json, text) (default: json)
}

func LoadConfig() Config {
	cfg := Config{
		ClientID:      os.Getenv("LWA_CLIENT_ID"),
		ClientSecret:  os.Getenv("LWA_CLIENT_SECRET"),
		RefreshToken:  os.Getenv("LWA_REFRESH_TOKEN"),
		TokenEndpoint: getEnvOrDefault("LWA_URL", DefaultTokenEndpoint),
		DatabaseFile:  getEnvOrDefault("LWA_DATABASE_FILE", "lwauth.db"),
		BackoffFloor:  getEnvDurationOrDefault("LWA_BACKOFF_FLOOR", 0), // 0 selects the SDK default
		BackoffCap:    getEnvDurationOrDefault("LWA_BACKOFF_CAP", 0),
		Env:           getEnvOrDefault("ENV", "dev"),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:     getEnvOrDefault("LOG_FORMAT", "json"),
	}

	// Parse the refresh margin as a float fraction, e.g. "0.2"
	if marginStr := os.Getenv("LWA_REFRESH_MARGIN"); marginStr != "" {
		if margin, err := strconv.ParseFloat(marginStr, 64); err == nil {
			cfg.RefreshMargin = margin
		}
		// If parsing fails, RefreshMargin remains 0 (SDK default applies)
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
