package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"LWA_URL", "LWA_DATABASE_FILE", "LWA_REFRESH_MARGIN",
		"LWA_BACKOFF_FLOOR", "ENV", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	require.Equal(t, DefaultTokenEndpoint, cfg.TokenEndpoint)
	require.Equal(t, "lwauth.db", cfg.DatabaseFile)
	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
	require.Zero(t, cfg.RefreshMargin)
	require.Zero(t, cfg.BackoffFloor)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("LWA_CLIENT_ID", "cid")
	t.Setenv("LWA_CLIENT_SECRET", "secret")
	t.Setenv("LWA_REFRESH_TOKEN", "rt")
	t.Setenv("LWA_URL", "https://auth.example.com/token")
	t.Setenv("LWA_DATABASE_FILE", "/var/lib/lwauth/tokens.db")
	t.Setenv("LWA_REFRESH_MARGIN", "0.25")
	t.Setenv("LWA_BACKOFF_FLOOR", "250ms")
	t.Setenv("LWA_BACKOFF_CAP", "2m")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")

	cfg := LoadConfig()

	require.Equal(t, "cid", cfg.ClientID)
	require.Equal(t, "secret", cfg.ClientSecret)
	require.Equal(t, "rt", cfg.RefreshToken)
	require.Equal(t, "https://auth.example.com/token", cfg.TokenEndpoint)
	require.Equal(t, "/var/lib/lwauth/tokens.db", cfg.DatabaseFile)
	require.Equal(t, 0.25, cfg.RefreshMargin)
	require.Equal(t, 250*time.Millisecond, cfg.BackoffFloor)
	require.Equal(t, 2*time.Minute, cfg.BackoffCap)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "text", cfg.LogFormat)
}

func TestLoadConfigIgnoresBadValues(t *testing.T) {
	t.Setenv("LWA_REFRESH_MARGIN", "not-a-float")
	t.Setenv("LWA_BACKOFF_FLOOR", "not-a-duration")

	cfg := LoadConfig()

	require.Zero(t, cfg.RefreshMargin)
	require.Zero(t, cfg.BackoffFloor)
}
