package lwa

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfigApplyDefaults(t *testing.T) {
	t.Parallel()

	t.Run("fills zero values", func(t *testing.T) {
		cfg := Config{}
		cfg.applyDefaults()

		require.Equal(t, DefaultRefreshMargin, cfg.RefreshMargin)
		require.Equal(t, DefaultBackoffFloor, cfg.BackoffFloor)
		require.Equal(t, DefaultBackoffCap, cfg.BackoffCap)
		require.Equal(t, DefaultBackoffFactor, cfg.BackoffFactor)
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		cfg := Config{
			RefreshMargin: 0.5,
			BackoffFloor:  time.Second,
			BackoffCap:    time.Minute,
			BackoffFactor: 3,
		}
		cfg.applyDefaults()

		require.Equal(t, 0.5, cfg.RefreshMargin)
		require.Equal(t, time.Second, cfg.BackoffFloor)
		require.Equal(t, time.Minute, cfg.BackoffCap)
		require.Equal(t, 3.0, cfg.BackoffFactor)
	})

	t.Run("rejects out of range margin", func(t *testing.T) {
		cfg := Config{RefreshMargin: 1.5}
		cfg.applyDefaults()
		require.Equal(t, DefaultRefreshMargin, cfg.RefreshMargin)
	})
}
