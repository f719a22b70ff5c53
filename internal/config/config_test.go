package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ENVIRONMENT", "LOG_LEVEL", "DATA_DIR", "DEFAULT_LOCATION", "STARTING_BEAT",
		"MAX_RESULTS", "REDIS_URL", "SNAPSHOT_TTL", "SESSION_MAX_AGE", "SWEEP_INTERVAL", "EXHAUSTION_SCENES"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, 5, cfg.MaxResults)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 24*time.Hour, cfg.SnapshotTTL)
	assert.Equal(t, 2*time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, 10*time.Minute, cfg.SweepInterval)
	assert.Equal(t, 15, cfg.ExhaustionScenes)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATA_DIR", "/srv/stories")
	t.Setenv("DEFAULT_LOCATION", "whispering_woods")
	t.Setenv("STARTING_BEAT", "meet_whiskers")
	t.Setenv("MAX_RESULTS", "8")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("EXHAUSTION_SCENES", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "/srv/stories", cfg.DataDir)
	assert.Equal(t, "whispering_woods", cfg.DefaultLocation)
	assert.Equal(t, "meet_whiskers", cfg.StartingBeat)
	assert.Equal(t, 8, cfg.MaxResults)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, 0, cfg.ExhaustionScenes)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "zero max results", key: "MAX_RESULTS", value: "0"},
		{name: "non-numeric max results", key: "MAX_RESULTS", value: "many"},
		{name: "bad duration", key: "SNAPSHOT_TTL", value: "forever"},
		{name: "negative sweep interval", key: "SWEEP_INTERVAL", value: "-1m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"Error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.in))
		})
	}
}
