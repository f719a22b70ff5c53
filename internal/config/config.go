package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelRaw string `env:"LOG_LEVEL" envDefault:"info"`
	LogLevel    slog.Level

	DataDir         string `env:"DATA_DIR" envDefault:"./data"`
	DefaultLocation string `env:"DEFAULT_LOCATION"`
	StartingBeat    string `env:"STARTING_BEAT"`
	MaxResults      int    `env:"MAX_RESULTS" envDefault:"5"`

	// RedisURL enables snapshot persistence and the story event queue when set.
	RedisURL    string        `env:"REDIS_URL"`
	SnapshotTTL time.Duration `env:"SNAPSHOT_TTL" envDefault:"24h"`

	SessionMaxAge    time.Duration `env:"SESSION_MAX_AGE" envDefault:"2h"`
	SweepInterval    time.Duration `env:"SWEEP_INTERVAL" envDefault:"10m"`
	ExhaustionScenes int           `env:"EXHAUSTION_SCENES" envDefault:"15"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelRaw)

	if cfg.MaxResults <= 0 {
		return nil, fmt.Errorf("MAX_RESULTS must be positive, got %d", cfg.MaxResults)
	}
	if cfg.SweepInterval <= 0 {
		return nil, fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", cfg.SweepInterval)
	}
	return &cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
