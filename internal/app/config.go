package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// Config holds all the necessary configuration for an App instance to run.
// Every field can also be supplied through the environment; explicit values
// win over environment values.
type Config struct {
	ConfigPath string `env:"OPCYCLE_CONFIG"`
	LogFormat  string `env:"OPCYCLE_LOG_FORMAT"`
	LogLevel   string `env:"OPCYCLE_LOG_LEVEL"`
	Cycles     int    `env:"OPCYCLE_CYCLES"`
}

// NewConfig fills unset fields from the environment, applies defaults, and
// validates the result.
func NewConfig(cfg Config) (*Config, error) {
	var fromEnv Config
	if err := env.Parse(&fromEnv); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	if cfg.ConfigPath == "" {
		cfg.ConfigPath = fromEnv.ConfigPath
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = fromEnv.LogFormat
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = fromEnv.LogLevel
	}
	if cfg.Cycles == 0 {
		cfg.Cycles = fromEnv.Cycles
	}

	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Cycles == 0 {
		cfg.Cycles = 1
	}
	if cfg.Cycles < 0 {
		return nil, errors.New("Cycles must be positive")
	}

	return &cfg, nil
}

// Level translates the configured level name into a slog.Level. Names are
// validated by the CLI before they reach here; anything else means info.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
