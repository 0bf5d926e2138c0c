package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Env is read from WORKPLAN_* environment variables.
type Env struct {
	DB                 string `envconfig:"DB"`
	LogLevel           string `envconfig:"LOG_LEVEL" default:"info"`
	LogUseCases        bool   `envconfig:"LOG_USE_CASES" default:"false"`
	MaxParallelRecalcs int    `envconfig:"MAX_PARALLEL_RECALCS" default:"4"`
	NoColor            bool   `envconfig:"NO_COLOR" default:"false"`
}

const namespace = "WORKPLAN"

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	if env.MaxParallelRecalcs < 1 {
		return nil, fmt.Errorf("WORKPLAN_MAX_PARALLEL_RECALCS must be at least 1, got %d", env.MaxParallelRecalcs)
	}
	if strings.TrimSpace(env.DB) == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("finding home directory: %w", err)
		}
		env.DB = filepath.Join(home, ".workplan", "workplan.db")
	}
	return &env, nil
}

// SlogLevel falls back to info for unknown levels.
func (e *Env) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelInfo
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
