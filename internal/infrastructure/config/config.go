// Package config loads client configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	API API
	// Devstub settings, only read by cmd/devstub.
	Stub Stub
}

type API struct {
	BaseURL      string        `env:"API_BASE_URL,           default=http://localhost:8080"`
	Timeout      time.Duration `env:"HTTP_TIMEOUT,           default=10s"`
	PollInterval time.Duration `env:"SETTINGS_POLL_INTERVAL, default=30s"`
}

type Stub struct {
	Port string `env:"PORT, default=8080"`
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present; a missing file is not an
// error.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
