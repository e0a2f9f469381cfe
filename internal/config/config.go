// Package config loads process settings for the arbor binaries from the
// environment. Command-line flags are applied on top by the caller.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config holds the settings shared by the serve and mcp commands.
type Config struct {
	Dir          string        `env:"ARBOR_DIR" envDefault:"." validate:"required"`
	Loam         bool          `env:"ARBOR_LOAM"`
	Port         int           `env:"ARBOR_PORT" envDefault:"8080" validate:"min=1,max=65535"`
	RedisAddr    string        `env:"ARBOR_REDIS_ADDR" validate:"omitempty,hostname_port"`
	RedisDB      int           `env:"ARBOR_REDIS_DB" envDefault:"0" validate:"min=0"`
	LogLevel     string        `env:"ARBOR_LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	ReadTimeout  time.Duration `env:"ARBOR_READ_TIMEOUT" envDefault:"10s" validate:"gt=0"`
	MCPTransport string        `env:"ARBOR_MCP_TRANSPORT" envDefault:"stdio" validate:"oneof=stdio sse"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads Config from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the field constraints. Call it again after flags are applied.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Level returns the slog level named by LogLevel.
func (c *Config) Level() slog.Level {
	return logging.ParseLevel(c.LogLevel)
}

// Addr returns the listen address for Port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
