// Package config loads the server configuration from TODO_* environment
// variables. It is the only package that reads the environment.
package config

import (
	"errors"
	"fmt"
	"io"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the server binary.
type Config struct {
	Env string `env:"TODO_ENV" env-default:"dev" env-description:"Deployment environment (dev, prod)"`

	HTTP          HTTPConfig
	Storage       StorageConfig
	Cache         CacheConfig
	Auth          AuthConfig
	Worker        WorkerConfig
	Observability ObservabilityConfig

	ShutdownTimeout Duration `env:"TODO_SHUTDOWN_TIMEOUT" env-default:"15s" env-description:"Grace period for in-flight work on shutdown"`
}

// Load reads the environment into a Config and validates it.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field rules that struct tags cannot express.
func (c *Config) Validate() error {
	_, levelErr := c.Observability.SlogLevel()
	return errors.Join(
		c.Storage.Validate(),
		c.Auth.Validate(c.Env),
		levelErr,
	)
}

// Usage writes the list of supported environment variables to w.
func Usage(w io.Writer) {
	cleanenv.FUsage(w, &Config{}, nil)()
}
