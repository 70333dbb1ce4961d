package config

import (
	"fmt"
	"log/slog"
)

// ObservabilityConfig holds observability configuration.
// Exporter endpoints come from the standard OTEL_EXPORTER_OTLP_* variables.
type ObservabilityConfig struct {
	OTelEnabled bool   `env:"TODO_OTEL_ENABLED" env-default:"false"`
	ServiceName string `env:"OTEL_SERVICE_NAME" env-default:"todoreminder"`
	LogLevel    string `env:"TODO_LOG_LEVEL" env-default:"info" env-description:"debug, info, warn or error"`
}

// SlogLevel parses LogLevel.
func (c ObservabilityConfig) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid TODO_LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return l, nil
}
