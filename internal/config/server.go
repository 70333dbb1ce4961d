package config

// HTTPConfig holds HTTP server configuration. Zero values fall back to the
// server package defaults.
type HTTPConfig struct {
	Host              string   `env:"TODO_HTTP_HOST"`
	Port              string   `env:"TODO_HTTP_PORT" env-default:"8080"`
	ReadTimeout       Duration `env:"TODO_HTTP_READ_TIMEOUT"`
	WriteTimeout      Duration `env:"TODO_HTTP_WRITE_TIMEOUT"`
	IdleTimeout       Duration `env:"TODO_HTTP_IDLE_TIMEOUT"`
	ReadHeaderTimeout Duration `env:"TODO_HTTP_READ_HEADER_TIMEOUT"`
	MaxHeaderBytes    int      `env:"TODO_HTTP_MAX_HEADER_BYTES"`
	MaxBodyBytes      int64    `env:"TODO_HTTP_MAX_BODY_BYTES"`
}
