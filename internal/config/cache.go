package config

// CacheConfig configures the optional Redis cache of todo listings.
// The cache is disabled when RedisAddr is empty.
type CacheConfig struct {
	RedisAddr     string   `env:"TODO_REDIS_ADDR"`
	RedisPassword string   `env:"TODO_REDIS_PASSWORD"`
	RedisDB       int      `env:"TODO_REDIS_DB" env-default:"0"`
	TTL           Duration `env:"TODO_CACHE_TTL" env-default:"30s"`
}

// Enabled reports whether a Redis address is configured.
func (c CacheConfig) Enabled() bool {
	return c.RedisAddr != ""
}
