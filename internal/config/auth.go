package config

import "errors"

// devJWTSecret keeps local runs working without setup. It is refused in prod.
const devJWTSecret = "dev-only-insecure-secret"

// AuthConfig holds access and refresh token configuration.
type AuthConfig struct {
	JWTSecret string   `env:"TODO_JWT_SECRET" env-default:"dev-only-insecure-secret"`
	JWTTTL    Duration `env:"TODO_JWT_TTL" env-default:"30m"`

	// Empty reuses JWTSecret; the two token kinds still carry different audiences.
	JWTRefreshSecret string   `env:"TODO_JWT_REFRESH_SECRET"`
	JWTRefreshTTL    Duration `env:"TODO_JWT_REFRESH_TTL" env-default:"24h"`
}

// Validate rejects the built-in secret outside development.
func (c *AuthConfig) Validate(env string) error {
	if c.JWTSecret == "" {
		return errors.New("TODO_JWT_SECRET is required")
	}
	if env == "prod" && c.JWTSecret == devJWTSecret {
		return errors.New("TODO_JWT_SECRET must be set in prod")
	}
	if env == "prod" && c.JWTRefreshSecret == devJWTSecret {
		return errors.New("TODO_JWT_REFRESH_SECRET must not be the development secret")
	}
	return nil
}
