package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rezkam/todoreminder/internal/clock"
	"github.com/rezkam/todoreminder/internal/domain"
)

// Default configuration values.
const (
	DefaultTokenTTL        = 30 * time.Minute
	DefaultRefreshTokenTTL = 24 * time.Hour
	DefaultIssuer          = "todoreminder"
)

// refreshAudience marks refresh tokens; access tokens carry no audience.
const refreshAudience = "refresh"

// Config holds configuration for the Authenticator.
type Config struct {
	Secret        string        // HMAC signing key for access tokens
	TTL           time.Duration // Access token lifetime
	RefreshSecret string        // HMAC signing key for refresh tokens; empty reuses Secret
	RefreshTTL    time.Duration // Refresh token lifetime
	Issuer        string        // Value of the iss claim
	Clock         clock.Clock   // Time source for iat/exp
}

// Authenticator issues and validates HS256 access and refresh tokens carrying
// a user id.
type Authenticator struct {
	secret        []byte
	ttl           time.Duration
	refreshSecret []byte
	refreshTTL    time.Duration
	issuer        string
	clock         clock.Clock
}

// NewAuthenticator creates an authenticator. An empty secret is rejected.
// Applies defaults for zero TTLs, RefreshSecret, Issuer and Clock.
func NewAuthenticator(config Config) (*Authenticator, error) {
	if config.Secret == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	if config.TTL <= 0 {
		config.TTL = DefaultTokenTTL
	}
	if config.RefreshSecret == "" {
		config.RefreshSecret = config.Secret
	}
	if config.RefreshTTL <= 0 {
		config.RefreshTTL = DefaultRefreshTokenTTL
	}
	if config.Issuer == "" {
		config.Issuer = DefaultIssuer
	}
	if config.Clock == nil {
		config.Clock = clock.System{}
	}

	return &Authenticator{
		secret:        []byte(config.Secret),
		ttl:           config.TTL,
		refreshSecret: []byte(config.RefreshSecret),
		refreshTTL:    config.RefreshTTL,
		issuer:        config.Issuer,
		clock:         config.Clock,
	}, nil
}

// IssueToken signs a token whose subject is userID.
func (a *Authenticator) IssueToken(userID string) (string, error) {
	now := a.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    a.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// IssueRefreshToken signs a refresh token whose subject is userID. Every
// token gets a unique jti, so two tokens issued in the same second differ.
func (a *Authenticator) IssueRefreshToken(userID string) (string, error) {
	now := a.clock.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID,
		Issuer:    a.issuer,
		Audience:  jwt.ClaimStrings{refreshAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.refreshTTL)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies the signature, issuer and expiry of an access token
// and returns the user id it carries. Refresh tokens are rejected.
// Returns domain.ErrUnauthorized for any invalid token.
func (a *Authenticator) ValidateToken(token string) (string, error) {
	claims, err := a.parse(token, a.secret)
	if err != nil {
		return "", err
	}
	if len(claims.Audience) > 0 {
		return "", fmt.Errorf("%w: not an access token", domain.ErrUnauthorized)
	}
	return claims.Subject, nil
}

// ValidateRefreshToken is ValidateToken for refresh tokens. It checks the
// token itself only; whether it is still the user's current one is up to
// the caller.
func (a *Authenticator) ValidateRefreshToken(token string) (string, error) {
	claims, err := a.parse(token, a.refreshSecret, jwt.WithAudience(refreshAudience))
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (a *Authenticator) parse(token string, secret []byte, opts ...jwt.ParserOption) (*jwt.RegisteredClaims, error) {
	opts = append(opts,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.clock.Now),
	)

	var claims jwt.RegisteredClaims
	if _, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, opts...); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", domain.ErrUnauthorized)
	}

	return &claims, nil
}
