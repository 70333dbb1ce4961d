package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/todoreminder/internal/clock"
	"github.com/rezkam/todoreminder/internal/domain"
)

func newTestAuthenticator(t *testing.T, c clock.Clock) *Authenticator {
	t.Helper()
	a, err := NewAuthenticator(Config{Secret: "test-secret", TTL: time.Hour, Clock: c})
	require.NoError(t, err)
	return a
}

func TestNewAuthenticator_RequiresSecret(t *testing.T) {
	_, err := NewAuthenticator(Config{})
	assert.Error(t, err)
}

func TestNewAuthenticator_Defaults(t *testing.T) {
	a, err := NewAuthenticator(Config{Secret: "s"})
	require.NoError(t, err)

	assert.Equal(t, DefaultTokenTTL, a.ttl)
	assert.Equal(t, DefaultRefreshTokenTTL, a.refreshTTL)
	assert.Equal(t, a.secret, a.refreshSecret)
	assert.Equal(t, DefaultIssuer, a.issuer)
	assert.NotNil(t, a.clock)
}

func TestIssueAndValidate(t *testing.T) {
	fc := clock.NewFake(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	a := newTestAuthenticator(t, fc)

	token, err := a.IssueToken("user-1")
	require.NoError(t, err)

	userID, err := a.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestValidateToken_Expired(t *testing.T) {
	fc := clock.NewFake(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	a := newTestAuthenticator(t, fc)

	token, err := a.IssueToken("user-1")
	require.NoError(t, err)

	fc.Advance(2 * time.Hour)
	_, err = a.ValidateToken(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	fc := clock.NewFake(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	a := newTestAuthenticator(t, fc)

	other, err := NewAuthenticator(Config{Secret: "other-secret", Clock: fc})
	require.NoError(t, err)
	token, err := other.IssueToken("user-1")
	require.NoError(t, err)

	_, err = a.ValidateToken(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	fc := clock.NewFake(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	a := newTestAuthenticator(t, fc)

	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    DefaultIssuer,
		ExpiresAt: jwt.NewNumericDate(fc.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = a.ValidateToken(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestValidateToken_Garbage(t *testing.T) {
	a := newTestAuthenticator(t, clock.System{})

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := a.ValidateToken(token)
		assert.ErrorIs(t, err, domain.ErrUnauthorized, token)
	}
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	fc := clock.NewFake(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	a := newTestAuthenticator(t, fc)

	first, err := a.IssueRefreshToken("user-1")
	require.NoError(t, err)
	second, err := a.IssueRefreshToken("user-1")
	require.NoError(t, err)
	assert.NotEqual(t, first, second, "tokens issued at the same instant must differ")

	userID, err := a.ValidateRefreshToken(first)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestRefreshToken_ExpiresAfterRefreshTTL(t *testing.T) {
	fc := clock.NewFake(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	a, err := NewAuthenticator(Config{Secret: "s", TTL: time.Minute, RefreshTTL: time.Hour, Clock: fc})
	require.NoError(t, err)

	token, err := a.IssueRefreshToken("user-1")
	require.NoError(t, err)

	fc.Advance(30 * time.Minute)
	_, err = a.ValidateRefreshToken(token)
	assert.NoError(t, err, "outlives the access token TTL")

	fc.Advance(time.Hour)
	_, err = a.ValidateRefreshToken(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	fc := clock.NewFake(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))

	for name, cfg := range map[string]Config{
		"shared secret":   {Secret: "s", Clock: fc},
		"separate secret": {Secret: "s", RefreshSecret: "r", Clock: fc},
	} {
		t.Run(name, func(t *testing.T) {
			a, err := NewAuthenticator(cfg)
			require.NoError(t, err)

			access, err := a.IssueToken("user-1")
			require.NoError(t, err)
			refresh, err := a.IssueRefreshToken("user-1")
			require.NoError(t, err)

			_, err = a.ValidateToken(refresh)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
			_, err = a.ValidateRefreshToken(access)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}
