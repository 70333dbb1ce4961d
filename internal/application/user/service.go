package user

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/rezkam/todoreminder/internal/domain"
)

// maxPasswordBytes is the longest input bcrypt hashes.
const maxPasswordBytes = 72

// TokenIssuer mints and checks the tokens of a login session.
type TokenIssuer interface {
	IssueToken(userID string) (string, error)
	IssueRefreshToken(userID string) (string, error)
	ValidateRefreshToken(token string) (string, error)
}

// Session is the result of a login or a refresh.
type Session struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

// Service handles registration, lookup and login sessions.
type Service struct {
	repo       Repository
	tokens     TokenIssuer
	bcryptCost int
}

// Option is a functional option for configuring Service.
type Option func(*Service)

// WithBcryptCost overrides the password hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

// NewService creates a new user service.
func NewService(repo Repository, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		tokens:     tokens,
		bcryptCost: bcrypt.DefaultCost,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Register creates a user with a bcrypt-hashed password.
// The email is trimmed and lower-cased before it is stored.
func (s *Service) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if email == "" {
		return nil, domain.ErrEmailRequired
	}
	if password == "" {
		return nil, domain.ErrPasswordRequired
	}
	if len(password) > maxPasswordBytes {
		return nil, domain.ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.repo.CreateUser(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return created, nil
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, domain.ErrUserNotFound
	}

	return s.repo.FindUserByID(ctx, id)
}

// ListUsers returns every registered user in registration order.
func (s *Service) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Login verifies credentials and starts a session. The new refresh token
// replaces any earlier one, so at most one refresh token per user is live.
// Unknown emails and wrong passwords both yield domain.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	u, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	session, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetRefreshTokenHash(ctx, u.ID, u.RefreshTokenHash); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return session, nil
}

// Refresh exchanges the user's current refresh token for a new token pair.
// The presented token is consumed: replaying it, or any token issued before
// the latest login or a logout, yields domain.ErrRefreshTokenRevoked.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	userID, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrRefreshTokenRevoked
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	session, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RotateRefreshTokenHash(ctx, u.ID, hashToken(refreshToken), u.RefreshTokenHash); err != nil {
		if errors.Is(err, domain.ErrRefreshTokenRevoked) || errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrRefreshTokenRevoked
		}
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return session, nil
}

// Logout revokes the user's refresh token. Access tokens already issued stay
// valid until they expire.
func (s *Service) Logout(ctx context.Context, userID string) error {
	if err := s.repo.SetRefreshTokenHash(ctx, userID, ""); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// issue signs a token pair for u and records the refresh token's hash on u.
func (s *Service) issue(u *domain.User) (*Session, error) {
	access, err := s.tokens.IssueToken(u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	refresh, err := s.tokens.IssueRefreshToken(u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	u.RefreshTokenHash = hashToken(refresh)
	return &Session{User: u, AccessToken: access, RefreshToken: refresh}, nil
}

// hashToken is what the store keeps instead of the refresh token itself.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
