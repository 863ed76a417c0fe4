package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/otcheredev/notes-service/internal/auth"
	"github.com/otcheredev/notes-service/internal/metrics"
	"github.com/otcheredev/notes-service/internal/models"
	"github.com/otcheredev/notes-service/internal/repository"
	"github.com/rs/zerolog/log"
)

// TokenIssuer signs access tokens
type TokenIssuer interface {
	Issue(id auth.Identity, ttl time.Duration) (string, error)
}

// AuthService exchanges credentials for access tokens
type AuthService struct {
	store     repository.Store
	hasher    auth.Hasher
	tokens    TokenIssuer
	guard     *LoginGuard
	dummyHash string
}

// NewAuthService creates a new auth service
func NewAuthService(store repository.Store, hasher auth.Hasher, tokens TokenIssuer, guard *LoginGuard) (*AuthService, error) {
	// compared against for unknown emails so both failure paths pay the hashing cost
	dummyHash, err := hasher.Hash("notes-service-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}

	return &AuthService{
		store:     store,
		hasher:    hasher,
		tokens:    tokens,
		guard:     guard,
		dummyHash: dummyHash,
	}, nil
}

// Login verifies email and password and issues a token with the default ttl
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return "", fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	if err := s.guard.Allow(ctx, email); err != nil {
		metrics.RecordAuthFailure(metrics.ReasonThrottled)
		log.Warn().Str("email", email).Msg("Login throttled")
		return "", err
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("failed to load user: %w", err)
	}

	if user == nil {
		s.hasher.Verify(password, s.dummyHash)
		return "", s.fail(email, "unknown email")
	}
	if !s.hasher.Verify(password, user.HashedPassword) {
		return "", s.fail(email, "wrong password")
	}

	token, err := s.tokens.Issue(auth.Identity{
		Email:    user.Email,
		TenantID: user.TenantID,
		Role:     user.Role,
		UserID:   user.ID,
	}, 0)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.guard.Reset(ctx, email)
	metrics.TokensIssued.Inc()
	log.Info().
		Str("email", user.Email).
		Str("tenant_id", user.TenantID.String()).
		Str("role", string(user.Role)).
		Msg("User logged in")

	return token, nil
}

func (s *AuthService) fail(email, reason string) error {
	metrics.RecordAuthFailure(metrics.ReasonInvalidCredentials)
	log.Warn().Str("email", email).Str("reason", reason).Msg("Login failed")
	return ErrInvalidCredentials
}
