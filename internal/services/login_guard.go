package services

import (
	"context"
	"time"

	"github.com/otcheredev/notes-service/internal/cache"
	"github.com/rs/zerolog/log"
)

// LoginGuard throttles repeated logins per email until one succeeds.
// Cache failures are logged and do not block logins.
type LoginGuard struct {
	cache       cache.Cache
	maxAttempts int
	window      time.Duration
}

// NewLoginGuard creates a login guard. maxAttempts <= 0 disables throttling.
func NewLoginGuard(c cache.Cache, maxAttempts int, window time.Duration) *LoginGuard {
	return &LoginGuard{
		cache:       c,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

func (g *LoginGuard) enabled() bool {
	return g != nil && g.cache != nil && g.maxAttempts > 0
}

func attemptsKey(email string) string {
	return cache.Key("login-attempts", email)
}

// Allow records a login attempt for email and returns ErrTooManyAttempts once more
// than maxAttempts have been made since the last successful login. The counter is
// incremented before credentials are checked so concurrent attempts cannot overshoot.
func (g *LoginGuard) Allow(ctx context.Context, email string) error {
	if !g.enabled() {
		return nil
	}

	attempts, err := g.cache.Incr(ctx, attemptsKey(email), g.window)
	if err != nil {
		log.Warn().Err(err).Msg("Login throttle counter unavailable")
		return nil
	}
	if attempts > int64(g.maxAttempts) {
		return ErrTooManyAttempts
	}
	return nil
}

// Reset clears the attempt counter of email
func (g *LoginGuard) Reset(ctx context.Context, email string) {
	if !g.enabled() {
		return
	}
	if err := g.cache.Delete(ctx, attemptsKey(email)); err != nil {
		log.Warn().Err(err).Msg("Failed to reset login attempts")
	}
}
