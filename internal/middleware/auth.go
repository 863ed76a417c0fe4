package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/otcheredev/notes-service/internal/auth"
	"github.com/otcheredev/notes-service/internal/metrics"
	"github.com/otcheredev/notes-service/internal/models"
	"github.com/rs/zerolog/log"
)

type contextKey string

const principalKey contextKey = "principal"

// TokenVerifier verifies a bearer token and returns its claims
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Authenticate middleware verifies the bearer token and stores the principal in the request context
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				metrics.RecordAuthFailure(metrics.ReasonMissingToken)
				log.Warn().Str("path", r.URL.Path).Msg("Missing bearer token")
				unauthorized(w)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				reason := failureReason(err)
				metrics.RecordAuthFailure(reason)
				log.Warn().Err(err).
					Str("reason", reason).
					Str("path", r.URL.Path).
					Msg("Token rejected")
				unauthorized(w)
				return
			}

			ctx := WithPrincipal(r.Context(), claims.Principal())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithPrincipal returns a copy of ctx carrying p
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext extracts the authenticated principal from context
func PrincipalFromContext(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey).(models.Principal)
	return p, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpired):
		return metrics.ReasonExpired
	case errors.Is(err, auth.ErrInvalidSignature):
		return metrics.ReasonInvalidSignature
	default:
		return metrics.ReasonMalformed
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
}
