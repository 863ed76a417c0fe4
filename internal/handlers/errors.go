package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/otcheredev/notes-service/internal/auth"
	"github.com/otcheredev/notes-service/internal/middleware"
	"github.com/otcheredev/notes-service/internal/models"
	"github.com/otcheredev/notes-service/internal/services"
	"github.com/rs/zerolog/log"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// writeError maps service errors onto HTTP statuses. Anything unrecognized is a 500
// and its message stays in the log.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
	case errors.Is(err, auth.ErrForbidden):
		writeDetail(w, http.StatusForbidden, "Admin privileges required")
	case errors.Is(err, services.ErrQuotaExceeded):
		writeDetail(w, http.StatusForbidden, "Free plan limit reached")
	case errors.Is(err, services.ErrNotFound):
		writeDetail(w, http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
	case errors.Is(err, services.ErrTooManyAttempts):
		writeDetail(w, http.StatusTooManyRequests, "Too many login attempts, try again later")
	case errors.Is(err, services.ErrInvalidInput):
		writeDetail(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
		writeDetail(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// principal returns the authenticated principal, writing a 401 when there is none
func principal(w http.ResponseWriter, r *http.Request) (models.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthenticated)
	}
	return p, ok
}
