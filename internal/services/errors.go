package services

import (
	"errors"

	"github.com/otcheredev/notes-service/internal/repository"
)

var (
	// ErrNotFound covers both missing entities and entities outside the caller's tenant
	ErrNotFound           = errors.New("not found")
	ErrQuotaExceeded      = errors.New("free plan limit reached")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many login attempts")
	ErrInvalidInput       = errors.New("invalid input")
)

// storeError hides store detail for missing records so callers cannot tell
// "absent" from "belongs to another tenant"
func storeError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
