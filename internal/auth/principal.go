package auth

import (
	"fmt"

	"github.com/otcheredev/notes-service/internal/models"
)

// RequireAdmin returns the principal unchanged when it holds the admin role
func RequireAdmin(p models.Principal) (models.Principal, error) {
	if !p.IsAdmin() {
		return models.Principal{}, fmt.Errorf("%w: admin role required", ErrForbidden)
	}
	return p, nil
}
