package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/otcheredev/notes-service/internal/models"
)

// Identity is the set of facts embedded in an issued token
type Identity struct {
	Email    string
	TenantID uuid.UUID
	Role     models.Role
	UserID   uuid.UUID
}

func (id Identity) complete() bool {
	return id.Email != "" && id.TenantID != uuid.Nil && id.UserID != uuid.Nil && id.Role.Valid()
}

// Claims represents custom JWT claims. The subject carries the user's email.
type Claims struct {
	TenantID uuid.UUID   `json:"tenant_id"`
	Role     models.Role `json:"role"`
	UserID   uuid.UUID   `json:"user_id"`
	jwt.RegisteredClaims
}

// Identity returns the identity the claims were issued for
func (c *Claims) Identity() Identity {
	return Identity{
		Email:    c.Subject,
		TenantID: c.TenantID,
		Role:     c.Role,
		UserID:   c.UserID,
	}
}

// Principal projects the claims into a request principal without any store lookup
func (c *Claims) Principal() models.Principal {
	return models.Principal{
		Email:    c.Subject,
		TenantID: c.TenantID,
		Role:     c.Role,
		UserID:   c.UserID,
	}
}
