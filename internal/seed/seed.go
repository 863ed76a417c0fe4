package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/otcheredev/notes-service/internal/auth"
	"github.com/otcheredev/notes-service/internal/models"
	"github.com/otcheredev/notes-service/internal/repository"
	"github.com/rs/zerolog/log"
)

// DefaultPassword is the password of every demo account
const DefaultPassword = "password"

// Target receives seeded records
type Target interface {
	CreateTenant(ctx context.Context, tenant *models.Tenant) error
	CreateUser(ctx context.Context, user *models.User) error
	GetTenantBySlug(ctx context.Context, slug string) (*models.Tenant, error)
}

type account struct {
	email  string
	role   models.Role
	tenant string
}

var (
	tenants = []models.Tenant{
		{Name: "Acme", Slug: "acme", Plan: models.PlanFree},
		{Name: "Globex", Slug: "globex", Plan: models.PlanFree},
	}

	accounts = []account{
		{email: "admin@acme.test", role: models.RoleAdmin, tenant: "acme"},
		{email: "user@acme.test", role: models.RoleMember, tenant: "acme"},
		{email: "admin@globex.test", role: models.RoleAdmin, tenant: "globex"},
		{email: "user@globex.test", role: models.RoleMember, tenant: "globex"},
	}
)

// Demo creates the demo tenants and accounts. Records that already exist are left alone,
// so running it twice is safe.
func Demo(ctx context.Context, target Target, hasher auth.Hasher) error {
	for _, t := range tenants {
		tenant := t
		if err := target.CreateTenant(ctx, &tenant); err != nil {
			if !errors.Is(err, repository.ErrAlreadyExists) {
				return fmt.Errorf("failed to seed tenant %s: %w", t.Slug, err)
			}
			continue
		}
		log.Info().Str("tenant", tenant.Slug).Msg("Seeded tenant")
	}

	hashed, err := hasher.Hash(DefaultPassword)
	if err != nil {
		return err
	}

	for _, a := range accounts {
		tenant, err := target.GetTenantBySlug(ctx, a.tenant)
		if err != nil {
			return fmt.Errorf("failed to load tenant %s: %w", a.tenant, err)
		}

		user := &models.User{
			Email:          a.email,
			HashedPassword: hashed,
			Role:           a.role,
			TenantID:       tenant.ID,
		}
		if err := target.CreateUser(ctx, user); err != nil {
			if !errors.Is(err, repository.ErrAlreadyExists) {
				return fmt.Errorf("failed to seed user %s: %w", a.email, err)
			}
			continue
		}
		log.Info().Str("email", user.Email).Str("role", string(user.Role)).Msg("Seeded user")
	}

	return nil
}
