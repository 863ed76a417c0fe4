package services

import (
	"context"
	"testing"

	"github.com/otcheredev/notes-service/internal/auth"
	"github.com/otcheredev/notes-service/internal/models"
	"github.com/otcheredev/notes-service/internal/repository/memory"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "correct horse battery staple"

type fixture struct {
	store   *memory.Store
	audit   *memory.AuditLog
	hasher  *auth.BcryptHasher
	quota   *QuotaEnforcer
	notes   *NoteService
	tenants *TenantService
	audits  *AuditService
}

func newFixture(t *testing.T, strict bool) *fixture {
	t.Helper()

	hasher, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	f := &fixture{
		store:  memory.NewStore(),
		audit:  memory.NewAuditLog(),
		hasher: hasher,
		quota:  NewQuotaEnforcer(DefaultFreePlanNoteLimit, strict),
	}
	f.audits = NewAuditService(f.audit)
	f.notes = NewNoteService(f.store, f.quota, f.audits)
	f.tenants = NewTenantService(f.store, f.quota, f.audits)
	return f
}

func (f *fixture) tenant(t *testing.T, slug string, plan models.Plan) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{Name: slug, Slug: slug, Plan: plan}
	require.NoError(t, f.store.CreateTenant(context.Background(), tenant))
	return tenant
}

func (f *fixture) user(t *testing.T, tenant *models.Tenant, email string, role models.Role) models.Principal {
	t.Helper()
	hashed, err := f.hasher.Hash(testPassword)
	require.NoError(t, err)

	user := &models.User{
		Email:          email,
		HashedPassword: hashed,
		Role:           role,
		TenantID:       tenant.ID,
	}
	require.NoError(t, f.store.CreateUser(context.Background(), user))

	return models.Principal{
		Email:    user.Email,
		TenantID: user.TenantID,
		Role:     user.Role,
		UserID:   user.ID,
	}
}

func noteInput(title string) models.NoteInput {
	return models.NoteInput{Title: title, Content: title + " body"}
}
