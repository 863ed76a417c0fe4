package seed

import (
	"context"
	"testing"

	"github.com/otcheredev/notes-service/internal/auth"
	"github.com/otcheredev/notes-service/internal/models"
	"github.com/otcheredev/notes-service/internal/repository/memory"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestDemo(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	hasher, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	require.NoError(t, Demo(ctx, store, hasher))
	require.NoError(t, Demo(ctx, store, hasher))

	acme, err := store.GetTenantBySlug(ctx, "acme")
	require.NoError(t, err)
	require.Equal(t, models.PlanFree, acme.Plan)

	admin, err := store.GetUserByEmail(ctx, "admin@acme.test")
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, admin.Role)
	require.Equal(t, acme.ID, admin.TenantID)
	require.True(t, hasher.Verify(DefaultPassword, admin.HashedPassword))

	member, err := store.GetUserByEmail(ctx, "user@globex.test")
	require.NoError(t, err)
	require.Equal(t, models.RoleMember, member.Role)
}
