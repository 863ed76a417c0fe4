package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/otcheredev/notes-service/internal/models"
	"github.com/otcheredev/notes-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTenant(t *testing.T, s *Store, slug string) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{Name: slug, Slug: slug}
	require.NoError(t, s.CreateTenant(context.Background(), tenant))
	return tenant
}

func TestStore_Tenants(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	acme := seedTenant(t, s, "acme")
	require.NotEqual(t, uuid.Nil, acme.ID)
	require.Equal(t, models.PlanFree, acme.Plan)

	t.Run("duplicate slug", func(t *testing.T) {
		err := s.CreateTenant(ctx, &models.Tenant{Name: "Acme 2", Slug: "acme"})
		require.ErrorIs(t, err, repository.ErrAlreadyExists)
	})

	t.Run("get by id and slug", func(t *testing.T) {
		byID, err := s.GetTenantByID(ctx, acme.ID)
		require.NoError(t, err)
		require.Equal(t, "acme", byID.Slug)

		bySlug, err := s.GetTenantBySlug(ctx, "acme")
		require.NoError(t, err)
		require.Equal(t, acme.ID, bySlug.ID)
	})

	t.Run("missing tenant", func(t *testing.T) {
		_, err := s.GetTenantByID(ctx, uuid.New())
		require.ErrorIs(t, err, repository.ErrNotFound)

		_, err = s.GetTenantBySlug(ctx, "initech")
		require.ErrorIs(t, err, repository.ErrNotFound)

		_, err = s.UpdateTenantPlan(ctx, uuid.New(), models.PlanPro)
		require.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("update plan keeps slug", func(t *testing.T) {
		updated, err := s.UpdateTenantPlan(ctx, acme.ID, models.PlanPro)
		require.NoError(t, err)
		require.Equal(t, models.PlanPro, updated.Plan)
		require.Equal(t, "acme", updated.Slug)

		got, err := s.GetTenantByID(ctx, acme.ID)
		require.NoError(t, err)
		require.Equal(t, models.PlanPro, got.Plan)
	})

	t.Run("returned records are copies", func(t *testing.T) {
		got, err := s.GetTenantByID(ctx, acme.ID)
		require.NoError(t, err)
		got.Slug = "mutated"

		again, err := s.GetTenantByID(ctx, acme.ID)
		require.NoError(t, err)
		require.Equal(t, "acme", again.Slug)
	})
}

func TestStore_Users(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	acme := seedTenant(t, s, "acme")

	user := &models.User{Email: "alice@acme.com", HashedPassword: "x", TenantID: acme.ID}
	require.NoError(t, s.CreateUser(ctx, user))
	require.Equal(t, models.RoleMember, user.Role)

	got, err := s.GetUserByEmail(ctx, "alice@acme.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	err = s.CreateUser(ctx, &models.User{Email: "alice@acme.com", TenantID: acme.ID})
	require.ErrorIs(t, err, repository.ErrAlreadyExists)

	err = s.CreateUser(ctx, &models.User{Email: "bob@nowhere.com", TenantID: uuid.New()})
	require.ErrorIs(t, err, repository.ErrNotFound)

	mixed := &models.User{Email: "  Carol@ACME.com ", HashedPassword: "x", TenantID: acme.ID}
	require.NoError(t, s.CreateUser(ctx, mixed))
	require.Equal(t, "carol@acme.com", mixed.Email)

	got, err = s.GetUserByEmail(ctx, "carol@acme.com")
	require.NoError(t, err)
	require.Equal(t, mixed.ID, got.ID)

	err = s.CreateUser(ctx, &models.User{Email: "ALICE@acme.com", TenantID: acme.ID})
	require.ErrorIs(t, err, repository.ErrAlreadyExists)

	_, err = s.GetUserByEmail(ctx, "nobody@acme.com")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStore_NotesAreTenantScoped(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	acme := seedTenant(t, s, "acme")
	globex := seedTenant(t, s, "globex")

	first := &models.Note{Title: "first", TenantID: acme.ID, OwnerID: uuid.New()}
	second := &models.Note{Title: "second", TenantID: acme.ID, OwnerID: uuid.New()}
	foreign := &models.Note{Title: "globex", TenantID: globex.ID, OwnerID: uuid.New()}
	for _, n := range []*models.Note{first, second, foreign} {
		require.NoError(t, s.InsertNote(ctx, n))
	}

	count, err := s.CountNotesByTenant(ctx, acme.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	notes, err := s.ListNotesByTenant(ctx, acme.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	require.Equal(t, "first", notes[0].Title)
	require.Equal(t, "second", notes[1].Title)

	_, err = s.GetNoteByIDAndTenant(ctx, foreign.ID, acme.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)

	err = s.UpdateNote(ctx, &models.Note{ID: foreign.ID, TenantID: acme.ID, Title: "pwned"})
	require.ErrorIs(t, err, repository.ErrNotFound)

	err = s.DeleteNote(ctx, foreign.ID, acme.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)

	got, err := s.GetNoteByIDAndTenant(ctx, foreign.ID, globex.ID)
	require.NoError(t, err)
	require.Equal(t, "globex", got.Title)

	require.NoError(t, s.UpdateNote(ctx, &models.Note{ID: first.ID, TenantID: acme.ID, Title: "renamed", Content: "body"}))
	got, err = s.GetNoteByIDAndTenant(ctx, first.ID, acme.ID)
	require.NoError(t, err)
	require.Equal(t, "renamed", got.Title)
	require.Equal(t, "body", got.Content)

	require.NoError(t, s.DeleteNote(ctx, first.ID, acme.ID))
	_, err = s.GetNoteByIDAndTenant(ctx, first.ID, acme.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)

	notes, err = s.ListNotesByTenant(ctx, acme.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, second.ID, notes[0].ID)
}

func TestStore_TransactionRollback(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	acme := seedTenant(t, s, "acme")

	errBoom := errors.New("boom")
	err := s.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.InsertNote(ctx, &models.Note{Title: "lost", TenantID: acme.ID}); err != nil {
			return err
		}
		if _, err := tx.UpdateTenantPlan(ctx, acme.ID, models.PlanPro); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	count, err := s.CountNotesByTenant(ctx, acme.ID)
	require.NoError(t, err)
	require.Zero(t, count)

	tenant, err := s.GetTenantByID(ctx, acme.ID)
	require.NoError(t, err)
	require.Equal(t, models.PlanFree, tenant.Plan)

	err = s.Transaction(ctx, func(tx repository.Store) error {
		return tx.InsertNote(ctx, &models.Note{Title: "kept", TenantID: acme.ID})
	})
	require.NoError(t, err)

	count, err = s.CountNotesByTenant(ctx, acme.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestStore_RollbackKeepsConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	acme := seedTenant(t, s, "acme")
	globex := seedTenant(t, s, "globex")

	globexNote := &models.Note{Title: "globex", TenantID: globex.ID, OwnerID: uuid.New()}
	require.NoError(t, s.InsertNote(ctx, globexNote))

	var (
		wg      sync.WaitGroup
		started = make(chan struct{})
	)
	errBoom := errors.New("boom")
	err := s.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.InsertNote(ctx, &models.Note{Title: "lost", TenantID: acme.ID}); err != nil {
			return err
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			close(started)
			_, err := s.UpdateTenantPlan(ctx, globex.ID, models.PlanPro)
			assert.NoError(t, err)
			assert.NoError(t, s.DeleteNote(ctx, globexNote.ID, globex.ID))
		}()
		<-started
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)
	wg.Wait()

	tenant, err := s.GetTenantByID(ctx, globex.ID)
	require.NoError(t, err)
	require.Equal(t, models.PlanPro, tenant.Plan)

	_, err = s.GetNoteByIDAndTenant(ctx, globexNote.ID, globex.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)

	count, err := s.CountNotesByTenant(ctx, acme.ID)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestStore_RollbackRestoresUpdatesAndDeletes(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	acme := seedTenant(t, s, "acme")

	var notes []*models.Note
	for _, title := range []string{"first", "second", "third"} {
		n := &models.Note{Title: title, TenantID: acme.ID, OwnerID: uuid.New()}
		require.NoError(t, s.InsertNote(ctx, n))
		notes = append(notes, n)
	}

	errBoom := errors.New("boom")
	err := s.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.UpdateNote(ctx, &models.Note{ID: notes[1].ID, TenantID: acme.ID, Title: "edited"}); err != nil {
			return err
		}
		if err := tx.DeleteNote(ctx, notes[1].ID, acme.ID); err != nil {
			return err
		}
		if err := tx.DeleteNote(ctx, notes[0].ID, acme.ID); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	list, err := s.ListNotesByTenant(ctx, acme.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, n := range list {
		require.Equal(t, notes[i].ID, n.ID)
		require.Equal(t, notes[i].Title, n.Title)
	}
}

func TestStore_CanceledContext(t *testing.T) {
	s := NewStore()
	acme := seedTenant(t, s, "acme")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.InsertNote(ctx, &models.Note{Title: "late", TenantID: acme.ID})
	require.ErrorIs(t, err, context.Canceled)

	err = s.Transaction(ctx, func(tx repository.Store) error {
		t.Fatal("transaction body must not run on a canceled context")
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestAuditLog_GetByTenantID(t *testing.T) {
	ctx := context.Background()
	a := NewAuditLog()
	acme, globex := uuid.New(), uuid.New()

	for _, action := range []string{"one", "two", "three"} {
		require.NoError(t, a.Create(ctx, &models.AuditLog{TenantID: acme, Action: action}))
	}
	require.NoError(t, a.Create(ctx, &models.AuditLog{TenantID: globex, Action: "other"}))

	logs, err := a.GetByTenantID(ctx, acme, 0, 0)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	require.Equal(t, "three", logs[0].Action)

	logs, err = a.GetByTenantID(ctx, acme, 1, 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "two", logs[0].Action)

	logs, err = a.GetByTenantID(ctx, acme, 10, 5)
	require.NoError(t, err)
	require.Empty(t, logs)
}
