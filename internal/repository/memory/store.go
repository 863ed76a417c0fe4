package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/otcheredev/notes-service/internal/models"
	"github.com/otcheredev/notes-service/internal/repository"
)

// Store implements repository.Store using in-memory storage.
// Data is lost on restart; it backs tests and local runs without PostgreSQL.
type Store struct {
	// txMu serializes writers; a transaction holds it until commit or rollback,
	// standing in for row locks
	txMu sync.Mutex

	mu        sync.RWMutex
	tenants   map[uuid.UUID]*models.Tenant
	users     map[uuid.UUID]*models.User
	notes     map[uuid.UUID]*models.Note
	noteOrder []uuid.UUID // insertion order
	now       func() time.Time
}

var (
	_ repository.Store = (*Store)(nil)
	_ repository.Store = (*txStore)(nil)
)

// NewStore creates a new in-memory store
func NewStore() *Store {
	return &Store{
		tenants: make(map[uuid.UUID]*models.Tenant),
		users:   make(map[uuid.UUID]*models.User),
		notes:   make(map[uuid.UUID]*models.Note),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateTenant stores a new tenant. Slugs are unique.
func (s *Store) CreateTenant(ctx context.Context, tenant *models.Tenant) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.createTenant(tenant, nil)
}

func (s *Store) createTenant(tenant *models.Tenant, undo *undoLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tenants {
		if t.Slug == tenant.Slug || t.ID == tenant.ID {
			return fmt.Errorf("failed to create tenant: %w", repository.ErrAlreadyExists)
		}
	}

	if tenant.ID == uuid.Nil {
		tenant.ID = uuid.New()
	}
	if tenant.Plan == "" {
		tenant.Plan = models.PlanFree
	}
	now := s.now()
	tenant.CreatedAt, tenant.UpdatedAt = now, now

	clone := *tenant
	s.tenants[tenant.ID] = &clone

	id := tenant.ID
	undo.add(func() { delete(s.tenants, id) })
	return nil
}

// CreateUser stores a new user. Emails are normalized and unique, and the tenant must exist.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.createUser(user, nil)
}

func (s *Store) createUser(user *models.User, undo *undoLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.Email = models.NormalizeEmail(user.Email)
	if _, ok := s.tenants[user.TenantID]; !ok {
		return fmt.Errorf("failed to create user: tenant %s: %w", user.TenantID, repository.ErrNotFound)
	}
	for _, u := range s.users {
		if u.Email == user.Email || u.ID == user.ID {
			return fmt.Errorf("failed to create user: %w", repository.ErrAlreadyExists)
		}
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = models.RoleMember
	}
	now := s.now()
	user.CreatedAt, user.UpdatedAt = now, now

	clone := *user
	clone.Tenant = nil
	s.users[user.ID] = &clone

	id := user.ID
	undo.add(func() { delete(s.users, id) })
	return nil
}

// GetTenantByID retrieves a tenant by ID
func (s *Store) GetTenantByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tenant, ok := s.tenants[id]
	if !ok {
		return nil, fmt.Errorf("failed to get tenant: %w", repository.ErrNotFound)
	}
	clone := *tenant
	return &clone, nil
}

// GetTenantBySlug retrieves a tenant by slug
func (s *Store) GetTenantBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tenant := range s.tenants {
		if tenant.Slug == slug {
			clone := *tenant
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("failed to get tenant by slug: %w", repository.ErrNotFound)
}

// LockTenant retrieves a tenant. Transactions are already serialized, so no extra lock is taken.
func (s *Store) LockTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return s.GetTenantByID(ctx, id)
}

// UpdateTenantPlan updates the plan of a tenant
func (s *Store) UpdateTenantPlan(ctx context.Context, id uuid.UUID, plan models.Plan) (*models.Tenant, error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.updateTenantPlan(id, plan, nil)
}

func (s *Store) updateTenantPlan(id uuid.UUID, plan models.Plan, undo *undoLog) (*models.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenant, ok := s.tenants[id]
	if !ok {
		return nil, fmt.Errorf("failed to update tenant plan: %w", repository.ErrNotFound)
	}
	prev := *tenant
	undo.add(func() { *tenant = prev })

	tenant.Plan = plan
	tenant.UpdatedAt = s.now()

	clone := *tenant
	return &clone, nil
}

// GetUserByEmail retrieves a user by email
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = models.NormalizeEmail(email)
	for _, user := range s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("failed to get user: %w", repository.ErrNotFound)
}

// CountNotesByTenant counts the notes of a tenant
func (s *Store) CountNotesByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, note := range s.notes {
		if note.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

// ListNotesByTenant retrieves all notes of a tenant in insertion order
func (s *Store) ListNotesByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notes := []models.Note{}
	for _, id := range s.noteOrder {
		if note := s.notes[id]; note.TenantID == tenantID {
			notes = append(notes, *note)
		}
	}
	return notes, nil
}

// GetNoteByIDAndTenant retrieves a note scoped to a tenant
func (s *Store) GetNoteByIDAndTenant(ctx context.Context, id, tenantID uuid.UUID) (*models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	note, ok := s.notes[id]
	if !ok || note.TenantID != tenantID {
		return nil, fmt.Errorf("failed to get note: %w", repository.ErrNotFound)
	}
	clone := *note
	return &clone, nil
}

// InsertNote creates a new note
func (s *Store) InsertNote(ctx context.Context, note *models.Note) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.insertNote(note, nil)
}

func (s *Store) insertNote(note *models.Note, undo *undoLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tenants[note.TenantID]; !ok {
		return fmt.Errorf("failed to insert note: tenant %s: %w", note.TenantID, repository.ErrNotFound)
	}
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	if _, exists := s.notes[note.ID]; exists {
		return fmt.Errorf("failed to insert note: %w", repository.ErrAlreadyExists)
	}
	now := s.now()
	note.CreatedAt, note.UpdatedAt = now, now

	clone := *note
	s.notes[note.ID] = &clone
	s.noteOrder = append(s.noteOrder, note.ID)

	id := note.ID
	undo.add(func() {
		delete(s.notes, id)
		s.noteOrder = slices.DeleteFunc(s.noteOrder, func(n uuid.UUID) bool { return n == id })
	})
	return nil
}

// UpdateNote updates title and content of a tenant's note
func (s *Store) UpdateNote(ctx context.Context, note *models.Note) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.updateNote(note, nil)
}

func (s *Store) updateNote(note *models.Note, undo *undoLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.notes[note.ID]
	if !ok || existing.TenantID != note.TenantID {
		return fmt.Errorf("failed to update note: %w", repository.ErrNotFound)
	}
	prev := *existing
	undo.add(func() { *existing = prev })

	existing.Title = note.Title
	existing.Content = note.Content
	existing.UpdatedAt = s.now()
	return nil
}

// DeleteNote deletes a tenant's note
func (s *Store) DeleteNote(ctx context.Context, id, tenantID uuid.UUID) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.deleteNote(id, tenantID, nil)
}

func (s *Store) deleteNote(id, tenantID uuid.UUID, undo *undoLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, ok := s.notes[id]
	if !ok || note.TenantID != tenantID {
		return fmt.Errorf("failed to delete note: %w", repository.ErrNotFound)
	}
	pos := slices.Index(s.noteOrder, id)
	undo.add(func() {
		s.notes[id] = note
		s.noteOrder = slices.Insert(s.noteOrder, min(pos, len(s.noteOrder)), id)
	})

	delete(s.notes, id)
	s.noteOrder = slices.DeleteFunc(s.noteOrder, func(n uuid.UUID) bool { return n == id })
	return nil
}

// Transaction runs fn with writers serialized store-wide: no other write lands
// until fn returns. Writes made through tx are undone in reverse order when fn
// returns an error; nothing else is touched.
func (s *Store) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &txStore{Store: s}
	if err := fn(tx); err != nil {
		s.rollback(tx.undo)
		return err
	}
	return nil
}

func (s *Store) rollback(undo undoLog) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(undo) - 1; i >= 0; i-- {
		undo[i]()
	}
}

// undoLog holds inverse operations, each run with mu held
type undoLog []func()

func (u *undoLog) add(fn func()) {
	if u != nil {
		*u = append(*u, fn)
	}
}

// txStore is the view of Store handed to a transaction body. Writes skip txMu,
// which the transaction already holds, and record how to undo themselves.
type txStore struct {
	*Store
	undo undoLog
}

func (tx *txStore) CreateTenant(ctx context.Context, tenant *models.Tenant) error {
	return tx.createTenant(tenant, &tx.undo)
}

func (tx *txStore) CreateUser(ctx context.Context, user *models.User) error {
	return tx.createUser(user, &tx.undo)
}

func (tx *txStore) UpdateTenantPlan(ctx context.Context, id uuid.UUID, plan models.Plan) (*models.Tenant, error) {
	return tx.updateTenantPlan(id, plan, &tx.undo)
}

func (tx *txStore) InsertNote(ctx context.Context, note *models.Note) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	return tx.insertNote(note, &tx.undo)
}

func (tx *txStore) UpdateNote(ctx context.Context, note *models.Note) error {
	return tx.updateNote(note, &tx.undo)
}

func (tx *txStore) DeleteNote(ctx context.Context, id, tenantID uuid.UUID) error {
	return tx.deleteNote(id, tenantID, &tx.undo)
}

// Transaction joins the enclosing transaction
func (tx *txStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return fn(tx)
}
