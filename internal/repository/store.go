package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/otcheredev/notes-service/internal/models"
)

// Sentinel errors for store operations
var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// Store is the persistence contract the notes core depends on.
// Every call is atomic and a completed write is visible to the next read.
type Store interface {
	// GetTenantByID returns ErrNotFound if the tenant doesn't exist.
	GetTenantByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)

	// GetTenantBySlug returns ErrNotFound if no tenant has the slug.
	GetTenantBySlug(ctx context.Context, slug string) (*models.Tenant, error)

	// LockTenant reads a tenant and holds a row lock on it until the surrounding
	// transaction ends. Outside a transaction it behaves like GetTenantByID.
	LockTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error)

	// UpdateTenantPlan sets the plan column only and returns the updated tenant.
	UpdateTenantPlan(ctx context.Context, id uuid.UUID, plan models.Plan) (*models.Tenant, error)

	// GetUserByEmail looks up a user by its (lower-cased) email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	CountNotesByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
	ListNotesByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Note, error)

	// GetNoteByIDAndTenant returns ErrNotFound when the note is missing or belongs to another tenant.
	GetNoteByIDAndTenant(ctx context.Context, id, tenantID uuid.UUID) (*models.Note, error)

	InsertNote(ctx context.Context, note *models.Note) error

	// UpdateNote writes title and content of the note matching note.ID and note.TenantID.
	UpdateNote(ctx context.Context, note *models.Note) error

	// DeleteNote hard-deletes the note matching id and tenantID.
	DeleteNote(ctx context.Context, id, tenantID uuid.UUID) error

	// Transaction runs fn against a store bound to a single transaction,
	// committing when fn returns nil and rolling back otherwise.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
