package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/otcheredev/notes-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store on a gorm database handle
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new gorm-backed store
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// translateError maps gorm errors onto the store sentinels
func translateError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrAlreadyExists
	default:
		return err
	}
}

// GetTenantByID retrieves a tenant by ID
func (s *GormStore) GetTenantByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&tenant).Error; err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", translateError(err))
	}
	return &tenant, nil
}

// GetTenantBySlug retrieves a tenant by slug
func (s *GormStore) GetTenantBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&tenant).Error; err != nil {
		return nil, fmt.Errorf("failed to get tenant by slug: %w", translateError(err))
	}
	return &tenant, nil
}

// LockTenant retrieves a tenant with SELECT ... FOR UPDATE
func (s *GormStore) LockTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&tenant).Error; err != nil {
		return nil, fmt.Errorf("failed to lock tenant: %w", translateError(err))
	}
	return &tenant, nil
}

// UpdateTenantPlan updates the plan of a tenant
func (s *GormStore) UpdateTenantPlan(ctx context.Context, id uuid.UUID, plan models.Plan) (*models.Tenant, error) {
	var tenant *models.Tenant
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Tenant{}).Where("id = ?", id).Update("plan", plan)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		var updated models.Tenant
		if err := tx.Where("id = ?", id).First(&updated).Error; err != nil {
			return err
		}
		tenant = &updated
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update tenant plan: %w", translateError(err))
	}
	return tenant, nil
}

// GetUserByEmail retrieves a user by email
func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to get user: %w", translateError(err))
	}
	return &user, nil
}

// CountNotesByTenant counts the notes of a tenant
func (s *GormStore) CountNotesByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Note{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}
	return count, nil
}

// ListNotesByTenant retrieves all notes of a tenant, oldest first
func (s *GormStore) ListNotesByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Note, error) {
	notes := []models.Note{}
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC, id ASC").
		Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

// GetNoteByIDAndTenant retrieves a note scoped to a tenant
func (s *GormStore) GetNoteByIDAndTenant(ctx context.Context, id, tenantID uuid.UUID) (*models.Note, error) {
	var note models.Note
	if err := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&note).Error; err != nil {
		return nil, fmt.Errorf("failed to get note: %w", translateError(err))
	}
	return &note, nil
}

// InsertNote creates a new note
func (s *GormStore) InsertNote(ctx context.Context, note *models.Note) error {
	if err := s.db.WithContext(ctx).Create(note).Error; err != nil {
		return fmt.Errorf("failed to insert note: %w", translateError(err))
	}
	return nil
}

// UpdateNote updates title and content of a tenant's note
func (s *GormStore) UpdateNote(ctx context.Context, note *models.Note) error {
	result := s.db.WithContext(ctx).
		Model(&models.Note{}).
		Where("id = ? AND tenant_id = ?", note.ID, note.TenantID).
		Updates(map[string]interface{}{
			"title":   note.Title,
			"content": note.Content,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update note: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update note: %w", ErrNotFound)
	}
	return nil
}

// DeleteNote deletes a tenant's note
func (s *GormStore) DeleteNote(ctx context.Context, id, tenantID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&models.Note{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete note: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to delete note: %w", ErrNotFound)
	}
	return nil
}

// Transaction runs fn inside a database transaction
func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// CreateTenant creates a new tenant
func (s *GormStore) CreateTenant(ctx context.Context, tenant *models.Tenant) error {
	if err := s.db.WithContext(ctx).Create(tenant).Error; err != nil {
		return fmt.Errorf("failed to create tenant: %w", translateError(err))
	}
	return nil
}

// CreateUser creates a new user
func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", translateError(err))
	}
	return nil
}
