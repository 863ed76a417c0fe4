package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/otcheredev/notes-service/internal/metrics"
	"github.com/otcheredev/notes-service/internal/models"
	"github.com/otcheredev/notes-service/internal/repository"
)

const maxTitleLength = 255

// NoteService handles tenant-scoped note operations
type NoteService struct {
	store repository.Store
	quota *QuotaEnforcer
	audit *AuditService
}

// NewNoteService creates a new note service
func NewNoteService(store repository.Store, quota *QuotaEnforcer, audit *AuditService) *NoteService {
	return &NoteService{
		store: store,
		quota: quota,
		audit: audit,
	}
}

func validateNoteInput(in models.NoteInput) (models.NoteInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return in, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len(in.Title) > maxTitleLength {
		return in, fmt.Errorf("%w: title exceeds %d characters", ErrInvalidInput, maxTitleLength)
	}
	return in, nil
}

// Create creates a note in the principal's tenant after the quota check
func (s *NoteService) Create(ctx context.Context, p models.Principal, in models.NoteInput) (*models.Note, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	in, err := validateNoteInput(in)
	if err != nil {
		return nil, err
	}

	note := &models.Note{
		Title:    in.Title,
		Content:  in.Content,
		TenantID: p.TenantID,
		OwnerID:  p.UserID,
	}

	create := func(store repository.Store) error {
		if err := s.quota.CheckCreateAllowed(ctx, store, p.TenantID); err != nil {
			return err
		}
		return store.InsertNote(ctx, note)
	}

	if s.quota.Strict() {
		err = s.store.Transaction(ctx, create)
	} else {
		err = create(s.store)
	}
	if err != nil {
		return nil, storeError(err)
	}

	metrics.NoteOperations.WithLabelValues("create").Inc()
	s.audit.Record(ctx, p, models.AuditActionNoteCreate, "note", note.ID.String())
	return note, nil
}

// List returns all notes of the principal's tenant
func (s *NoteService) List(ctx context.Context, p models.Principal) ([]models.Note, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	notes, err := s.store.ListNotesByTenant(ctx, p.TenantID)
	if err != nil {
		return nil, err
	}
	return notes, nil
}

// Get returns a note of the principal's tenant
func (s *NoteService) Get(ctx context.Context, p models.Principal, id uuid.UUID) (*models.Note, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	note, err := s.store.GetNoteByIDAndTenant(ctx, id, p.TenantID)
	if err != nil {
		return nil, storeError(err)
	}
	return note, nil
}

// Update replaces title and content of a note of the principal's tenant
func (s *NoteService) Update(ctx context.Context, p models.Principal, id uuid.UUID, in models.NoteInput) (*models.Note, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	in, err := validateNoteInput(in)
	if err != nil {
		return nil, err
	}

	err = s.store.UpdateNote(ctx, &models.Note{
		ID:       id,
		TenantID: p.TenantID,
		Title:    in.Title,
		Content:  in.Content,
	})
	if err != nil {
		return nil, storeError(err)
	}

	note, err := s.store.GetNoteByIDAndTenant(ctx, id, p.TenantID)
	if err != nil {
		return nil, storeError(err)
	}

	metrics.NoteOperations.WithLabelValues("update").Inc()
	s.audit.Record(ctx, p, models.AuditActionNoteUpdate, "note", id.String())
	return note, nil
}

// Delete removes a note of the principal's tenant
func (s *NoteService) Delete(ctx context.Context, p models.Principal, id uuid.UUID) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}
	if err := s.store.DeleteNote(ctx, id, p.TenantID); err != nil {
		return storeError(err)
	}

	metrics.NoteOperations.WithLabelValues("delete").Inc()
	s.audit.Record(ctx, p, models.AuditActionNoteDelete, "note", id.String())
	return nil
}
