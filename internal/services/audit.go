package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/otcheredev/notes-service/internal/auth"
	"github.com/otcheredev/notes-service/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	defaultAuditPageSize = 50
	maxAuditPageSize     = 200
)

// AuditStore persists audit log entries
type AuditStore interface {
	Create(ctx context.Context, log *models.AuditLog) error
	GetByTenantID(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]models.AuditLog, error)
}

// AuditService records and lists tenant audit trails
type AuditService struct {
	store AuditStore
}

// NewAuditService creates a new audit service
func NewAuditService(store AuditStore) *AuditService {
	return &AuditService{store: store}
}

// Record writes an audit entry for a successful action. Failures are logged, never returned.
func (s *AuditService) Record(ctx context.Context, p models.Principal, action, resourceType, resourceID string) {
	if s == nil || s.store == nil {
		return
	}

	entry := &models.AuditLog{
		TenantID:     p.TenantID,
		UserID:       p.UserID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Status:       "success",
	}
	if err := s.store.Create(ctx, entry); err != nil {
		log.Error().Err(err).
			Str("action", action).
			Str("tenant_id", p.TenantID.String()).
			Msg("Failed to record audit log")
	}
}

// List returns the audit trail of the admin's own tenant, newest first
func (s *AuditService) List(ctx context.Context, p models.Principal, limit, offset int) ([]models.AuditLog, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if _, err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultAuditPageSize
	}
	if limit > maxAuditPageSize {
		limit = maxAuditPageSize
	}
	if offset < 0 {
		offset = 0
	}

	logs, err := s.store.GetByTenantID(ctx, p.TenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, nil
}

// requirePrincipal rejects a principal that was not produced by token verification
func requirePrincipal(p models.Principal) error {
	if p.TenantID == uuid.Nil || p.UserID == uuid.Nil || !p.Role.Valid() {
		return fmt.Errorf("%w: no principal", auth.ErrUnauthenticated)
	}
	return nil
}
