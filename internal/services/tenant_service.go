package services

import (
	"context"

	"github.com/otcheredev/notes-service/internal/auth"
	"github.com/otcheredev/notes-service/internal/metrics"
	"github.com/otcheredev/notes-service/internal/models"
	"github.com/otcheredev/notes-service/internal/repository"
	"github.com/rs/zerolog/log"
)

// TenantService handles tenant plan operations
type TenantService struct {
	store repository.Store
	quota *QuotaEnforcer
	audit *AuditService
}

// NewTenantService creates a new tenant service
func NewTenantService(store repository.Store, quota *QuotaEnforcer, audit *AuditService) *TenantService {
	return &TenantService{
		store: store,
		quota: quota,
		audit: audit,
	}
}

// lookup returns the tenant with slug when it is the principal's own tenant
func (s *TenantService) lookup(ctx context.Context, p models.Principal, slug string) (*models.Tenant, error) {
	tenant, err := s.store.GetTenantBySlug(ctx, slug)
	if err != nil {
		return nil, storeError(err)
	}
	if tenant.ID != p.TenantID {
		return nil, ErrNotFound
	}
	return tenant, nil
}

// Upgrade moves the admin's tenant to the pro plan. Upgrading a pro tenant is a no-op.
func (s *TenantService) Upgrade(ctx context.Context, p models.Principal, slug string) (*models.Tenant, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if _, err := auth.RequireAdmin(p); err != nil {
		metrics.RecordAuthFailure(metrics.ReasonForbidden)
		return nil, err
	}

	tenant, err := s.lookup(ctx, p, slug)
	if err != nil {
		return nil, err
	}
	if tenant.Plan == models.PlanPro {
		return tenant, nil
	}

	upgraded, err := s.store.UpdateTenantPlan(ctx, tenant.ID, models.PlanPro)
	if err != nil {
		return nil, storeError(err)
	}

	metrics.TenantUpgrades.Inc()
	s.audit.Record(ctx, p, models.AuditActionTenantUpgrade, "tenant", tenant.Slug)
	log.Info().
		Str("tenant", tenant.Slug).
		Str("admin", p.Email).
		Msg("Tenant upgraded to pro")

	return upgraded, nil
}

// Usage returns the principal's tenant with its note count and plan limit
func (s *TenantService) Usage(ctx context.Context, p models.Principal, slug string) (*models.TenantUsage, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}

	tenant, err := s.lookup(ctx, p, slug)
	if err != nil {
		return nil, err
	}

	count, err := s.store.CountNotesByTenant(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}

	usage := &models.TenantUsage{Tenant: *tenant, NoteCount: count}
	if limit, limited := s.quota.Limit(tenant.Plan); limited {
		usage.NoteLimit = &limit
	}
	return usage, nil
}
