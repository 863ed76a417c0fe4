package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/otcheredev/notes-service/internal/metrics"
	"github.com/otcheredev/notes-service/internal/models"
	"github.com/otcheredev/notes-service/internal/repository"
)

// DefaultFreePlanNoteLimit is the number of notes a free tenant may hold
const DefaultFreePlanNoteLimit = 3

// QuotaEnforcer gates note creation on the tenant's plan
type QuotaEnforcer struct {
	freeLimit int
	strict    bool
}

// NewQuotaEnforcer creates a quota enforcer. In strict mode the check and the
// insert that follows it must run in one transaction holding the tenant row lock.
func NewQuotaEnforcer(freeLimit int, strict bool) *QuotaEnforcer {
	return &QuotaEnforcer{freeLimit: freeLimit, strict: strict}
}

// Strict reports whether creations are serialized per tenant
func (q *QuotaEnforcer) Strict() bool {
	return q.strict
}

// Limit returns the note limit for plan and whether the plan is limited at all
func (q *QuotaEnforcer) Limit(plan models.Plan) (int, bool) {
	if plan == models.PlanPro {
		return 0, false
	}
	return q.freeLimit, true
}

// CheckCreateAllowed returns ErrQuotaExceeded when the tenant may not create another note
func (q *QuotaEnforcer) CheckCreateAllowed(ctx context.Context, store repository.Store, tenantID uuid.UUID) error {
	var (
		tenant *models.Tenant
		err    error
	)
	if q.strict {
		tenant, err = store.LockTenant(ctx, tenantID)
	} else {
		tenant, err = store.GetTenantByID(ctx, tenantID)
	}
	if err != nil {
		return storeError(err)
	}

	limit, limited := q.Limit(tenant.Plan)
	if !limited {
		return nil
	}

	count, err := store.CountNotesByTenant(ctx, tenantID)
	if err != nil {
		return err
	}
	if count >= int64(limit) {
		metrics.QuotaRejections.Inc()
		return fmt.Errorf("%w: %s plan allows %d notes", ErrQuotaExceeded, tenant.Plan, limit)
	}
	return nil
}
