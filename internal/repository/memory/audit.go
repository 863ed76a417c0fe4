package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/otcheredev/notes-service/internal/models"
)

// AuditLog keeps audit entries in memory
type AuditLog struct {
	mu      sync.RWMutex
	entries []models.AuditLog
}

// NewAuditLog creates a new in-memory audit log
func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

// Create appends an audit log entry
func (a *AuditLog) Create(ctx context.Context, log *models.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	a.entries = append(a.entries, *log)
	return nil
}

// GetByTenantID retrieves audit logs for a tenant, newest first
func (a *AuditLog) GetByTenantID(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]models.AuditLog, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	logs := []models.AuditLog{}
	for _, entry := range slices.Backward(a.entries) {
		if entry.TenantID == tenantID {
			logs = append(logs, entry)
		}
	}

	if offset > 0 {
		if offset >= len(logs) {
			return []models.AuditLog{}, nil
		}
		logs = logs[offset:]
	}
	if limit > 0 && limit < len(logs) {
		logs = logs[:limit]
	}
	return logs, nil
}
