package fakes

import (
	"context"
	"sync"

	"github.com/ads-marketplace/tactics/internal/models"
)

// AuditLog records entries in memory, newest last.
type AuditLog struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

func (a *AuditLog) Log(_ context.Context, entry models.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	entry.ID = int64(len(a.entries) + 1)
	a.entries = append(a.entries, entry)
	return nil
}

func (a *AuditLog) GetByEntity(_ context.Context, entityType, entityID string, limit, offset int) ([]models.AuditLog, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := []models.AuditLog{}
	for i := len(a.entries) - 1; i >= 0; i-- {
		e := a.entries[i]
		if e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	if offset >= len(out) {
		return []models.AuditLog{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Actions lists the recorded actions for an entity, oldest first.
func (a *AuditLog) Actions(entityID string) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []string
	for _, e := range a.entries {
		if e.EntityID == entityID {
			out = append(out, e.Action)
		}
	}
	return out
}
