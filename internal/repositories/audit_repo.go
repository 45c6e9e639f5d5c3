package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ads-marketplace/tactics/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

const maxAuditPage = 500

// AuditRepo stores the append-only tactic audit trail.
type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

func (r *AuditRepo) Log(ctx context.Context, entry models.AuditLog) error {
	var meta []byte
	if entry.Meta != nil {
		b, err := json.Marshal(entry.Meta)
		if err != nil {
			return fmt.Errorf("encode audit meta: %w", err)
		}
		meta = b
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_log (customer_id, actor_type, action, entity_type, entity_id, meta)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.CustomerID, entry.ActorType, entry.Action, entry.EntityType, entry.EntityID, nullJSON(meta))
	if err != nil {
		return fmt.Errorf("%w: insert audit entry %s: %v", models.ErrPersistence, entry.Action, err)
	}
	return nil
}

// GetByEntity pages through an entity's trail, newest first.
func (r *AuditRepo) GetByEntity(ctx context.Context, entityType, entityID string, limit, offset int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > maxAuditPage {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, customer_id, actor_type, action, entity_type, entity_id, meta, created_at
		FROM audit_log WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4
	`, entityType, entityID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trail := []models.AuditLog{}
	for rows.Next() {
		var (
			e    models.AuditLog
			meta []byte
		)
		if err := rows.Scan(&e.ID, &e.CustomerID, &e.ActorType, &e.Action, &e.EntityType, &e.EntityID, &meta, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			e.Meta = json.RawMessage(meta)
		}
		trail = append(trail, e)
	}
	return trail, rows.Err()
}
