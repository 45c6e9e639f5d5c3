package models

import "time"

type AuditLog struct {
	ID         int64     `json:"id"`
	CustomerID *int64    `json:"customer_id,omitempty"`
	ActorType  string    `json:"actor_type"` // user/system/worker
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Meta       any       `json:"meta,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
