package events

import (
	"context"
	"time"
)

const StreamTactics = "events:tactic"

// Event types
const (
	EventTacticCreated       = "tactic_created"
	EventTacticStatusChanged = "tactic_status_changed"
	EventTacticDeleted       = "tactic_deleted"
)

// Event is published on StreamTactics. CustomerID routes the event to the
// owner's websocket connections; zero means internal-only.
type Event struct {
	Type       string         `json:"type"`
	CustomerID int64          `json:"customer_id,omitempty"`
	Payload    map[string]any `json:"payload"`
	At         time.Time      `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, Event) error { return nil }
