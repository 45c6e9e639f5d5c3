package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	at := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	data, err := json.Marshal(Event{
		Type:       EventTacticStatusChanged,
		CustomerID: 7,
		Payload:    map[string]any{"tactic_id": "t1", "new_status": "active"},
		At:         at,
	})
	require.NoError(t, err)

	event, err := decodeEvent(string(data))
	require.NoError(t, err)
	assert.Equal(t, EventTacticStatusChanged, event.Type)
	assert.Equal(t, int64(7), event.CustomerID)
	assert.Equal(t, "active", event.Payload["new_status"])
	assert.True(t, at.Equal(event.At))
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	for name, payload := range map[string]string{
		"not json": "tactic went active",
		"no type":  `{"customer_id":7,"payload":{}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := decodeEvent(payload)
			assert.Error(t, err)
		})
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), StreamTactics, Event{Type: EventTacticDeleted}))
}
