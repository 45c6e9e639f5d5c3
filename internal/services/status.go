package services

import (
	"context"
	"fmt"

	"github.com/ads-marketplace/tactics/internal/events"
	"github.com/ads-marketplace/tactics/internal/models"
	"go.uber.org/zap"
)

// recordStatusChange writes the audit entry and publishes the status event
// for a transition that has already been persisted. Both are best effort.
func recordStatusChange(ctx context.Context, audit AuditStore, publisher events.Publisher, log *zap.Logger, t *models.Tactic, old models.TacticStatus, actorType string) {
	customerID := t.CustomerID
	if err := audit.Log(ctx, models.AuditLog{
		CustomerID: &customerID,
		ActorType:  actorType,
		Action:     fmt.Sprintf("tactic_status_%s_to_%s", old, t.Status),
		EntityType: "tactic",
		EntityID:   t.ID,
		Meta:       map[string]any{"old_status": string(old), "new_status": string(t.Status)},
	}); err != nil {
		log.Warn("audit log failed", zap.String("tactic_id", t.ID), zap.Error(err))
	}

	payload := map[string]any{
		"tactic_id":   t.ID,
		"campaign_id": t.CampaignID,
		"old_status":  string(old),
		"new_status":  string(t.Status),
	}
	if t.MediaBuy.ErrorMessage != nil {
		payload["error_message"] = *t.MediaBuy.ErrorMessage
	}
	_ = publisher.Publish(ctx, events.StreamTactics, events.Event{
		Type:       events.EventTacticStatusChanged,
		CustomerID: t.CustomerID,
		Payload:    payload,
	})
}
