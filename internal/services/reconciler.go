package services

import (
	"context"
	"errors"
	"time"

	"github.com/ads-marketplace/tactics/internal/events"
	"github.com/ads-marketplace/tactics/internal/models"
	"go.uber.org/zap"
)

const interruptedMessage = "provisioning interrupted before media buy completed"

// Reconciler repairs tactics left in draft by a provisioning run that
// stopped between its writes. The media-buy outcome and the status are
// written separately, so a recorded outcome with a draft status is
// finished here using the same mapping CreateTactic applies.
type Reconciler struct {
	store      DraftStore
	audit      AuditStore
	publisher  events.Publisher
	staleAfter time.Duration
	batchSize  int
	log        *zap.Logger

	now func() time.Time
}

func NewReconciler(store DraftStore, audit AuditStore, publisher events.Publisher, staleAfter time.Duration, batchSize int, log *zap.Logger) *Reconciler {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Reconciler{
		store:      store,
		audit:      audit,
		publisher:  publisher,
		staleAfter: staleAfter,
		batchSize:  batchSize,
		log:        log,
		now:        time.Now,
	}
}

// RunOnce repairs one batch of stale drafts and returns how many were
// settled.
func (r *Reconciler) RunOnce(ctx context.Context) (int, error) {
	cutoff := r.now().Add(-r.staleAfter)
	drafts, err := r.store.ListStaleDrafts(ctx, cutoff, r.batchSize)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for i := range drafts {
		t := &drafts[i]
		err := r.repair(ctx, t)
		if errors.Is(err, models.ErrInvalidTransition) {
			r.log.Info("draft settled concurrently, skipping", zap.String("tactic_id", t.ID))
			continue
		}
		if err != nil {
			r.log.Error("failed to repair draft tactic", zap.String("tactic_id", t.ID), zap.Error(err))
			continue
		}
		repaired++
	}
	return repaired, nil
}

func (r *Reconciler) repair(ctx context.Context, t *models.Tactic) error {
	if t.MediaBuy.Status == "" {
		msg := interruptedMessage
		t.MediaBuy.Status = models.MediaBuyStatusFailed
		t.MediaBuy.ErrorMessage = &msg
		if err := r.store.UpdateMediaBuyOutcome(ctx, t.ID, models.MediaBuyOutcome{MediaBuy: t.MediaBuy}); err != nil {
			return err
		}
	}

	status := models.StatusForMediaBuy(t.MediaBuy.Status)
	if err := r.store.UpdateStatus(ctx, t.ID, models.TacticStatusDraft, status); err != nil {
		return err
	}

	r.log.Info("repaired draft tactic",
		zap.String("tactic_id", t.ID),
		zap.String("media_buy_status", string(t.MediaBuy.Status)),
		zap.String("status", string(status)),
	)

	old := t.Status
	t.Status = status
	recordStatusChange(ctx, r.audit, r.publisher, r.log, t, old, "worker")
	return nil
}

// Run repairs drafts immediately and then every interval until ctx is
// cancelled.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.pass(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.pass(ctx)
		}
	}
}

func (r *Reconciler) pass(ctx context.Context) {
	n, err := r.RunOnce(ctx)
	if err != nil {
		r.log.Error("reconcile pass failed", zap.Error(err))
		return
	}
	if n > 0 {
		r.log.Info("reconcile pass finished", zap.Int("repaired", n))
	}
}
