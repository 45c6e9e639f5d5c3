package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ads-marketplace/tactics/internal/fakes"
	"github.com/ads-marketplace/tactics/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var reconcileBase = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func draftAt(id string, age time.Duration, mb models.MediaBuy) models.Tactic {
	return models.Tactic{
		ID:                id,
		CustomerID:        customerID,
		CampaignID:        "c1",
		MediaProductID:    "hulu_x",
		AxeIncludeSegment: "axe_" + id,
		Status:            models.TacticStatusDraft,
		MediaBuy:          mb,
		CreatedAt:         reconcileBase.Add(-age),
	}
}

func newTestReconciler(store DraftStore, audit AuditStore, batch int) *Reconciler {
	r := NewReconciler(store, audit, nil, 5*time.Minute, batch, zap.NewNop())
	r.now = func() time.Time { return reconcileBase }
	return r
}

func TestReconciler_RunOnce(t *testing.T) {
	store := fakes.NewTacticStore()
	audit := fakes.NewAuditLog()

	mbID := "mb_7"
	store.Put(draftAt("interrupted", 10*time.Minute, models.MediaBuy{}))
	store.Put(draftAt("awaiting", 10*time.Minute, models.MediaBuy{ID: &mbID, Status: models.MediaBuyStatusSubmitted}))
	store.Put(draftAt("fresh", time.Minute, models.MediaBuy{}))

	n, err := newTestReconciler(store, audit, 10).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	interrupted, _ := store.GetUnscoped(context.Background(), "interrupted")
	assert.Equal(t, models.TacticStatusFailed, interrupted.Status)
	assert.Equal(t, models.MediaBuyStatusFailed, interrupted.MediaBuy.Status)
	require.NotNil(t, interrupted.MediaBuy.ErrorMessage)
	assert.Equal(t, interruptedMessage, *interrupted.MediaBuy.ErrorMessage)

	awaiting, _ := store.GetUnscoped(context.Background(), "awaiting")
	assert.Equal(t, models.TacticStatusPendingApproval, awaiting.Status)
	assert.Equal(t, "mb_7", *awaiting.MediaBuy.ID)
	assert.Nil(t, awaiting.MediaBuy.ErrorMessage)

	fresh, _ := store.GetUnscoped(context.Background(), "fresh")
	assert.Equal(t, models.TacticStatusDraft, fresh.Status)

	assert.Equal(t, []string{"tactic_status_draft_to_failed"}, audit.Actions("interrupted"))
	trail, _ := audit.GetByEntity(context.Background(), "tactic", "awaiting", 10, 0)
	require.Len(t, trail, 1)
	assert.Equal(t, "worker", trail[0].ActorType)
}

func TestReconciler_RespectsBatchSize(t *testing.T) {
	store := fakes.NewTacticStore()
	for _, id := range []string{"a", "b", "c"} {
		store.Put(draftAt(id, time.Hour, models.MediaBuy{}))
	}
	r := newTestReconciler(store, fakes.NewAuditLog(), 2)

	n, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReconciler_SkipsDraftsItCannotWrite(t *testing.T) {
	store := fakes.NewTacticStore()
	store.Put(draftAt("stuck", time.Hour, models.MediaBuy{}))
	store.FailStatusUpdate = errors.New("read-only transaction")

	n, err := newTestReconciler(store, fakes.NewAuditLog(), 10).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	stuck, _ := store.GetUnscoped(context.Background(), "stuck")
	assert.Equal(t, models.TacticStatusDraft, stuck.Status)
}

// settlingStore finishes every listed draft before the reconciler gets to
// it, as a slow CreateTactic would.
type settlingStore struct{ *fakes.TacticStore }

func (s settlingStore) ListStaleDrafts(ctx context.Context, cutoff time.Time, limit int) ([]models.Tactic, error) {
	drafts, err := s.TacticStore.ListStaleDrafts(ctx, cutoff, limit)
	for _, d := range drafts {
		_ = s.TacticStore.UpdateStatus(ctx, d.ID, models.TacticStatusDraft, models.TacticStatusActive)
	}
	return drafts, err
}

func TestReconciler_LeavesConcurrentlySettledDraftAlone(t *testing.T) {
	store := fakes.NewTacticStore()
	audit := fakes.NewAuditLog()
	mbID := "mb_9"
	store.Put(draftAt("racing", time.Hour, models.MediaBuy{ID: &mbID, Status: models.MediaBuyStatusSubmitted}))

	n, err := newTestReconciler(settlingStore{store}, audit, 10).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	racing, _ := store.GetUnscoped(context.Background(), "racing")
	assert.Equal(t, models.TacticStatusActive, racing.Status)
	assert.Empty(t, audit.Actions("racing"))
}

type failingDraftStore struct{ DraftStore }

func (failingDraftStore) ListStaleDrafts(context.Context, time.Time, int) ([]models.Tactic, error) {
	return nil, errors.New("pool closed")
}

func TestReconciler_ListError(t *testing.T) {
	_, err := newTestReconciler(failingDraftStore{}, fakes.NewAuditLog(), 10).RunOnce(context.Background())
	assert.EqualError(t, err, "pool closed")
}

func TestReconciler_RunStopsOnCancel(t *testing.T) {
	store := fakes.NewTacticStore()
	store.Put(draftAt("late", time.Hour, models.MediaBuy{}))
	r := newTestReconciler(store, fakes.NewAuditLog(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, 5*time.Millisecond) }()

	require.Eventually(t, func() bool {
		late, _ := store.GetUnscoped(context.Background(), "late")
		return late.Status == models.TacticStatusFailed
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop")
	}
}
