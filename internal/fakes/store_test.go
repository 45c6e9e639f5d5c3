package fakes

import (
	"context"
	"testing"
	"time"

	"github.com/ads-marketplace/tactics/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTacticStore_UpdateStatusRequiresExpectedStatus(t *testing.T) {
	ctx := context.Background()
	s := NewTacticStore()
	require.NoError(t, s.InsertDraft(ctx, &models.Tactic{ID: "t1", CustomerID: 7, AxeIncludeSegment: "axe_1"}))

	require.NoError(t, s.UpdateStatus(ctx, "t1", models.TacticStatusDraft, models.TacticStatusActive))

	err := s.UpdateStatus(ctx, "t1", models.TacticStatusDraft, models.TacticStatusFailed)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	require.NoError(t, s.SoftDelete(ctx, "t1", 7))
	err = s.UpdateStatus(ctx, "t1", models.TacticStatusActive, models.TacticStatusPaused)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	got, _ := s.GetUnscoped(ctx, "t1")
	assert.Equal(t, models.TacticStatusInactive, got.Status)

	assert.ErrorIs(t, s.UpdateStatus(ctx, "nope", models.TacticStatusDraft, models.TacticStatusActive), models.ErrNotFound)
}

func TestTacticStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewTacticStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "mid", "new"} {
		at := base.Add(time.Duration(i) * time.Minute)
		s.SetClock(func() time.Time { return at })
		require.NoError(t, s.InsertDraft(ctx, &models.Tactic{ID: id, CampaignID: "c1", CustomerID: 7, AxeIncludeSegment: "axe_" + id}))
	}

	list, err := s.List(ctx, "c1", 7)
	require.NoError(t, err)
	ids := make([]string, 0, len(list))
	for _, tc := range list {
		ids = append(ids, tc.ID)
	}
	assert.Equal(t, []string{"new", "mid", "old"}, ids)

	stale, err := s.ListStaleDrafts(ctx, base.Add(90*time.Second), 10)
	require.NoError(t, err)
	require.Len(t, stale, 2)
	assert.Equal(t, "old", stale[0].ID)
}
