// Package fakes holds in-memory stand-ins for the database-backed
// adapters.
package fakes

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ads-marketplace/tactics/internal/models"
)

// TacticStore keeps tactics in memory. Fail* fields inject errors into the
// matching operation.
type TacticStore struct {
	mu      sync.Mutex
	tactics map[string]models.Tactic
	now     func() time.Time

	FailInsert        error
	FailOutcomeUpdate error
	FailStatusUpdate  error
}

func NewTacticStore() *TacticStore {
	return &TacticStore{tactics: map[string]models.Tactic{}, now: time.Now}
}

// SetClock overrides the time used for created_at/updated_at.
func (s *TacticStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *TacticStore) InsertDraft(_ context.Context, t *models.Tactic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailInsert != nil {
		return s.FailInsert
	}
	for _, existing := range s.tactics {
		if existing.AxeIncludeSegment == t.AxeIncludeSegment {
			return models.ErrPersistence
		}
	}
	t.Status = models.TacticStatusDraft
	t.CreatedAt = s.now()
	t.UpdatedAt = t.CreatedAt
	s.tactics[t.ID] = *t
	return nil
}

func (s *TacticStore) UpdateMediaBuyOutcome(_ context.Context, id string, o models.MediaBuyOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailOutcomeUpdate != nil {
		return s.FailOutcomeUpdate
	}
	t, ok := s.tactics[id]
	if !ok {
		return models.ErrNotFound
	}
	if t.SalesAgentID == nil {
		t.SalesAgentID = o.SalesAgentID
	}
	t.MediaBuy = o.MediaBuy
	t.UpdatedAt = s.now()
	s.tactics[id] = t
	return nil
}

func (s *TacticStore) UpdateStatus(_ context.Context, id string, from, to models.TacticStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailStatusUpdate != nil {
		return s.FailStatusUpdate
	}
	t, ok := s.tactics[id]
	if !ok {
		return models.ErrNotFound
	}
	if t.Status != from {
		return fmt.Errorf("%w: %s is %s, not %s", models.ErrInvalidTransition, id, t.Status, from)
	}
	t.Status = to
	t.UpdatedAt = s.now()
	s.tactics[id] = t
	return nil
}

func (s *TacticStore) Get(_ context.Context, id string, customerID int64) (*models.Tactic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tactics[id]
	if !ok || t.CustomerID != customerID {
		return nil, nil
	}
	return &t, nil
}

func (s *TacticStore) GetUnscoped(_ context.Context, id string) (*models.Tactic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tactics[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *TacticStore) List(_ context.Context, campaignID string, customerID int64) ([]models.Tactic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Tactic{}
	for _, t := range s.tactics {
		if t.CampaignID == campaignID && t.CustomerID == customerID && t.Status != models.TacticStatusInactive {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *TacticStore) Update(_ context.Context, id string, customerID int64, u models.TacticUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tactics[id]
	if !ok || t.CustomerID != customerID {
		return models.ErrNotFound
	}
	if u.Name != nil {
		t.Name = *u.Name
	}
	if u.Description != nil {
		d := *u.Description
		t.Description = &d
	}
	if u.Budget != nil {
		t.Budget = *u.Budget
	}
	if u.SignalID != nil {
		if *u.SignalID == "" {
			t.SignalID = nil
		} else {
			sig := *u.SignalID
			t.SignalID = &sig
		}
	}
	if u.Pricing != nil {
		t.Pricing = *u.Pricing
	}
	t.UpdatedAt = s.now()
	s.tactics[id] = t
	return nil
}

func (s *TacticStore) SoftDelete(_ context.Context, id string, customerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tactics[id]
	if !ok || t.CustomerID != customerID {
		return models.ErrNotFound
	}
	t.Status = models.TacticStatusInactive
	t.UpdatedAt = s.now()
	s.tactics[id] = t
	return nil
}

func (s *TacticStore) ListStaleDrafts(_ context.Context, cutoff time.Time, limit int) ([]models.Tactic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Tactic
	for _, t := range s.tactics {
		if t.Status == models.TacticStatusDraft && t.CreatedAt.Before(cutoff) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Put stores t as is, bypassing draft semantics.
func (s *TacticStore) Put(t models.Tactic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tactics[t.ID] = t
}

// Len counts stored tactics, inactive included.
func (s *TacticStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tactics)
}
