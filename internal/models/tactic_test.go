package models

import "testing"

func TestIsValidTacticTransition(t *testing.T) {
	tests := []struct {
		from     TacticStatus
		to       TacticStatus
		expected bool
	}{
		// Provisioning outcomes
		{TacticStatusDraft, TacticStatusActive, true},
		{TacticStatusDraft, TacticStatusPendingApproval, true},
		{TacticStatusDraft, TacticStatusFailed, true},

		// Manual review
		{TacticStatusPendingApproval, TacticStatusActive, true},
		{TacticStatusPendingApproval, TacticStatusFailed, true},

		// Running
		{TacticStatusActive, TacticStatusPaused, true},
		{TacticStatusPaused, TacticStatusActive, true},
		{TacticStatusActive, TacticStatusCompleted, true},

		// Soft delete from anywhere but inactive
		{TacticStatusDraft, TacticStatusInactive, true},
		{TacticStatusActive, TacticStatusInactive, true},
		{TacticStatusFailed, TacticStatusInactive, true},
		{TacticStatusCompleted, TacticStatusInactive, true},

		// Invalid transitions
		{TacticStatusActive, TacticStatusDraft, false},
		{TacticStatusFailed, TacticStatusActive, false},
		{TacticStatusFailed, TacticStatusDraft, false},
		{TacticStatusInactive, TacticStatusActive, false},
		{TacticStatusCompleted, TacticStatusActive, false},
		{"nonexistent", TacticStatusActive, false},
		{TacticStatusDraft, "nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			result := IsValidTacticTransition(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("IsValidTacticTransition(%q, %q) = %v, want %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestNothingTransitionsBackToDraft(t *testing.T) {
	for from, allowed := range ValidTacticTransitions {
		for _, to := range allowed {
			if to == TacticStatusDraft {
				t.Errorf("status %q must not transition back to draft", from)
			}
		}
	}
}

func TestInactiveIsTerminal(t *testing.T) {
	if n := len(ValidTacticTransitions[TacticStatusInactive]); n != 0 {
		t.Errorf("inactive should have no transitions, got %d", n)
	}
}

func TestStatusForMediaBuy(t *testing.T) {
	tests := []struct {
		in   MediaBuyStatus
		want TacticStatus
	}{
		{MediaBuyStatusActive, TacticStatusActive},
		{MediaBuyStatusFailed, TacticStatusFailed},
		{MediaBuyStatusPendingApproval, TacticStatusPendingApproval},
		{MediaBuyStatusSubmitted, TacticStatusPendingApproval},
		{"input-required", TacticStatusPendingApproval},
		{"", TacticStatusPendingApproval},
	}

	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			if got := StatusForMediaBuy(tt.in); got != tt.want {
				t.Errorf("StatusForMediaBuy(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPlaceholderProduct(t *testing.T) {
	p := PlaceholderProduct("mystery_1")
	if p.ID != "mystery_1" || p.PublisherID != "" || p.PublisherName != UnknownPublisherName {
		t.Errorf("unexpected placeholder: %+v", p)
	}
}
