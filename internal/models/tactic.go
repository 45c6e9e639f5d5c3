package models

import (
	"encoding/json"
	"time"
)

// TacticStatus is the lifecycle status of a tactic.
type TacticStatus string

const (
	TacticStatusDraft           TacticStatus = "draft"
	TacticStatusActive          TacticStatus = "active"
	TacticStatusPaused          TacticStatus = "paused"
	TacticStatusCompleted       TacticStatus = "completed"
	TacticStatusFailed          TacticStatus = "failed"
	TacticStatusPendingApproval TacticStatus = "pending_approval"
	TacticStatusInactive        TacticStatus = "inactive"
)

// MediaBuyStatus is the status reported by a sales agent for a media buy.
// Agents may report values outside the known set; they are kept verbatim.
type MediaBuyStatus string

const (
	MediaBuyStatusActive          MediaBuyStatus = "active"
	MediaBuyStatusFailed          MediaBuyStatus = "failed"
	MediaBuyStatusPendingApproval MediaBuyStatus = "pending_approval"
	MediaBuyStatusSubmitted       MediaBuyStatus = "submitted"
)

// Pacing strategies
const (
	PacingEven        = "even"
	PacingASAP        = "asap"
	PacingFrontLoaded = "front_loaded"
)

// Valid lifecycle transitions: from -> []to
var ValidTacticTransitions = map[TacticStatus][]TacticStatus{
	TacticStatusDraft:           {TacticStatusActive, TacticStatusPendingApproval, TacticStatusFailed, TacticStatusInactive},
	TacticStatusPendingApproval: {TacticStatusActive, TacticStatusFailed, TacticStatusPaused, TacticStatusInactive},
	TacticStatusActive:          {TacticStatusPaused, TacticStatusCompleted, TacticStatusFailed, TacticStatusInactive},
	TacticStatusPaused:          {TacticStatusActive, TacticStatusCompleted, TacticStatusInactive},
	TacticStatusFailed:          {TacticStatusInactive},
	TacticStatusCompleted:       {TacticStatusInactive},
	TacticStatusInactive:        {},
}

func IsValidTacticStatus(s TacticStatus) bool {
	_, ok := ValidTacticTransitions[s]
	return ok
}

func IsValidTacticTransition(from, to TacticStatus) bool {
	allowed, ok := ValidTacticTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// StatusForMediaBuy maps a media-buy outcome to the lifecycle status a
// freshly provisioned tactic settles in. Anything the agent did not
// explicitly activate or fail goes to manual review.
func StatusForMediaBuy(s MediaBuyStatus) TacticStatus {
	switch s {
	case MediaBuyStatusActive:
		return TacticStatusActive
	case MediaBuyStatusFailed:
		return TacticStatusFailed
	default:
		return TacticStatusPendingApproval
	}
}

func IsValidPacing(p string) bool {
	return p == PacingEven || p == PacingASAP || p == PacingFrontLoaded
}

type BudgetAllocation struct {
	Amount     float64  `json:"amount"`
	Currency   string   `json:"currency"`
	DailyCap   *float64 `json:"daily_cap,omitempty"`
	Pacing     string   `json:"pacing"`
	Percentage *float64 `json:"percentage,omitempty"`
}

// EffectivePricing holds the CPM actually paid. TotalCPM is always
// CPM plus SignalCost (zero when absent).
type EffectivePricing struct {
	CPM        float64  `json:"cpm"`
	SignalCost *float64 `json:"signal_cost,omitempty"`
	TotalCPM   float64  `json:"total_cpm"`
	Currency   string   `json:"currency"`
}

type MediaBuy struct {
	ID            *string         `json:"id,omitempty"`
	Status        MediaBuyStatus  `json:"status,omitempty"`
	Request       json.RawMessage `json:"request,omitempty"`
	Response      json.RawMessage `json:"response,omitempty"`
	SubmittedAt   *time.Time      `json:"submitted_at,omitempty"`
	ApprovedAt    *time.Time      `json:"approved_at,omitempty"`
	WebhookURL    *string         `json:"webhook_url,omitempty"`
	WebhookSecret *string         `json:"-"`
	ErrorMessage  *string         `json:"error_message,omitempty"`
}

type Tactic struct {
	ID                string           `json:"id"`
	CampaignID        string           `json:"campaign_id"`
	CustomerID        int64            `json:"customer_id"`
	Name              string           `json:"name"`
	Description       *string          `json:"description,omitempty"`
	Budget            BudgetAllocation `json:"budget_allocation"`
	Pricing           EffectivePricing `json:"effective_pricing"`
	MediaProductID    string           `json:"media_product_id"`
	SalesAgentID      *string          `json:"sales_agent_id,omitempty"`
	SignalID          *string          `json:"signal_id,omitempty"`
	BrandStoryID      *string          `json:"brand_story_id,omitempty"`
	AxeIncludeSegment string           `json:"axe_include_segment"`
	Status            TacticStatus     `json:"status"`
	MediaBuy          MediaBuy         `json:"media_buy"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// MediaBuyOutcome is the set of fields written after a media-buy attempt.
// SalesAgentID is only set when an agent was resolved.
type MediaBuyOutcome struct {
	SalesAgentID *string
	MediaBuy     MediaBuy
}

// TacticUpdate carries the mutable fields of a tactic. Nil means unchanged.
type TacticUpdate struct {
	Name        *string
	Description *string
	Budget      *BudgetAllocation
	Pricing     *EffectivePricing
	SignalID    *string
}

type TargetingSummary struct {
	SignalID          *string `json:"signal_id,omitempty"`
	BrandStoryID      *string `json:"brand_story_id,omitempty"`
	AxeIncludeSegment string  `json:"axe_include_segment"`
	Description       string  `json:"description"`
}

// TacticView is a tactic hydrated with its media product and targeting.
type TacticView struct {
	Tactic
	MediaProduct MediaProduct     `json:"media_product"`
	Targeting    TargetingSummary `json:"targeting"`
}
