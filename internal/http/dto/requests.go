package dto

type BudgetRequest struct {
	Amount     float64  `json:"amount"`
	Currency   string   `json:"currency,omitempty"`
	DailyCap   *float64 `json:"daily_cap,omitempty"`
	Pacing     string   `json:"pacing,omitempty"` // even / asap / front_loaded
	Percentage *float64 `json:"percentage,omitempty"`
}

type CreateTacticRequest struct {
	CampaignID     string        `json:"campaign_id"`
	Name           string        `json:"name"`
	Description    *string       `json:"description,omitempty"`
	MediaProductID string        `json:"media_product_id"`
	CPM            float64       `json:"cpm"`
	Budget         BudgetRequest `json:"budget"`
	SignalID       *string       `json:"signal_id,omitempty"`
	BrandStoryID   *string       `json:"brand_story_id,omitempty"`
}

// UpdateTacticRequest is a partial update; "signal_id": "" removes the signal.
type UpdateTacticRequest struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Budget      *BudgetRequest `json:"budget,omitempty"`
	CPM         *float64       `json:"cpm,omitempty"`
	SignalID    *string        `json:"signal_id,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}
