package services

import (
	"fmt"
	"strings"

	"github.com/ads-marketplace/tactics/internal/models"
)

type CreateTacticInput struct {
	CampaignID     string
	Name           string
	Description    *string
	MediaProductID string
	CPM            float64
	Budget         models.BudgetAllocation
	SignalID       *string
	BrandStoryID   *string
}

// TacticUpdates carries the caller-editable fields. An empty or blank
// SignalID removes the signal.
type TacticUpdates struct {
	Name        *string
	Description *string
	Budget      *models.BudgetAllocation
	CPM         *float64
	SignalID    *string
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", models.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func (in *CreateTacticInput) normalize(defaultCurrency string) error {
	in.CampaignID = strings.TrimSpace(in.CampaignID)
	in.MediaProductID = strings.TrimSpace(in.MediaProductID)
	in.Name = strings.TrimSpace(in.Name)

	if in.CampaignID == "" {
		return invalid("campaign_id is required")
	}
	if in.MediaProductID == "" {
		return invalid("media_product_id is required")
	}
	if in.Name == "" {
		in.Name = in.MediaProductID
	}
	if in.CPM <= 0 {
		return invalid("cpm must be positive")
	}
	in.SignalID = blankToNil(in.SignalID)
	in.BrandStoryID = blankToNil(in.BrandStoryID)
	return normalizeBudget(&in.Budget, defaultCurrency)
}

func (u *TacticUpdates) validate(defaultCurrency string) error {
	if u.Name != nil {
		n := strings.TrimSpace(*u.Name)
		if n == "" {
			return invalid("name cannot be empty")
		}
		u.Name = &n
	}
	if u.CPM != nil && *u.CPM <= 0 {
		return invalid("cpm must be positive")
	}
	if u.SignalID != nil {
		sig := strings.TrimSpace(*u.SignalID)
		u.SignalID = &sig
	}
	if u.Budget != nil {
		return normalizeBudget(u.Budget, defaultCurrency)
	}
	return nil
}

func (u *TacticUpdates) empty() bool {
	return u.Name == nil && u.Description == nil && u.Budget == nil && u.CPM == nil && u.SignalID == nil
}

func normalizeBudget(b *models.BudgetAllocation, defaultCurrency string) error {
	if b.Amount <= 0 {
		return invalid("budget amount must be positive")
	}
	b.Currency = strings.ToUpper(strings.TrimSpace(b.Currency))
	if b.Currency == "" {
		b.Currency = defaultCurrency
	}
	if len(b.Currency) != 3 {
		return invalid("currency %q is not an ISO 4217 code", b.Currency)
	}
	if b.Pacing == "" {
		b.Pacing = models.PacingEven
	}
	if !models.IsValidPacing(b.Pacing) {
		return invalid("pacing %q must be one of: even, asap, front_loaded", b.Pacing)
	}
	if b.DailyCap != nil && *b.DailyCap <= 0 {
		return invalid("daily cap must be positive")
	}
	if b.Percentage != nil && (*b.Percentage <= 0 || *b.Percentage > 100) {
		return invalid("budget percentage must be in (0, 100]")
	}
	return nil
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
