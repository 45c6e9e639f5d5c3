package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BriefRepo reads campaign briefs that were already stripped of budget and
// pricing language by the sanitizer.
type BriefRepo struct {
	pool *pgxpool.Pool
}

func NewBriefRepo(pool *pgxpool.Pool) *BriefRepo {
	return &BriefRepo{pool: pool}
}

// GetSanitizedBrief returns nil when no sanitized brief is stored.
func (r *BriefRepo) GetSanitizedBrief(ctx context.Context, campaignID string, customerID int64) (*string, error) {
	var brief string
	err := r.pool.QueryRow(ctx, `
		SELECT sanitized_brief FROM campaign_briefs
		WHERE campaign_id = $1 AND customer_id = $2
	`, campaignID, customerID).Scan(&brief)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &brief, nil
}
