package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ads-marketplace/tactics/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TacticRepo struct {
	pool *pgxpool.Pool
}

func NewTacticRepo(pool *pgxpool.Pool) *TacticRepo {
	return &TacticRepo{pool: pool}
}

const tacticColumns = `
	id, customer_id, campaign_id, name, description,
	budget_amount, budget_currency, budget_daily_cap, budget_pacing, budget_percentage,
	cpm, signal_cost, total_cpm, pricing_currency,
	media_product_id, sales_agent_id, signal_id, brand_story_id, axe_include_segment, status,
	media_buy_id, media_buy_status, media_buy_request, media_buy_response,
	media_buy_submitted_at, media_buy_approved_at, webhook_url, webhook_secret, error_message,
	created_at, updated_at`

func scanTactic(row pgx.Row) (*models.Tactic, error) {
	var (
		t        models.Tactic
		mbStatus *string
	)
	err := row.Scan(
		&t.ID, &t.CustomerID, &t.CampaignID, &t.Name, &t.Description,
		&t.Budget.Amount, &t.Budget.Currency, &t.Budget.DailyCap, &t.Budget.Pacing, &t.Budget.Percentage,
		&t.Pricing.CPM, &t.Pricing.SignalCost, &t.Pricing.TotalCPM, &t.Pricing.Currency,
		&t.MediaProductID, &t.SalesAgentID, &t.SignalID, &t.BrandStoryID, &t.AxeIncludeSegment, &t.Status,
		&t.MediaBuy.ID, &mbStatus, &t.MediaBuy.Request, &t.MediaBuy.Response,
		&t.MediaBuy.SubmittedAt, &t.MediaBuy.ApprovedAt, &t.MediaBuy.WebhookURL, &t.MediaBuy.WebhookSecret, &t.MediaBuy.ErrorMessage,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if mbStatus != nil {
		t.MediaBuy.Status = models.MediaBuyStatus(*mbStatus)
	}
	return &t, nil
}

// InsertDraft persists a new tactic in draft status.
func (r *TacticRepo) InsertDraft(ctx context.Context, t *models.Tactic) error {
	t.Status = models.TacticStatusDraft
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tactics (id, customer_id, campaign_id, name, description,
		       budget_amount, budget_currency, budget_daily_cap, budget_pacing, budget_percentage,
		       cpm, signal_cost, total_cpm, pricing_currency,
		       media_product_id, signal_id, brand_story_id, axe_include_segment, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING created_at, updated_at
	`, t.ID, t.CustomerID, t.CampaignID, t.Name, t.Description,
		t.Budget.Amount, t.Budget.Currency, t.Budget.DailyCap, t.Budget.Pacing, t.Budget.Percentage,
		t.Pricing.CPM, t.Pricing.SignalCost, t.Pricing.TotalCPM, t.Pricing.Currency,
		t.MediaProductID, t.SignalID, t.BrandStoryID, t.AxeIncludeSegment, string(t.Status),
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: insert tactic: %v", models.ErrPersistence, err)
	}
	return nil
}

// UpdateMediaBuyOutcome records a media-buy attempt. Not tenant scoped:
// ownership was established when the draft was written. An already
// assigned sales agent is never overwritten.
func (r *TacticRepo) UpdateMediaBuyOutcome(ctx context.Context, id string, o models.MediaBuyOutcome) error {
	var mbStatus *string
	if o.MediaBuy.Status != "" {
		s := string(o.MediaBuy.Status)
		mbStatus = &s
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE tactics SET
		       sales_agent_id = COALESCE(sales_agent_id, $2),
		       media_buy_id = $3, media_buy_status = $4,
		       media_buy_request = $5, media_buy_response = $6,
		       media_buy_submitted_at = $7, media_buy_approved_at = $8,
		       webhook_url = $9, webhook_secret = $10, error_message = $11,
		       updated_at = now()
		WHERE id = $1
	`, id, o.SalesAgentID, o.MediaBuy.ID, mbStatus,
		nullJSON(o.MediaBuy.Request), nullJSON(o.MediaBuy.Response),
		o.MediaBuy.SubmittedAt, o.MediaBuy.ApprovedAt,
		o.MediaBuy.WebhookURL, o.MediaBuy.WebhookSecret, o.MediaBuy.ErrorMessage)
	if err != nil {
		return fmt.Errorf("%w: update media buy outcome: %v", models.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// UpdateStatus moves the tactic from one lifecycle status to another.
// Same trust boundary as UpdateMediaBuyOutcome. When the row is no longer
// in from, nothing is written and ErrInvalidTransition is returned.
func (r *TacticRepo) UpdateStatus(ctx context.Context, id string, from, to models.TacticStatus) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tactics SET status = $2, updated_at = now() WHERE id = $1 AND status = $3
	`, id, string(to), string(from))
	if err != nil {
		return fmt.Errorf("%w: update tactic status: %v", models.ErrPersistence, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var current string
	err = r.pool.QueryRow(ctx, `SELECT status FROM tactics WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: read tactic status: %v", models.ErrPersistence, err)
	}
	return fmt.Errorf("%w: %s is %s, not %s", models.ErrInvalidTransition, id, current, from)
}

// Get returns nil, nil when the tactic does not exist for the customer.
func (r *TacticRepo) Get(ctx context.Context, id string, customerID int64) (*models.Tactic, error) {
	t, err := scanTactic(r.pool.QueryRow(ctx,
		`SELECT `+tacticColumns+` FROM tactics WHERE id = $1 AND customer_id = $2`, id, customerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

// GetUnscoped reads a tactic regardless of owner. Used by internal callers
// that hold no customer token.
func (r *TacticRepo) GetUnscoped(ctx context.Context, id string) (*models.Tactic, error) {
	t, err := scanTactic(r.pool.QueryRow(ctx,
		`SELECT `+tacticColumns+` FROM tactics WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

// List returns the customer's tactics for a campaign, newest first,
// excluding inactive ones.
func (r *TacticRepo) List(ctx context.Context, campaignID string, customerID int64) ([]models.Tactic, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+tacticColumns+` FROM tactics
		WHERE campaign_id = $1 AND customer_id = $2 AND status <> $3
		ORDER BY created_at DESC
	`, campaignID, customerID, string(models.TacticStatusInactive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tactics := []models.Tactic{}
	for rows.Next() {
		t, err := scanTactic(rows)
		if err != nil {
			return nil, err
		}
		tactics = append(tactics, *t)
	}
	return tactics, rows.Err()
}

// Update applies the non-nil fields of u.
func (r *TacticRepo) Update(ctx context.Context, id string, customerID int64, u models.TacticUpdate) error {
	set := []string{}
	args := []any{id, customerID}
	argIdx := 3

	add := func(col string, v any) {
		set = append(set, fmt.Sprintf("%s = $%d", col, argIdx))
		args = append(args, v)
		argIdx++
	}

	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Description != nil {
		add("description", *u.Description)
	}
	if u.Budget != nil {
		add("budget_amount", u.Budget.Amount)
		add("budget_currency", u.Budget.Currency)
		add("budget_daily_cap", u.Budget.DailyCap)
		add("budget_pacing", u.Budget.Pacing)
		add("budget_percentage", u.Budget.Percentage)
	}
	if u.SignalID != nil {
		if *u.SignalID == "" {
			add("signal_id", nil)
		} else {
			add("signal_id", *u.SignalID)
		}
	}
	if u.Pricing != nil {
		add("cpm", u.Pricing.CPM)
		add("signal_cost", u.Pricing.SignalCost)
		add("total_cpm", u.Pricing.TotalCPM)
		add("pricing_currency", u.Pricing.Currency)
	}
	if len(set) == 0 {
		return nil
	}

	query := `UPDATE tactics SET ` + strings.Join(set, ", ") + `, updated_at = now()
		WHERE id = $1 AND customer_id = $2`
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: update tactic: %v", models.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SoftDelete marks the tactic inactive. Rows are never removed.
func (r *TacticRepo) SoftDelete(ctx context.Context, id string, customerID int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tactics SET status = $3, updated_at = now()
		WHERE id = $1 AND customer_id = $2
	`, id, customerID, string(models.TacticStatusInactive))
	if err != nil {
		return fmt.Errorf("%w: soft delete tactic: %v", models.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListStaleDrafts returns drafts created before cutoff, oldest first.
func (r *TacticRepo) ListStaleDrafts(ctx context.Context, cutoff time.Time, limit int) ([]models.Tactic, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+tacticColumns+` FROM tactics
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at ASC LIMIT $3
	`, string(models.TacticStatusDraft), cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tactics []models.Tactic
	for rows.Next() {
		t, err := scanTactic(rows)
		if err != nil {
			return nil, err
		}
		tactics = append(tactics, *t)
	}
	return tactics, rows.Err()
}

func nullJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
