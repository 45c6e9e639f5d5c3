package repositories

import (
	"context"
	"errors"

	"github.com/ads-marketplace/tactics/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SalesAgentRepo struct {
	pool *pgxpool.Pool
}

func NewSalesAgentRepo(pool *pgxpool.Pool) *SalesAgentRepo {
	return &SalesAgentRepo{pool: pool}
}

// FindForPublisher returns the customer's active sales agent for a
// publisher, or nil when none is registered.
func (r *SalesAgentRepo) FindForPublisher(ctx context.Context, publisherID string, customerID int64) (*models.SalesAgent, error) {
	if publisherID == "" {
		return nil, nil
	}

	var a models.SalesAgent
	err := r.pool.QueryRow(ctx, `
		SELECT id, customer_id, publisher_id, name, endpoint_url, auth_token, status, created_at
		FROM sales_agents
		WHERE publisher_id = $1 AND customer_id = $2 AND status = $3
		ORDER BY created_at DESC
		LIMIT 1
	`, publisherID, customerID, models.SalesAgentStatusActive).Scan(
		&a.ID, &a.CustomerID, &a.PublisherID, &a.Name, &a.EndpointURL, &a.AuthToken, &a.Status, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
