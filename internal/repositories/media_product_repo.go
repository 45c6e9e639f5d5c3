package repositories

import (
	"context"
	"errors"

	"github.com/ads-marketplace/tactics/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MediaProductRepo is the database-backed product catalog.
type MediaProductRepo struct {
	pool *pgxpool.Pool
}

func NewMediaProductRepo(pool *pgxpool.Pool) *MediaProductRepo {
	return &MediaProductRepo{pool: pool}
}

// GetProduct returns nil when the product is not in the catalog.
func (r *MediaProductRepo) GetProduct(ctx context.Context, id string) (*models.MediaProduct, error) {
	var p models.MediaProduct
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, publisher_id, publisher_name, format
		FROM media_products WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.PublisherID, &p.PublisherName, &p.Format)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
