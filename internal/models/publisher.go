package models

import "time"

// Sales agent statuses
const (
	SalesAgentStatusActive   = "active"
	SalesAgentStatusDisabled = "disabled"
)

type SalesAgent struct {
	ID          string    `json:"id"`
	CustomerID  int64     `json:"customer_id"`
	PublisherID string    `json:"publisher_id"`
	Name        string    `json:"name"`
	EndpointURL string    `json:"endpoint_url"`
	AuthToken   *string   `json:"-"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type MediaProduct struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	PublisherID   string `json:"publisher_id"`
	PublisherName string `json:"publisher_name"`
	Format        string `json:"format,omitempty"`
}

const UnknownPublisherName = "Unknown publisher"

// PlaceholderProduct stands in for a product id the catalog does not know.
func PlaceholderProduct(id string) MediaProduct {
	return MediaProduct{
		ID:            id,
		Name:          id,
		PublisherName: UnknownPublisherName,
	}
}
