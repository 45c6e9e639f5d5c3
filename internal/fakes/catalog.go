package fakes

import (
	"context"

	"github.com/ads-marketplace/tactics/internal/models"
)

// Catalog is a fixed product catalog. Build one with NewCatalog.
type Catalog struct {
	products map[string]models.MediaProduct
	err      error
}

func (c *Catalog) GetProduct(_ context.Context, id string) (*models.MediaProduct, error) {
	if c.err != nil {
		return nil, c.err
	}
	p, ok := c.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

type CatalogBuilder struct {
	products map[string]models.MediaProduct
	err      error
}

func NewCatalog() *CatalogBuilder {
	return &CatalogBuilder{products: map[string]models.MediaProduct{}}
}

// WithProduct registers a product sold by the given publisher.
func (b *CatalogBuilder) WithProduct(id, name, publisherID, publisherName string) *CatalogBuilder {
	b.products[id] = models.MediaProduct{
		ID:            id,
		Name:          name,
		PublisherID:   publisherID,
		PublisherName: publisherName,
	}
	return b
}

// WithFormat sets the format of an already registered product.
func (b *CatalogBuilder) WithFormat(id, format string) *CatalogBuilder {
	if p, ok := b.products[id]; ok {
		p.Format = format
		b.products[id] = p
	}
	return b
}

// FailingWith makes every lookup return err.
func (b *CatalogBuilder) FailingWith(err error) *CatalogBuilder {
	b.err = err
	return b
}

func (b *CatalogBuilder) Build() *Catalog {
	products := make(map[string]models.MediaProduct, len(b.products))
	for k, v := range b.products {
		products[k] = v
	}
	return &Catalog{products: products, err: b.err}
}
