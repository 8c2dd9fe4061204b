package ports

import (
	"context"

	"github.com/brightops/admin-gateway/internal/core/domain"
)

// ProductUpdate carries the editable product fields.
type ProductUpdate struct {
	Name        string
	Description string
	Category    string
	Price       float64
	SalePrice   float64
	Stock       int
	Status      string
	Tags        []string
}

// ProductService serves the catalog. The catalog is seeded locally and
// edits live in memory only; nothing is pushed upstream.
type ProductService interface {
	List(ctx context.Context) ([]domain.ProductRecord, error)
	Get(ctx context.Context, id string) (*domain.ProductRecord, error)
	Update(ctx context.Context, id string, upd ProductUpdate) (*domain.ProductRecord, error)
}
