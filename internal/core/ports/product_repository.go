package ports

import (
	"context"

	"github.com/bazarblot/marketplace/internal/core/domain"
)

// ProductFilter carries the query parameters for listing products.
type ProductFilter struct {
	Category   string   // optional: substring match
	MinPrice   *float64 // optional: price >= MinPrice
	MaxPrice   *float64 // optional: price <= MaxPrice
	ActiveOnly bool
}

// ProductRepository defines persistence operations for products.
// List returns matches ordered by creation time, newest first.
type ProductRepository interface {
	List(ctx context.Context, f ProductFilter) ([]*domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	// Create assigns p.ID.
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id int64) error
	Categories(ctx context.Context) ([]string, error)
}

// IdempotencyStore remembers which product a caller created for a given
// Idempotency-Key.
type IdempotencyStore interface {
	Lookup(ctx context.Context, subject, key string) (productID int64, found bool, err error)
	Remember(ctx context.Context, subject, key string, productID int64) error
}
