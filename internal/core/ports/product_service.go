package ports

import (
	"context"

	"github.com/bazarblot/marketplace/internal/core/domain"
)

// ProductInput is the DTO for create and update. Owner is never taken from it.
type ProductInput struct {
	Name          string
	Description   string
	Price         float64
	StockQuantity int
	Category      string
	ImageURL      string
	IsActive      bool
}

func (in ProductInput) Changes() domain.ProductChanges {
	return domain.ProductChanges{
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		StockQuantity: in.StockQuantity,
		Category:      in.Category,
		ImageURL:      in.ImageURL,
		IsActive:      in.IsActive,
	}
}

type ProductService interface {
	List(ctx context.Context, f ProductFilter) ([]*domain.ProductView, error)
	Get(ctx context.Context, id int64) (*domain.ProductView, error)
	// Create reports replayed=true when idempotencyKey matched an earlier create.
	Create(ctx context.Context, in ProductInput, caller domain.Principal, idempotencyKey string) (p *domain.ProductView, replayed bool, err error)
	Update(ctx context.Context, id int64, in ProductInput, caller domain.Principal) error
	Delete(ctx context.Context, id int64, caller domain.Principal) error
	Categories(ctx context.Context) ([]string, error)
}

// ProductEventPublisher hands committed product events to async delivery.
// Implementations must not block the request path.
type ProductEventPublisher interface {
	Enqueue(e domain.ProductEvent)
}

// ProductEventSink delivers one event to the message broker.
type ProductEventSink interface {
	Publish(ctx context.Context, e domain.ProductEvent) error
}
