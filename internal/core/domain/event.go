package domain

import "time"

// ProductEventType names a lifecycle change of a listing.
type ProductEventType string

const (
	ProductCreated ProductEventType = "product.created"
	ProductUpdated ProductEventType = "product.updated"
	ProductDeleted ProductEventType = "product.deleted"
)

// ProductEvent is emitted after a product mutation has been committed.
type ProductEvent struct {
	Type       ProductEventType
	ProductID  int64
	ActorID    string
	Product    *Product // nil for deletions
	OccurredAt time.Time
}
