package ports

import (
	"context"

	"github.com/bazarblot/marketplace/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
// Lookups by email are case-insensitive.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByIDs returns the users that exist among ids; missing ids are skipped.
	FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
}

// LoginThrottle counts failed logins per email and locks the email out once
// the configured limit is reached.
type LoginThrottle interface {
	Locked(ctx context.Context, email string) (bool, error)
	RegisterFailure(ctx context.Context, email string) (locked bool, err error)
	Reset(ctx context.Context, email string) error
}
