package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyTTL = 24 * time.Hour

// IdempotencyStore maps a caller's Idempotency-Key to the product it created.
// Key format: idem:product:<subject>:<key>
type IdempotencyStore struct {
	client *redis.Client
}

func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

func (s *IdempotencyStore) Lookup(ctx context.Context, subject, key string) (int64, bool, error) {
	id, err := s.client.Get(ctx, s.key(subject, key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("idempotency lookup: %w", err)
	}
	return id, true, nil
}

// Remember keeps the first product stored under the key; later calls are no-ops.
func (s *IdempotencyStore) Remember(ctx context.Context, subject, key string, productID int64) error {
	if err := s.client.SetNX(ctx, s.key(subject, key), productID, idempotencyTTL).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(subject, key string) string {
	return fmt.Sprintf("idem:product:%s:%s", subject, key)
}
