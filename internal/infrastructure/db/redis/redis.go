// Package redis holds the Redis-backed login throttle and create idempotency store.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config addresses the Redis instance shared by the throttle and idempotency store.
type Config struct {
	Addr string
	DB   int
	// Timeout bounds dial, read, write and the startup ping. Zero means 3s.
	Timeout time.Duration
}

func (c Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return 3 * time.Second
}

// Connect returns a client that has answered a ping.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	d := cfg.timeout()
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		DB:           cfg.DB,
		DialTimeout:  d,
		ReadTimeout:  d,
		WriteTimeout: d,
	})

	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis %s db %d: %w", cfg.Addr, cfg.DB, err)
	}
	return rdb, nil
}
