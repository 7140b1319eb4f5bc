package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginThrottle counts failed logins per email.
// Key format: login:fail:<normalized_email>
//
// Each failure pushes the key's expiry out by the lockout window, so an email
// stays locked until it has seen no failures for that long.
type LoginThrottle struct {
	client      *redis.Client
	maxFailures int64
	lockout     time.Duration
}

func NewLoginThrottle(client *redis.Client, maxFailures int, lockout time.Duration) *LoginThrottle {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if lockout <= 0 {
		lockout = 5 * time.Minute
	}
	return &LoginThrottle{client: client, maxFailures: int64(maxFailures), lockout: lockout}
}

func (t *LoginThrottle) Locked(ctx context.Context, email string) (bool, error) {
	n, err := t.client.Get(ctx, t.key(email)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("throttle check: %w", err)
	}
	return n >= t.maxFailures, nil
}

// RegisterFailure records one failed attempt and reports whether the email is
// now locked out.
func (t *LoginThrottle) RegisterFailure(ctx context.Context, email string) (bool, error) {
	key := t.key(email)
	pipe := t.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, t.lockout)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("throttle record: %w", err)
	}
	return incr.Val() >= t.maxFailures, nil
}

func (t *LoginThrottle) Reset(ctx context.Context, email string) error {
	if err := t.client.Del(ctx, t.key(email)).Err(); err != nil {
		return fmt.Errorf("throttle reset: %w", err)
	}
	return nil
}

func (t *LoginThrottle) key(email string) string {
	return "login:fail:" + email
}
