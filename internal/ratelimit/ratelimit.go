// Package ratelimit throttles message operations per user with a Redis fixed window.
package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter counts operations per key in Redis. A nil Limiter or one without a client
// allows everything.
type Limiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	prefix string
}

func New(client *redis.Client, limit int64, window time.Duration) *Limiter {
	return &Limiter{client: client, limit: limit, window: window, prefix: "rl:messages:"}
}

// WithPrefix returns a limiter with the same budget counted under its own keys.
func (l *Limiter) WithPrefix(prefix string) *Limiter {
	if l == nil {
		return nil
	}
	copied := *l
	copied.prefix = prefix
	return &copied
}

// Allow records one operation for userID and reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, userID int) (bool, error) {
	if l == nil || l.client == nil {
		return true, nil
	}
	key := l.prefix + strconv.Itoa(userID)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= l.limit, nil
}
