package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/biv3k224/ecommerce/internal/infrastructure/redis"
	"github.com/biv3k224/ecommerce/internal/reliability/circuitbreaker"
)

// RedisStore backs the catalog cache with Redis. All operations go
// through a circuit breaker so a degraded Redis turns into cache misses
// instead of slowing every catalog request down.
type RedisStore struct {
	client  *redis.Client
	breaker *circuitbreaker.CircuitBreaker
	logger  *slog.Logger
}

func NewRedisStore(client *redis.Client, logger *slog.Logger) *RedisStore {
	if logger == nil {
		logger = slog.Default()
	}

	breaker := circuitbreaker.New(5, 2, 30*time.Second)
	breaker.OnStateChange(func(from, to circuitbreaker.State) {
		logger.Warn("cache circuit state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})

	return &RedisStore{client: client, breaker: breaker, logger: logger}
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, bool) {
	if !r.breaker.Allow() {
		return "", false
	}

	value, err := r.client.Get(ctx, key)
	if err != nil {
		if redis.IsMiss(err) {
			r.breaker.RecordSuccess()
			return "", false
		}
		r.breaker.RecordFailure()
		r.logger.Warn("cache get failed", slog.String("key", key), slog.String("error", err.Error()))
		return "", false
	}

	r.breaker.RecordSuccess()
	return value, true
}

func (r *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if !r.breaker.Allow() {
		return
	}
	if err := r.client.Set(ctx, key, value, ttl); err != nil {
		r.breaker.RecordFailure()
		r.logger.Warn("cache set failed", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	r.breaker.RecordSuccess()
}

func (r *RedisStore) Invalidate(ctx context.Context, prefix string) {
	if !r.breaker.Allow() {
		return
	}
	if err := r.client.DeleteByPrefix(ctx, prefix); err != nil {
		r.breaker.RecordFailure()
		r.logger.Warn("cache invalidate failed", slog.String("prefix", prefix), slog.String("error", err.Error()))
		return
	}
	r.breaker.RecordSuccess()
}
