// Package cache provides the read-through catalog cache used by the
// inventory service for hot, rarely-changing queries (category listings
// and per-category statistics). Two backends exist behind one interface:
// an in-process TTL cache for single-node deployments and a Redis-backed
// store guarded by a circuit breaker for shared ones.
package cache

import (
	"context"
	"time"
)

// Store is the cache contract the inventory service depends on. Values
// are JSON-encoded strings; a miss is (_, false), never an error — cache
// trouble must degrade to a database read, not fail the request.
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Invalidate(ctx context.Context, prefix string)
}

// NopStore disables caching; every lookup misses.
type NopStore struct{}

func (NopStore) Get(context.Context, string) (string, bool)         { return "", false }
func (NopStore) Set(context.Context, string, string, time.Duration) {}
func (NopStore) Invalidate(context.Context, string)                 {}
