package cache

import (
	"context"
	"time"

	"github.com/biv3k224/ecommerce/pkg/cache"
)

// MemoryStore backs the catalog cache with the in-process TTL cache.
type MemoryStore struct {
	inner *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{inner: cache.New()}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool) {
	return m.inner.Get(key)
}

func (m *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) {
	m.inner.Set(key, value, ttl)
}

func (m *MemoryStore) Invalidate(_ context.Context, prefix string) {
	m.inner.Invalidate(prefix)
}
