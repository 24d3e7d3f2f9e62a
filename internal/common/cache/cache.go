// internal/common/cache/cache.go
package cache

import (
	"context"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// Store is the location-cache backend. Entries are opaque bytes keyed by
// normalized name+kind; the resolver owns serialization. A Store is never a
// source of truth: losing it costs latency, not correctness.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Key builds the cache key for a place lookup from its normalized name and
// kind, so "Sierra Nevada"/"mountain_range" and "sierra nevada "/
// "mountain_range" coalesce.
func Key(name, kind string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	kind = strings.ToLower(strings.TrimSpace(kind))
	return "loc:" + name + ":" + kind
}

// MemoryStore is a process-local bounded cache with TTL expiry and LRU
// eviction beyond capacity. Safe for concurrent use.
type MemoryStore struct {
	lru *lru.LRU[string, []byte]
}

func NewMemoryStore(capacity int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		lru: lru.NewLRU[string, []byte](capacity, nil, ttl),
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, ok := m.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	return val, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.lru.Add(key, value)
	return nil
}

func (m *MemoryStore) Len() int {
	return m.lru.Len()
}

func (m *MemoryStore) Close() error {
	m.lru.Purge()
	return nil
}
