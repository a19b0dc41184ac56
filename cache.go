package xjoin

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Cache is the interface for caching generated descriptor snapshots.
// Users can implement this interface with their preferred caching solution
// (e.g., Redis, Memcached, on-disk). MemoryCache is the in-process default.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with an optional TTL.
	// If ttl is 0, the value should not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes all values with the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear removes all values from the cache.
	Clear(ctx context.Context) error
}

// CacheKey identifies a descriptor snapshot.
type CacheKey struct {
	Namespace string
	Schema    string
	Digest    string
}

// String returns the string representation of the cache key.
func (k CacheKey) String() string {
	return k.Namespace + ":" + k.Schema + ":" + k.Digest
}

// Prefix returns the key prefix shared by all snapshots of the same schema.
func (k CacheKey) Prefix() string {
	return k.Namespace + ":" + k.Schema + ":"
}

type cacheEntry struct {
	value   []byte
	expires time.Time
}

func (e cacheEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

// MemoryCache is a Cache backed by a map. It is safe for concurrent use.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]cacheEntry
	now   func() time.Time
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: make(map[string]cacheEntry),
		now:   time.Now,
	}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	now := c.now()
	if e.expired(now) {
		c.mu.Lock()
		defer c.mu.Unlock()
		// The entry may have been replaced since the read lock was released.
		if e, ok := c.items[key]; ok && !e.expired(now) {
			return e.value, nil
		}
		delete(c.items, key)
		return nil, nil
	}
	return e.value, nil
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := cacheEntry{value: value}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.items[key] = e
	c.mu.Unlock()
	return nil
}

// Delete implements Cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

// DeletePrefix implements Cache.
func (c *MemoryCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.items {
		if strings.HasPrefix(k, prefix) {
			delete(c.items, k)
		}
	}
	return nil
}

// Clear implements Cache.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.items = make(map[string]cacheEntry)
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, including expired ones not yet evicted.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
