package cache

import (
	"sync"
	"time"

	"leituras-platform/internal/models"
)

// QueryCache is a concurrency-safe in-memory cache of reading list queries,
// keyed by a query identifier. Every mutation of the readings table must
// invalidate it, so entries are snapshots of the store between writes.
type QueryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
}

type entry struct {
	leituras []*models.Leitura
	storedAt time.Time
}

// New creates a QueryCache. Entries older than ttl are ignored on read and
// removed by Sweep. A ttl of 0 disables expiry.
func New(ttl time.Duration) *QueryCache {
	return &QueryCache{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

// Get returns the cached result for a query key, if present and fresh.
// The returned slice is a copy; callers may not reach the cached backing array.
func (c *QueryCache) Get(key string) ([]*models.Leitura, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && time.Since(e.storedAt) > c.ttl {
		return nil, false
	}

	out := make([]*models.Leitura, len(e.leituras))
	copy(out, e.leituras)
	return out, true
}

// Set stores the result of a query under its key.
func (c *QueryCache) Set(key string, leituras []*models.Leitura) {
	snapshot := make([]*models.Leitura, len(leituras))
	copy(snapshot, leituras)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		leituras: snapshot,
		storedAt: time.Now(),
	}
}

// Invalidate drops every cached query. Called after any create, update,
// partial update, or delete.
func (c *QueryCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry)
}

// Sweep removes expired entries and returns how many were dropped.
func (c *QueryCache) Sweep() int {
	if c.ttl <= 0 {
		return 0
	}

	cutoff := time.Now().Add(-c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	swept := 0
	for key, e := range c.entries {
		if e.storedAt.Before(cutoff) {
			delete(c.entries, key)
			swept++
		}
	}
	return swept
}

// Len returns the number of cached queries, fresh or not.
func (c *QueryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
