// Package cache provides a small keyed TTL cache used by the store
// client for slow-changing reference data (the category list).
// Transaction snapshots are deliberately never cached: the summary must
// always be derived from a fresh fetch.
package cache

import (
	"sync"
	"time"
)

// TTL is a concurrency-safe cache whose entries expire after a fixed
// duration. Expired entries are dropped lazily on access and can be
// swept with CleanExpired.
type TTL[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry[T]
}

type entry[T any] struct {
	data      T
	expiresAt time.Time
}

// NewTTL creates a cache whose entries live for the given duration.
func NewTTL[T any](ttl time.Duration) *TTL[T] {
	return &TTL[T]{
		ttl:     ttl,
		entries: make(map[string]entry[T]),
	}
}

// Get retrieves a live value, reporting whether one was present.
func (c *TTL[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return zero, false
	}
	return e.data, true
}

// Set stores a value, resetting its expiry.
func (c *TTL[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[T]{data: data, expiresAt: time.Now().Add(c.ttl)}
}

// Invalidate drops a single key.
func (c *TTL[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops every entry (used when the session is torn down).
func (c *TTL[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[T])
}

// CleanExpired removes expired entries and returns how many were dropped.
func (c *TTL[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Size returns the current number of entries, expired ones included.
func (c *TTL[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
