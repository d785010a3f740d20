// Steam Shame - Game Library Shame Analytics
// Copyright 2026 DrawedC
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/DrawedC/steam-shame

// Package cache provides a thread-safe in-memory TTL cache.
//
// Two process-wide instances back the Steam clients: a short-TTL cache for
// owned-games responses (bursts of sibling requests for the same profile) and
// a long-TTL cache for storefront metadata (genre and price rarely change).
// Entries are immutable once written; a refresh overwrites the entry wholesale.
// Both caches may be empty after a restart without affecting correctness.
package cache

import (
	"sync"
	"time"
)

// entry is a cached value with its expiration time.
type entry struct {
	data      interface{}
	expiresAt time.Time
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Keys      int64
}

// Cache is a thread-safe in-memory cache with per-entry TTL and a background
// cleanup loop. The zero value is not usable; construct with New.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration

	statsMu sync.Mutex
	stats   Stats

	stop chan struct{}
}

// cleanupInterval is how often the background sweep removes expired entries.
// Expired entries are also removed lazily on Get, so the sweep only bounds
// memory held by keys that are never read again.
const cleanupInterval = 5 * time.Minute

// New creates a cache whose entries expire after ttl by default and starts
// the background cleanup goroutine. Call Close to stop it.
func New(ttl time.Duration) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Get retrieves a value by key. Returns (nil, false) when the key is absent
// or the entry has expired; an expired entry is deleted on the way out.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.bump(func(s *Stats) { s.Misses++ })
		return nil, false
	}

	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		c.bump(func(s *Stats) { s.Misses++; s.Evictions++ })
		return nil, false
	}

	c.bump(func(s *Stats) { s.Hits++ })
	return e.data, true
}

// Set stores a value with the cache's default TTL, overwriting any existing
// entry for the key.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL.
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry{data: value, expiresAt: time.Now().Add(ttl)}
	keys := int64(len(c.entries))
	c.mu.Unlock()

	c.bump(func(s *Stats) { s.Keys = keys })
}

// Delete removes a key. No-op when the key is absent.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	c.bump(func(s *Stats) { s.Evictions++ })
}

// Clear removes all entries in one atomic map swap.
func (c *Cache) Clear() {
	c.mu.Lock()
	evicted := int64(len(c.entries))
	c.entries = make(map[string]entry)
	c.mu.Unlock()

	c.bump(func(s *Stats) { s.Evictions += evicted; s.Keys = 0 })
}

// GetStats returns a copy of the current counters.
func (c *Cache) GetStats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

// HitRate returns the hit rate as a percentage, or 0 with no traffic.
func (c *Cache) HitRate() float64 {
	s := c.GetStats()
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}
	return float64(s.Hits) / float64(total) * 100.0
}

// Close stops the background cleanup goroutine.
func (c *Cache) Close() {
	close(c.stop)
}

func (c *Cache) bump(fn func(*Stats)) {
	c.statsMu.Lock()
	fn(&c.stats)
	c.statsMu.Unlock()
}

// cleanupLoop periodically removes expired entries until Close is called.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

// cleanup removes all expired entries.
func (c *Cache) cleanup() {
	now := time.Now()
	c.mu.Lock()
	evicted := int64(0)
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			evicted++
		}
	}
	keys := int64(len(c.entries))
	c.mu.Unlock()

	c.bump(func(s *Stats) { s.Evictions += evicted; s.Keys = keys })
}
