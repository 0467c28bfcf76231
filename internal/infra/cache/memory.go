// Package cache stores generated summaries keyed by a digest of the model input.
// Both implementations satisfy summary.Cache.
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Memory is an in-process LRU cache with per-entry expiry.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
}

type memoryEntry struct {
	key       string
	summary   string
	expiresAt time.Time // zero: never expires
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// NewMemory creates a cache holding at most maxEntries summaries for ttl each.
// A ttl <= 0 keeps entries until they are evicted, as Redis does with no TTL.
func NewMemory(maxEntries int, ttl time.Duration) *Memory {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &Memory{
		entries:    make(map[string]*list.Element, maxEntries),
		order:      list.New(),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Get returns the cached summary for key. Expired entries are misses.
func (c *Memory) Get(_ context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return "", false, nil
	}

	entry := elem.Value.(*memoryEntry)
	if entry.expired(c.now()) {
		c.removeElement(elem)
		return "", false, nil
	}

	c.order.MoveToFront(elem)
	return entry.summary, true, nil
}

// Set stores summary under key, evicting the least recently used entries
// once the cache is full.
func (c *Memory) Set(_ context.Context, key, summary string) error {
	if key == "" || summary == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = now.Add(c.ttl)
	}

	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*memoryEntry)
		entry.summary = summary
		entry.expiresAt = expiresAt
		c.order.MoveToFront(elem)
		return nil
	}

	c.entries[key] = c.order.PushFront(&memoryEntry{
		key:       key,
		summary:   summary,
		expiresAt: expiresAt,
	})

	c.evictExpiredLocked(now)
	c.enforceSizeLimitLocked()
	return nil
}

// Len returns the number of live and not yet evicted entries.
func (c *Memory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Ping always succeeds.
func (c *Memory) Ping(context.Context) error { return nil }

// Close is a no-op.
func (c *Memory) Close() error { return nil }

func (c *Memory) evictExpiredLocked(now time.Time) {
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*memoryEntry).expired(now) {
			c.removeElement(elem)
		}
		elem = prev
	}
}

func (c *Memory) enforceSizeLimitLocked() {
	for len(c.entries) > c.maxEntries {
		elem := c.order.Back()
		if elem == nil {
			return
		}
		c.removeElement(elem)
	}
}

func (c *Memory) removeElement(elem *list.Element) {
	delete(c.entries, elem.Value.(*memoryEntry).key)
	c.order.Remove(elem)
}
