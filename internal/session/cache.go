// Package session keeps rendered map artifacts available for download
// for a bounded time after their run.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	artifact []byte
	created  time.Time
}

// Cache is an in-memory artifact store keyed by session ID. Entries
// expire after ttl; when the total artifact size exceeds maxBytes the
// oldest entries are evicted first. Nothing here outlives the process:
// computed ranges are never persisted.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]entry
	order    []string // insertion order, oldest first
	ttl      time.Duration
	maxBytes int64
	now      func() time.Time
}

func NewCache(ttl time.Duration, maxBytes int64) *Cache {
	return &Cache{
		entries:  make(map[string]entry),
		ttl:      ttl,
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

// Put stores an artifact under a fresh session ID and returns the ID.
// Stale and over-budget entries are evicted on every insert.
func (c *Cache) Put(artifact []byte) string {
	id := uuid.NewString()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictLocked()
	c.entries[id] = entry{artifact: artifact, created: c.now()}
	c.order = append(c.order, id)
	c.shrinkLocked()

	return id
}

// Get returns the artifact for a session ID, if still cached.
func (c *Cache) Get(id string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.created) > c.ttl {
		c.deleteLocked(id)
		return nil, false
	}
	return e.artifact, true
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Size is the total byte size of all cached artifacts.
func (c *Cache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sizeLocked()
}

func (c *Cache) sizeLocked() int64 {
	var total int64
	for _, e := range c.entries {
		total += int64(len(e.artifact))
	}
	return total
}

func (c *Cache) evictLocked() {
	cutoff := c.now().Add(-c.ttl)
	for id, e := range c.entries {
		if e.created.Before(cutoff) {
			c.deleteLocked(id)
		}
	}
}

// shrinkLocked drops oldest entries until the cache fits the byte
// budget, always keeping the newest entry.
func (c *Cache) shrinkLocked() {
	for len(c.order) > 1 && c.sizeLocked() > c.maxBytes {
		c.deleteLocked(c.order[0])
	}
}

func (c *Cache) deleteLocked(id string) {
	delete(c.entries, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
