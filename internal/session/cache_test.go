package session

import (
	"bytes"
	"testing"
	"time"
)

// fakeClock lets tests advance cache time deterministically.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestCache(ttl time.Duration, maxBytes int64) (*Cache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)}
	c := NewCache(ttl, maxBytes)
	c.now = clock.now
	return c, clock
}

func TestCache_PutGet(t *testing.T) {
	c, _ := newTestCache(time.Hour, 1<<20)

	artifact := []byte("<html>map</html>")
	id := c.Put(artifact)
	if id == "" {
		t.Fatal("expected a session ID")
	}

	got, ok := c.Get(id)
	if !ok {
		t.Fatal("expected artifact to be cached")
	}
	if !bytes.Equal(got, artifact) {
		t.Error("artifact round-trip mismatch")
	}
}

func TestCache_UniqueIDs(t *testing.T) {
	c, _ := newTestCache(time.Hour, 1<<20)

	a := c.Put([]byte("a"))
	b := c.Put([]byte("b"))
	if a == b {
		t.Error("expected distinct session IDs")
	}
}

func TestCache_MissingID(t *testing.T) {
	c, _ := newTestCache(time.Hour, 1<<20)
	if _, ok := c.Get("nope"); ok {
		t.Error("expected miss for unknown session ID")
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	c, clock := newTestCache(time.Hour, 1<<20)

	id := c.Put([]byte("map"))
	clock.advance(time.Hour + time.Minute)

	if _, ok := c.Get(id); ok {
		t.Error("expected expired entry to be gone")
	}
	if c.Len() != 0 {
		t.Errorf("expected expired entry removed, %d entries remain", c.Len())
	}
}

func TestCache_StaleEvictedOnPut(t *testing.T) {
	c, clock := newTestCache(time.Hour, 1<<20)

	c.Put([]byte("old"))
	clock.advance(2 * time.Hour)
	c.Put([]byte("new"))

	if c.Len() != 1 {
		t.Errorf("expected only the fresh entry, got %d", c.Len())
	}
}

func TestCache_SizeEvictsOldestFirst(t *testing.T) {
	c, clock := newTestCache(time.Hour, 25)

	first := c.Put(make([]byte, 10))
	clock.advance(time.Minute)
	second := c.Put(make([]byte, 10))
	clock.advance(time.Minute)
	third := c.Put(make([]byte, 10))

	if _, ok := c.Get(first); ok {
		t.Error("expected oldest entry evicted over budget")
	}
	if _, ok := c.Get(second); !ok {
		t.Error("expected middle entry to survive")
	}
	if _, ok := c.Get(third); !ok {
		t.Error("expected newest entry to survive")
	}
	if c.Size() > 25 {
		t.Errorf("cache over budget: %d bytes", c.Size())
	}
}

func TestCache_OversizedArtifactKept(t *testing.T) {
	c, _ := newTestCache(time.Hour, 10)

	// An artifact bigger than the whole budget still gets cached; only
	// older entries make way for it.
	id := c.Put(make([]byte, 100))
	if _, ok := c.Get(id); !ok {
		t.Error("expected newest oversized artifact to be kept")
	}
	if c.Len() != 1 {
		t.Errorf("expected exactly 1 entry, got %d", c.Len())
	}
}
