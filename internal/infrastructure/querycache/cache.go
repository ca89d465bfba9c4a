// Package querycache implements the read-through query cache the stores
// synchronize against. It is deliberately in-process: the single-flight and
// dismissal guarantees of this core are scoped to one client instance, and a
// shared external cache would silently widen that scope.
package querycache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/quotegarden/client-core/internal/core/ports"
	"github.com/quotegarden/client-core/internal/metrics"
)

type entry struct {
	value any
	// gen counts invalidations and manual writes for this key. A fetch started
	// at generation g only stores its result while the key is still at g.
	gen uint64
	ok  bool
}

// Cache is a generation-tracked read-through cache. Concurrent fetches of one
// key coalesce into a single upstream call; an invalidation during a fetch
// wins over the fetch's result.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
}

func New() *Cache {
	return &Cache{entries: make(map[string]*entry)}
}

func (c *Cache) ent(key string) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	return e
}

// Fetch returns the cached value for key, fetching it through fn when no
// settled value exists. The error of a failed fetch is returned to every
// coalesced caller and nothing is cached.
func (c *Cache) Fetch(ctx context.Context, key string, fn ports.FetchFunc) (any, error) {
	c.mu.Lock()
	e := c.ent(key)
	if e.ok {
		v := e.value
		c.mu.Unlock()
		metrics.CacheReads.WithLabelValues(key, "hit").Inc()
		return v, nil
	}
	startGen := e.gen
	c.mu.Unlock()
	metrics.CacheReads.WithLabelValues(key, "miss").Inc()

	v, err, _ := c.group.Do(key, func() (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	e = c.ent(key)
	if e.gen == startGen {
		e.value = v
		e.ok = true
	}
	c.mu.Unlock()
	return v, nil
}

// Peek returns the settled value for key without fetching.
func (c *Cache) Peek(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !e.ok {
		return nil, false
	}
	return e.value, true
}

// Set writes value for key and bumps the generation so any in-flight fetch
// started earlier cannot overwrite it.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	e := c.ent(key)
	e.value = value
	e.ok = true
	e.gen++
	c.mu.Unlock()
}

// Invalidate drops the value for key and bumps its generation. The next Fetch
// re-derives the value from upstream.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	e := c.ent(key)
	e.value = nil
	e.ok = false
	e.gen++
	c.mu.Unlock()

	c.group.Forget(key)
	metrics.CacheInvalidations.WithLabelValues(key).Inc()
}
