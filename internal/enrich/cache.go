// Octoscope - GitHub Events Analytics Pipeline
// Copyright 2026 Octoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/octoscope/octoscope

package enrich

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/octoscope/octoscope/internal/metrics"
)

// entry is a cached resolution. ok=false marks a negative entry: the
// lookup failed and must not be retried before expiresAt.
type entry struct {
	value     interface{}
	ok        bool
	expiresAt time.Time
}

// Cache is a memoizing resolution cache with single-flight semantics.
//
// On a miss, exactly one caller per key performs the fetch; concurrent
// callers for the same key wait on that call instead of issuing
// duplicates. This is what keeps geocoding within the rate limiter's
// budget under concurrent enrichment. Failed resolutions are cached as
// short-TTL negative entries so a persistently bad key does not keep
// consuming budget.
type Cache struct {
	name string

	mu      sync.RWMutex
	entries map[string]entry

	positiveTTL time.Duration
	negativeTTL time.Duration

	group singleflight.Group

	// now is swappable for tests.
	now func() time.Time
}

// NewCache creates a cache named for metrics, with separate TTLs for
// successful and failed resolutions.
func NewCache(name string, positiveTTL, negativeTTL time.Duration) *Cache {
	return &Cache{
		name:        name,
		entries:     make(map[string]entry),
		positiveTTL: positiveTTL,
		negativeTTL: negativeTTL,
		now:         time.Now,
	}
}

// Resolve returns the cached value for key, or performs fetch under the
// per-key single-flight guard. The second return is false when the key is
// unresolved, either because fetch failed now or because a negative entry
// is still fresh.
func (c *Cache) Resolve(ctx context.Context, key string, fetch func(ctx context.Context) (interface{}, error)) (interface{}, bool) {
	if value, ok, hit := c.lookup(key); hit {
		metrics.RecordCacheHit(c.name)
		return value, ok
	}
	metrics.RecordCacheMiss(c.name)

	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Another caller may have resolved the key while this one was
		// queued on the flight group.
		if value, ok, hit := c.lookup(key); hit {
			if !ok {
				return nil, errNegativeCached
			}
			return value, nil
		}

		value, err := fetch(ctx)
		if err != nil && ctx.Err() != nil {
			// A fetch aborted by the caller's context says nothing
			// about the key itself; the next caller retries fresh.
			return nil, err
		}
		c.store(key, value, err == nil)
		return value, err
	})

	if err != nil {
		return nil, false
	}
	return result, true
}

// Len returns the current number of entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// lookup returns (value, resolved, present). Expired entries are evicted
// lazily and reported as absent.
func (c *Cache) lookup(key string) (interface{}, bool, bool) {
	c.mu.RLock()
	e, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		return nil, false, false
	}

	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, false
	}

	return e.value, e.ok, true
}

func (c *Cache) store(key string, value interface{}, ok bool) {
	ttl := c.positiveTTL
	if !ok {
		ttl = c.negativeTTL
		value = nil
	}

	c.mu.Lock()
	c.entries[key] = entry{
		value:     value,
		ok:        ok,
		expiresAt: c.now().Add(ttl),
	}
	c.mu.Unlock()
}

// errNegativeCached signals a fresh negative entry inside the flight group.
var errNegativeCached = &negativeCachedError{}

type negativeCachedError struct{}

func (*negativeCachedError) Error() string { return "resolution cached as failed" }
