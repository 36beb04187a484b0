// Package cache provides an in-memory key/value store with per-entry expiry.
package cache

import (
	"sync"
	"time"

	"token-risk-scanner/internal/observability"
)

// DefaultTTL is the entry lifetime used when none is given.
const DefaultTTL = 2 * time.Hour

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTL is a process-wide key/value store with per-entry expiry.
// Expired entries are evicted lazily on Get; there is no sweeper and no
// capacity bound. Safe for concurrent use.
type TTL[V any] struct {
	mu         sync.RWMutex
	entries    map[string]entry[V]
	defaultTTL time.Duration
	now        func() time.Time
}

// Option configures TTL.
type Option func(*options)

type options struct {
	defaultTTL time.Duration
	now        func() time.Time
}

// WithDefaultTTL sets the TTL used by Set with ttl <= 0.
func WithDefaultTTL(d time.Duration) Option {
	return func(o *options) {
		o.defaultTTL = d
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New creates an empty cache.
func New[V any](opts ...Option) *TTL[V] {
	o := options{defaultTTL: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.defaultTTL <= 0 {
		o.defaultTTL = DefaultTTL
	}
	return &TTL[V]{
		entries:    make(map[string]entry[V]),
		defaultTTL: o.defaultTTL,
		now:        o.now,
	}
}

// Get returns the value for key if present and not expired.
// An expired entry is removed.
func (c *TTL[V]) Get(key string) (V, bool) {
	var zero V

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		observability.RecordCacheLookup("miss")
		return zero, false
	}

	if c.now().Before(e.expiresAt) {
		observability.RecordCacheLookup("hit")
		return e.value, true
	}

	c.mu.Lock()
	// re-check: a concurrent Set may have refreshed the entry
	if cur, ok := c.entries[key]; ok && !c.now().Before(cur.expiresAt) {
		delete(c.entries, key)
	}
	c.mu.Unlock()

	observability.RecordCacheLookup("expired")
	return zero, false
}

// Set stores value under key for ttl, replacing any prior entry.
// ttl <= 0 uses the default TTL.
func (c *TTL[V]) Set(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(ttl)}
}

// Clear removes all entries.
func (c *TTL[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry[V])
}

// Len returns the number of stored entries, expired ones included until read.
func (c *TTL[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// TokenKey builds the cache key for a token: "token-data:{network}-{address}".
func TokenKey(network, address string) string {
	return "token-data:" + network + "-" + address
}
