// Package cache holds short-lived, process-local copies of store reads.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL is how long a cached list stays fresh.
const DefaultTTL = 5 * time.Minute

// TTL caches a single value for a fixed wall-clock duration.
// It is safe for concurrent use.
type TTL[T any] struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	value    T
	storedAt time.Time
	valid    bool
	// gen counts invalidations. A value read from the store before the
	// latest Invalidate must not be stored.
	gen uint64
}

// Option configures a TTL cache.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New returns an empty cache. A non-positive ttl falls back to DefaultTTL.
func New[T any](ttl time.Duration, opts ...Option) *TTL[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TTL[T]{ttl: ttl, now: o.now}
}

// Get returns the cached value if one is present and younger than the TTL.
func (c *TTL[T]) Get() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid || c.now().Sub(c.storedAt) >= c.ttl {
		var zero T
		return zero, false
	}
	return c.value, true
}

// Set replaces the cached value and restarts its age.
func (c *TTL[T]) Set(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = v
	c.storedAt = c.now()
	c.valid = true
}

// Generation returns the current invalidation count. Read it before loading
// a value and hand it to SetIfGeneration.
func (c *TTL[T]) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// SetIfGeneration stores v only if no Invalidate happened since gen was read.
// It reports whether v was stored.
func (c *TTL[T]) SetIfGeneration(gen uint64, v T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return false
	}
	c.value = v
	c.storedAt = c.now()
	c.valid = true
	return true
}

// Invalidate clears the cache so the next Get misses, and refuses any
// SetIfGeneration for a value loaded before this call.
func (c *TTL[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	c.value = zero
	c.valid = false
	c.gen++
}

// TTL returns the configured freshness window.
func (c *TTL[T]) TTL() time.Duration { return c.ttl }
