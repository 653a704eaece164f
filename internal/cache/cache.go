// Package cache provides a process-local key/value store with per-entry expiry,
// a capacity bound and a periodic sweep of expired entries.
//
// When a new key would exceed capacity, the entry with the earliest expiry is
// evicted. Invalidation on data change is the caller's job.
package cache

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"center-directory-service/internal/metrics"
)

const (
	DefaultCapacity      = 100
	DefaultTTL           = 30 * time.Minute
	DefaultSweepInterval = 5 * time.Minute
)

// ErrInvalidCapacity is returned by New for a negative capacity.
var ErrInvalidCapacity = errors.New("cache capacity must be positive")

// Config configures a Cache. Zero values select the defaults; a negative
// SweepInterval disables the background sweep.
type Config struct {
	// Name labels the cache in Prometheus metrics.
	Name          string
	Capacity      int
	DefaultTTL    time.Duration
	SweepInterval time.Duration
	// Now overrides the clock, for tests.
	Now func() time.Time
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits        int64    `json:"hits"`
	Misses      int64    `json:"misses"`
	Sets        int64    `json:"sets"`
	Clears      int64    `json:"clears"`
	Evictions   int64    `json:"evictions"`
	Expirations int64    `json:"expirations"`
	Size        int      `json:"size"`
	Capacity    int      `json:"capacity"`
	Keys        []string `json:"keys"`
}

// Cache is safe for concurrent use.
type Cache[V any] struct {
	mu       sync.Mutex
	entries  map[string]entry[V]
	name     string
	capacity int
	ttl      time.Duration
	now      func() time.Time

	hits, misses, sets, clears, evictions, expirations int64

	stop      chan struct{}
	closeOnce sync.Once
}

// New creates a cache and, unless disabled, starts its sweep goroutine.
func New[V any](cfg Config) (*Cache[V], error) {
	if cfg.Capacity < 0 {
		return nil, ErrInvalidCapacity
	}
	if cfg.Capacity == 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultTTL
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Name == "" {
		cfg.Name = "default"
	}

	c := &Cache[V]{
		entries:  make(map[string]entry[V], cfg.Capacity),
		name:     cfg.Name,
		capacity: cfg.Capacity,
		ttl:      cfg.DefaultTTL,
		now:      cfg.Now,
		stop:     make(chan struct{}),
	}

	if cfg.SweepInterval > 0 {
		go c.sweepLoop(cfg.SweepInterval)
	}
	return c, nil
}

// Get returns the value for key if present and not yet expired. An expired
// entry is deleted on access.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		c.misses++
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
		return zero, false
	}

	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		c.misses++
		c.expirations++
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
		metrics.CacheExpirations.WithLabelValues(c.name).Inc()
		c.reportSize()
		return zero, false
	}

	c.hits++
	metrics.CacheHits.WithLabelValues(c.name).Inc()
	return e.value, true
}

// Set stores value under key for ttl; ttl <= 0 uses the default TTL.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictEarliest()
	}

	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(ttl)}
	c.sets++
	c.reportSize()
}

// evictEarliest removes the entry closest to expiry. Caller holds mu.
func (c *Cache[V]) evictEarliest() {
	var (
		victim   string
		earliest time.Time
		found    bool
	)
	for k, e := range c.entries {
		if !found || e.expiresAt.Before(earliest) || (e.expiresAt.Equal(earliest) && k < victim) {
			victim, earliest, found = k, e.expiresAt, true
		}
	}
	if !found {
		return
	}
	delete(c.entries, victim)
	c.evictions++
	metrics.CacheEvictions.WithLabelValues(c.name).Inc()
}

// Clear removes one key and reports whether it was present.
func (c *Cache[V]) Clear(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	c.clears++
	c.reportSize()
	return true
}

// ClearPrefix removes every key starting with prefix and returns the count.
func (c *Cache[V]) ClearPrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
			n++
		}
	}
	c.clears += int64(n)
	c.reportSize()
	return n
}

// ClearAll empties the cache and returns how many entries were removed.
func (c *Cache[V]) ClearAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = make(map[string]entry[V], c.capacity)
	c.clears += int64(n)
	c.reportSize()
	return n
}

// Cleanup removes all expired entries and returns how many were removed.
func (c *Cache[V]) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for k, e := range c.entries {
		if e.expiresAt.Before(now) {
			delete(c.entries, k)
			n++
		}
	}
	c.expirations += int64(n)
	metrics.CacheExpirations.WithLabelValues(c.name).Add(float64(n))
	c.reportSize()
	return n
}

// Stats returns a snapshot of the counters and the live key list.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return Stats{
		Hits:        c.hits,
		Misses:      c.misses,
		Sets:        c.sets,
		Clears:      c.clears,
		Evictions:   c.evictions,
		Expirations: c.expirations,
		Size:        len(c.entries),
		Capacity:    c.capacity,
		Keys:        keys,
	}
}

// Len returns the number of stored entries, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close stops the sweep goroutine. It is safe to call more than once.
func (c *Cache[V]) Close() {
	c.closeOnce.Do(func() { close(c.stop) })
}

func (c *Cache[V]) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.Cleanup()
		}
	}
}

func (c *Cache[V]) reportSize() {
	metrics.CacheSize.WithLabelValues(c.name).Set(float64(len(c.entries)))
}
