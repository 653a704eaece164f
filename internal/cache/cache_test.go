package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestCache(t *testing.T, capacity int) (*Cache[string], *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
	c, err := New[string](Config{
		Name:          "test",
		Capacity:      capacity,
		SweepInterval: -1,
		Now:           clock.Now,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(c.Close)
	return c, clock
}

func TestCacheSetGet(t *testing.T) {
	c, _ := newTestCache(t, 10)

	c.Set("key1", "value1", time.Minute)
	got, ok := c.Get("key1")
	if !ok || got != "value1" {
		t.Errorf("Get(key1) = %q, %v; want value1, true", got, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Sets != 1 {
		t.Errorf("stats = %+v, want 1 hit, 1 miss, 1 set", stats)
	}
}

func TestCacheExpiration(t *testing.T) {
	c, clock := newTestCache(t, 10)

	c.Set("key1", "value1", 30*time.Second)

	clock.Advance(29 * time.Second)
	if _, ok := c.Get("key1"); !ok {
		t.Fatal("expected key1 before ttl elapsed")
	}

	clock.Advance(time.Second)
	if _, ok := c.Get("key1"); ok {
		t.Fatal("expected key1 to expire once ttl elapsed")
	}

	if c.Len() != 0 {
		t.Errorf("expired entry should be deleted on access, len = %d", c.Len())
	}
	if stats := c.Stats(); stats.Expirations != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 1 expiration and 1 miss", stats)
	}
}

func TestCacheDefaultTTL(t *testing.T) {
	c, clock := newTestCache(t, 10)

	c.Set("key1", "value1", 0)
	clock.Advance(DefaultTTL - time.Second)
	if _, ok := c.Get("key1"); !ok {
		t.Fatal("expected key1 within default ttl")
	}
	clock.Advance(time.Second)
	if _, ok := c.Get("key1"); ok {
		t.Fatal("expected key1 to expire at default ttl")
	}
}

func TestCacheEvictsEarliestExpiry(t *testing.T) {
	c, _ := newTestCache(t, 3)

	c.Set("long", "a", 30*time.Minute)
	c.Set("short", "b", time.Minute)
	c.Set("medium", "c", 10*time.Minute)

	c.Set("new", "d", 5*time.Minute)

	if _, ok := c.Get("short"); ok {
		t.Error("expected entry with smallest remaining ttl to be evicted")
	}
	for _, k := range []string{"long", "medium", "new"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("expected %s to survive eviction", k)
		}
	}

	stats := c.Stats()
	if stats.Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", stats.Evictions)
	}
	if stats.Size != 3 || stats.Capacity != 3 {
		t.Errorf("size/capacity = %d/%d, want 3/3", stats.Size, stats.Capacity)
	}
}

func TestCacheOverwriteDoesNotEvict(t *testing.T) {
	c, _ := newTestCache(t, 2)

	c.Set("a", "1", time.Minute)
	c.Set("b", "2", time.Minute)
	c.Set("a", "3", time.Hour)

	if got, _ := c.Get("a"); got != "3" {
		t.Errorf("Get(a) = %q, want 3", got)
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("overwriting an existing key must not evict")
	}
	if c.Stats().Evictions != 0 {
		t.Error("expected no evictions")
	}
}

func TestCacheClear(t *testing.T) {
	c, _ := newTestCache(t, 10)

	c.Set("a", "1", time.Minute)
	if !c.Clear("a") {
		t.Error("Clear(a) = false, want true")
	}
	if c.Clear("a") {
		t.Error("second Clear(a) = true, want false")
	}
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be cleared")
	}
	if c.Stats().Clears != 1 {
		t.Errorf("Clears = %d, want 1", c.Stats().Clears)
	}
}

func TestCacheClearAll(t *testing.T) {
	c, _ := newTestCache(t, 10)

	for i := 0; i < 4; i++ {
		c.Set(fmt.Sprintf("k%d", i), "v", time.Minute)
	}
	c.Clear("k0")

	removed := c.ClearAll()
	if removed != 3 {
		t.Errorf("ClearAll() = %d, want 3", removed)
	}

	stats := c.Stats()
	if stats.Size != 0 || len(stats.Keys) != 0 {
		t.Errorf("size = %d, keys = %v; want empty", stats.Size, stats.Keys)
	}
	if stats.Clears != 4 {
		t.Errorf("Clears = %d, want 4", stats.Clears)
	}
}

func TestCacheClearPrefix(t *testing.T) {
	c, _ := newTestCache(t, 10)

	c.Set("recommendations_7_10", "a", time.Minute)
	c.Set("recommendations_7_20", "b", time.Minute)
	c.Set("recommendations_70_10", "c", time.Minute)
	c.Set("similar_3_5", "d", time.Minute)

	if n := c.ClearPrefix("recommendations_7_"); n != 2 {
		t.Errorf("ClearPrefix() = %d, want 2", n)
	}

	want := []string{"recommendations_70_10", "similar_3_5"}
	keys := c.Stats().Keys
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestCacheCleanup(t *testing.T) {
	c, clock := newTestCache(t, 10)

	c.Set("short", "a", time.Minute)
	c.Set("long", "b", time.Hour)

	if n := c.Cleanup(); n != 0 {
		t.Errorf("Cleanup() before expiry = %d, want 0", n)
	}

	clock.Advance(2 * time.Minute)
	if n := c.Cleanup(); n != 1 {
		t.Errorf("Cleanup() = %d, want 1", n)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCacheSweepLoop(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c, err := New[int](Config{Capacity: 5, SweepInterval: 10 * time.Millisecond, Now: clock.Now})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()

	c.Set("a", 1, time.Second)
	clock.Advance(2 * time.Second)

	deadline := time.Now().Add(2 * time.Second)
	for c.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("sweep did not remove expired entry")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewRejectsNegativeCapacity(t *testing.T) {
	if _, err := New[string](Config{Capacity: -1}); err != ErrInvalidCapacity {
		t.Errorf("New() error = %v, want ErrInvalidCapacity", err)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c, _ := newTestCache(t, 50)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*31+i)%80)
				c.Set(key, key, time.Minute)
				c.Get(key)
				if i%50 == 0 {
					c.Cleanup()
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 50 {
		t.Errorf("Len() = %d exceeds capacity 50", c.Len())
	}
}
