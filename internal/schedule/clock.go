package schedule

import (
	"sync"
	"time"
)

// Clock supplies the current instant and its local weekday/minute for a timezone.
type Clock interface {
	Now() time.Time
	LocalWeekdayAndMinutes(t time.Time, timezone string) (time.Weekday, int)
}

// SystemClock reads the wall clock and resolves IANA zones, falling back to UTC
// for empty or unknown zone names.
type SystemClock struct {
	mu        sync.RWMutex
	locations map[string]*time.Location
}

// NewSystemClock creates a wall-clock backed Clock.
func NewSystemClock() *SystemClock {
	return &SystemClock{locations: make(map[string]*time.Location)}
}

func (c *SystemClock) Now() time.Time {
	return time.Now()
}

func (c *SystemClock) LocalWeekdayAndMinutes(t time.Time, timezone string) (time.Weekday, int) {
	return weekdayAndMinutes(t.In(c.location(timezone)))
}

func (c *SystemClock) location(name string) *time.Location {
	if name == "" {
		return time.UTC
	}

	c.mu.RLock()
	loc, ok := c.locations[name]
	c.mu.RUnlock()
	if ok {
		return loc
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		loc = time.UTC
	}

	c.mu.Lock()
	c.locations[name] = loc
	c.mu.Unlock()
	return loc
}

// FixedClock is a Clock pinned to a settable instant.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
	sys *SystemClock
}

// NewFixedClock creates a clock that always reports now until moved.
func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now, sys: NewSystemClock()}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *FixedClock) LocalWeekdayAndMinutes(t time.Time, timezone string) (time.Weekday, int) {
	return c.sys.LocalWeekdayAndMinutes(t, timezone)
}

func weekdayAndMinutes(t time.Time) (time.Weekday, int) {
	return t.Weekday(), t.Hour()*60 + t.Minute()
}
