package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"center-directory-service/internal/cache"
	"center-directory-service/internal/metrics"
)

// localLimiterCapacity bounds the number of client IPs tracked in process.
const localLimiterCapacity = 10000

// RateLimiter limits requests per client IP over a fixed window. Counters
// live in Redis so limits hold across replicas; without Redis each process
// falls back to an in-memory token bucket per IP, dropped once the IP has
// been idle for a full window.
type RateLimiter struct {
	rdb     *redis.Client
	maxReqs int
	window  time.Duration

	mu    sync.Mutex
	local *cache.Cache[*rate.Limiter]
}

func NewRateLimiter(rdb *redis.Client, maxReqs int, window time.Duration) (*RateLimiter, error) {
	return newRateLimiter(rdb, maxReqs, window, window, nil)
}

func newRateLimiter(rdb *redis.Client, maxReqs int, window, sweep time.Duration, now func() time.Time) (*RateLimiter, error) {
	local, err := cache.New[*rate.Limiter](cache.Config{
		Name:          "ratelimit",
		Capacity:      localLimiterCapacity,
		DefaultTTL:    window,
		SweepInterval: sweep,
		Now:           now,
	})
	if err != nil {
		return nil, fmt.Errorf("create local limiter cache: %w", err)
	}
	return &RateLimiter{
		rdb:     rdb,
		maxReqs: maxReqs,
		window:  window,
		local:   local,
	}, nil
}

// Close stops the idle-bucket sweep.
func (rl *RateLimiter) Close() {
	rl.local.Close()
}

// Handler returns the Fiber middleware.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		if rl.maxReqs <= 0 {
			return c.Next()
		}
		if rl.rdb == nil {
			return rl.handleLocal(c)
		}
		return rl.handleRedis(c)
	}
}

func (rl *RateLimiter) handleRedis(c fiber.Ctx) error {
	key := "ratelimit:" + c.IP()
	ctx, cancel := context.WithTimeout(c.Context(), 500*time.Millisecond)
	defer cancel()

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := rl.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, rl.window)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		// fail open
		slog.Warn("rate limiter unavailable", "error", err)
		return c.Next()
	}

	count := incr.Val()
	reset := int(ttl.Val().Seconds())
	rl.setHeaders(c, max(0, int64(rl.maxReqs)-count), reset)

	if count > int64(rl.maxReqs) {
		return rl.reject(c, reset)
	}
	return c.Next()
}

func (rl *RateLimiter) handleLocal(c fiber.Ctx) error {
	lim := rl.limiter(c.IP())
	reset := int(rl.window.Seconds())

	if !lim.Allow() {
		rl.setHeaders(c, 0, reset)
		return rl.reject(c, reset)
	}
	rl.setHeaders(c, int64(lim.Tokens()), reset)
	return c.Next()
}

// limiter returns the bucket for ip, refreshing its expiry so only idle IPs
// age out.
func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	lim, ok := rl.local.Get(ip)
	if !ok {
		every := rate.Every(rl.window / time.Duration(rl.maxReqs))
		lim = rate.NewLimiter(every, rl.maxReqs)
	}
	rl.local.Set(ip, lim, rl.window)
	return lim
}

func (rl *RateLimiter) setHeaders(c fiber.Ctx, remaining int64, reset int) {
	c.Set("X-RateLimit-Limit", strconv.Itoa(rl.maxReqs))
	c.Set("X-RateLimit-Remaining", strconv.FormatInt(max(0, remaining), 10))
	c.Set("X-RateLimit-Reset", strconv.Itoa(reset))
}

func (rl *RateLimiter) reject(c fiber.Ctx, retryAfter int) error {
	metrics.RateLimitRejections.Inc()
	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"error":       "rate limit exceeded",
		"retry_after": retryAfter,
	})
}
