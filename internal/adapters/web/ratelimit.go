package web

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"bubbleview/internal/domain"
	"bubbleview/pkg/log"
)

type limiterEntry struct {
	l        *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-client token bucket pool. Buckets idle for longer
// than the TTL are evicted.
type RateLimiter struct {
	mu       sync.Mutex
	m        map[string]*limiterEntry
	rps      rate.Limit
	burst    int
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter allows rps requests per second per client with bursts of
// up to burst. Non-positive values fall back to 5 rps and a burst of 10.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 10
	}
	rl := &RateLimiter{
		m:     make(map[string]*limiterEntry),
		rps:   rate.Limit(rps),
		burst: burst,
		ttl:   10 * time.Minute,
		stop:  make(chan struct{}),
	}
	go rl.cleanup(time.Minute)
	return rl
}

// Allow reports whether key may make another request now.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	e, ok := rl.m[key]
	if !ok {
		e = &limiterEntry{l: rate.NewLimiter(rl.rps, rl.burst)}
		rl.m[key] = e
	}
	e.lastSeen = time.Now()
	rl.mu.Unlock()
	return e.l.Allow()
}

// Middleware rejects clients over budget with 429, keyed by client IP.
func (rl *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rl.Allow(c.IP()) {
			return c.Next()
		}
		log.GlobalWarnCtx(c.UserContext(), "rate limited", "ip", c.IP(), "path", c.Path())
		c.Set(fiber.HeaderRetryAfter, "1")
		return domain.ErrRateLimited
	}
}

// Len is the number of tracked clients.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.m)
}

// Close stops the eviction loop.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Sweep drops buckets not seen since before now minus the TTL.
func (rl *RateLimiter) Sweep(now time.Time) {
	cutoff := now.Add(-rl.ttl)
	rl.mu.Lock()
	for k, e := range rl.m {
		if e.lastSeen.Before(cutoff) {
			delete(rl.m, k)
		}
	}
	rl.mu.Unlock()
}

func (rl *RateLimiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.Sweep(now)
		}
	}
}
