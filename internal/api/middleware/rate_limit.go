package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/mitm-relay-go/internal/config"
)

// rateLimiter implements a sliding window rate limiter keyed by client IP.
// Hits per client are kept in arrival order, so expiring the window is a
// matter of dropping the stale prefix.
type rateLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	limit  int
	window time.Duration
}

func newRateLimiter(maxRequests int, windowSeconds int) *rateLimiter {
	return &rateLimiter{
		hits:   make(map[string][]time.Time),
		limit:  maxRequests,
		window: time.Duration(windowSeconds) * time.Second,
	}
}

// take records one request from ip if the window has room.
// Returns (allowed, remaining, resetTimestamp).
func (rl *rateLimiter) take(ip string) (bool, int, int64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	live := trimExpired(rl.hits[ip], now.Add(-rl.window))

	if len(live) >= rl.limit {
		rl.hits[ip] = live
		// The window frees up when the oldest live hit ages out.
		return false, 0, live[0].Add(rl.window).Unix()
	}

	rl.hits[ip] = append(live, now)
	return true, rl.limit - len(live) - 1, now.Add(rl.window).Unix()
}

// trimExpired drops hits at or before cutoff. Hits are appended in time
// order, so everything before the first live entry is expired.
func trimExpired(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}

// cleanup drops clients whose hits have all aged out, so idle IPs do not
// accumulate in the map.
func (rl *rateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-rl.window)
	for ip, hits := range rl.hits {
		live := trimExpired(hits, cutoff)
		if len(live) == 0 {
			delete(rl.hits, ip)
			continue
		}
		rl.hits[ip] = live
	}
}

// RateLimit returns a rate limiting middleware for the debug routes.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := newRateLimiter(cfg.MaxRequests, cfg.WindowSeconds)

	// Background cleanup every 5 minutes
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			limiter.cleanup()
		}
	}()

	return func(c *gin.Context) {
		allowed, remaining, resetTime := limiter.take(c.ClientIP())

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime, 10))

		if !allowed {
			retryAfter := resetTime - time.Now().Unix()
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"detail": "Rate limit exceeded. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
