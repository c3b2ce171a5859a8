package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is an in-memory fixed-window limiter. Counters live per key
// and reset when the window elapses; a background sweep evicts idle keys.
type RateLimiter struct {
	mu          sync.Mutex
	clients     map[string]*rateWindow
	limit       int
	window      time.Duration
	cleanupTick time.Duration
}

type rateWindow struct {
	tokens    int
	lastReset time.Time
}

// NewRateLimiter allows limit requests per key within each window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients:     make(map[string]*rateWindow),
		limit:       limit,
		window:      window,
		cleanupTick: window * 2,
	}
	go rl.sweep()
	return rl
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.cleanupTick)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, w := range rl.clients {
			if now.Sub(w.lastReset) > rl.window*2 {
				delete(rl.clients, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Allow consumes one token for the key, reporting whether any was left.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, exists := rl.clients[key]
	if !exists {
		rl.clients[key] = &rateWindow{tokens: rl.limit - 1, lastReset: now}
		return true
	}

	if now.Sub(w.lastReset) >= rl.window {
		w.tokens = rl.limit - 1
		w.lastReset = now
		return true
	}

	if w.tokens > 0 {
		w.tokens--
		return true
	}
	return false
}

// Remaining reports how many requests the key has left in its window.
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, exists := rl.clients[key]
	if !exists || time.Since(w.lastReset) >= rl.window {
		return rl.limit
	}
	return w.tokens
}

func rateLimited(c *gin.Context, message string) {
	abortJSON(c, http.StatusTooManyRequests, "RATE_LIMITED", message)
}

func (rl *RateLimiter) setHeaders(c *gin.Context, key string) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(rl.Remaining(key)))
}

// RateLimit throttles all requests per client IP.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if !limiter.Allow(key) {
			rateLimited(c, "Too many requests. Please try again later.")
			return
		}
		limiter.setHeaders(c, key)
		c.Next()
	}
}

// AuthRateLimit is a tighter limiter for sign-in endpoints, keyed per IP
// and isolated from the global limiter by an auth: prefix.
func AuthRateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "auth:" + c.ClientIP()
		if !limiter.Allow(key) {
			c.Header("Retry-After", strconv.Itoa(int(limiter.window.Seconds())))
			rateLimited(c, "Too many authentication attempts. Please try again later.")
			return
		}
		limiter.setHeaders(c, key)
		c.Next()
	}
}

// RateLimitByKey throttles with a caller-supplied key extractor, for limits
// keyed on something other than the client IP such as the session user.
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(keyFunc(c)) {
			rateLimited(c, "Too many requests. Please try again later.")
			return
		}
		c.Next()
	}
}
