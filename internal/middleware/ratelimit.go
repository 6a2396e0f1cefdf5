// Package middleware holds the verifier's route-specific Gin middleware.
package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimitMessage is the 429 response body.
const RateLimitMessage = "Rate limit exceeded"

type ipEntry struct {
	count     int
	expiresAt time.Time
}

// Limiter is a fixed-window request counter keyed by client IP.
type Limiter struct {
	maxRequests int
	window      time.Duration
	now         func() time.Time

	mu      sync.Mutex
	entries map[string]*ipEntry
}

// NewLimiter creates a Limiter allowing maxRequests per window per IP.
func NewLimiter(maxRequests int, window time.Duration) *Limiter {
	return &Limiter{
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
		entries:     make(map[string]*ipEntry),
	}
}

// Allow counts one request from ip and reports whether it is within the limit.
func (l *Limiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, exists := l.entries[ip]
	if !exists || !now.Before(entry.expiresAt) {
		l.entries[ip] = &ipEntry{count: 1, expiresAt: now.Add(l.window)}
		return true
	}

	if entry.count >= l.maxRequests {
		return false
	}
	entry.count++
	return true
}

// sweep drops expired windows.
func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for ip, entry := range l.entries {
		if !now.Before(entry.expiresAt) {
			delete(l.entries, ip)
		}
	}
}

// Run sweeps expired entries every window until done is closed.
func (l *Limiter) Run(done <-chan struct{}) {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

// Handler rejects requests over the limit with 429.
func (l *Limiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.Header("Retry-After", retryAfter(l.window))
			c.String(http.StatusTooManyRequests, RateLimitMessage)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RateLimiter limits requests per IP within window. The sweeper goroutine
// stops when done is closed.
func RateLimiter(maxRequests int, window time.Duration, done <-chan struct{}) gin.HandlerFunc {
	l := NewLimiter(maxRequests, window)
	go l.Run(done)
	return l.Handler()
}

func retryAfter(window time.Duration) string {
	return strconv.Itoa(int(window.Seconds()))
}
