package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// idleBucketTTL drops per-client buckets nobody has touched for a while.
const idleBucketTTL = 10 * time.Minute

// TokenBucket holds up to capacity tokens and regains refillRate per second.
// Fractional refill carries over between calls.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	refillRate float64
	lastRefill time.Time
	now        func() time.Time
}

func NewTokenBucket(capacity, refillRate int) *TokenBucket {
	return &TokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: float64(refillRate),
		lastRefill: time.Now(),
		now:        time.Now,
	}
}

// Allow takes one token if available.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	if dt := now.Sub(tb.lastRefill).Seconds(); dt > 0 {
		tb.tokens += dt * tb.refillRate
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
	}
	tb.lastRefill = now

	if tb.tokens < 1 {
		return false
	}
	tb.tokens--
	return true
}

func (tb *TokenBucket) idleSince(now time.Time) time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return now.Sub(tb.lastRefill)
}

// clientLimiter keeps one bucket per client address. Idle buckets are swept
// on the request path once per idleBucketTTL.
type clientLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*TokenBucket
	capacity   int
	refillRate int
	lastSweep  time.Time
	now        func() time.Time
}

func newClientLimiter(capacity, refillRate int) *clientLimiter {
	return &clientLimiter{
		buckets:    make(map[string]*TokenBucket),
		capacity:   capacity,
		refillRate: refillRate,
		lastSweep:  time.Now(),
		now:        time.Now,
	}
}

func (l *clientLimiter) allow(client string) bool {
	l.mu.Lock()
	now := l.now()
	if now.Sub(l.lastSweep) >= idleBucketTTL {
		for k, b := range l.buckets {
			if b.idleSince(now) > idleBucketTTL {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}
	b, ok := l.buckets[client]
	if !ok {
		b = NewTokenBucket(l.capacity, l.refillRate)
		b.now = l.now
		b.lastRefill = now
		l.buckets[client] = b
	}
	l.mu.Unlock()
	return b.Allow()
}

// RateLimitMiddleware limits each client IP to capacity requests in a burst,
// refilled at refillRate per second. Health and metrics endpoints are exempt.
func RateLimitMiddleware(capacity, refillRate int) func(http.Handler) http.Handler {
	limiter := newClientLimiter(capacity, refillRate)
	retryAfter := "60"
	if refillRate > 0 {
		retryAfter = "1"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !exemptFromLimit(r.URL.Path) && !limiter.allow(clientIP(r)) {
				w.Header().Set("Retry-After", retryAfter)
				http.Error(w, "rate limit exceeded, please try again later", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func exemptFromLimit(path string) bool {
	switch path {
	case "/health", "/healthz", "/readyz", "/livez", "/metrics":
		return true
	}
	return false
}

// clientIP strips the port from RemoteAddr. chi's RealIP middleware runs
// first, so proxies are already resolved.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
