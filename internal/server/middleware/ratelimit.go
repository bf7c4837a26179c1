// Package middleware holds the HTTP middleware of the preview server.
package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimit represents a rate limiter configuration.
type RateLimit struct {
	RequestsPerMinute int
	BurstLimit        int
}

// RateLimiter implements a token bucket rate limiter per IP address.
type RateLimiter struct {
	config  RateLimit
	buckets map[string]*tokenBucket
	mutex   sync.Mutex
	now     func() time.Time

	stopOnce sync.Once
	done     chan struct{}
}

// tokenBucket represents a token bucket for rate limiting.
type tokenBucket struct {
	tokens     int
	lastRefill time.Time
}

const (
	cleanupInterval = 5 * time.Minute
	bucketIdleTTL   = 10 * time.Minute
)

// NewRateLimiter creates a limiter and starts its cleanup loop. Call Stop
// to end the loop. A non-positive RequestsPerMinute allows everything.
func NewRateLimiter(config RateLimit) *RateLimiter {
	if config.BurstLimit <= 0 {
		config.BurstLimit = config.RequestsPerMinute
	}
	rl := &RateLimiter{
		config:  config,
		buckets: make(map[string]*tokenBucket),
		now:     time.Now,
		done:    make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Middleware wraps next and answers 429 once a client's bucket is empty.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(ClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Allow consumes a token for ip.
func (rl *RateLimiter) Allow(ip string) bool {
	if rl.config.RequestsPerMinute <= 0 {
		return true
	}

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	bucket, exists := rl.buckets[ip]
	if !exists {
		bucket = &tokenBucket{tokens: rl.config.BurstLimit, lastRefill: now}
		rl.buckets[ip] = bucket
	}

	refillRate := time.Minute / time.Duration(rl.config.RequestsPerMinute)
	if add := int(now.Sub(bucket.lastRefill) / refillRate); add > 0 {
		bucket.tokens = min(rl.config.BurstLimit, bucket.tokens+add)
		bucket.lastRefill = bucket.lastRefill.Add(time.Duration(add) * refillRate)
	}

	if bucket.tokens > 0 {
		bucket.tokens--
		return true
	}
	return false
}

// cleanup removes idle buckets.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle()
		case <-rl.done:
			return
		}
	}
}

func (rl *RateLimiter) evictIdle() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	cutoff := rl.now().Add(-bucketIdleTTL)
	for ip, bucket := range rl.buckets {
		if bucket.lastRefill.Before(cutoff) {
			delete(rl.buckets, ip)
		}
	}
}

// Stop ends the cleanup loop.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// ClientIP extracts the client IP address from the request. Forwarding
// headers are honored only when they hold a valid IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		first = strings.TrimSpace(first)
		if net.ParseIP(first) != nil {
			return first
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
