package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a rate limiter
type Limiter interface {
	Allow(key string) bool
}

// NopLimiter is a no-op limiter
type NopLimiter struct{}

// Allow always returns true
func (NopLimiter) Allow(string) bool { return true }

// TokenBucket is a per-key token bucket limiter. Buckets refill at
// limit/window tokens per second up to a burst of limit, and idle
// buckets are swept once the map grows past maxKeys.
type TokenBucket struct {
	mu      sync.Mutex
	rate    float64
	burst   float64
	maxKeys int
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	tokens   float64
	refilled time.Time
}

// NewTokenBucket creates a limiter allowing limit requests per window
// for each key.
func NewTokenBucket(limit int, window time.Duration, maxKeys int) *TokenBucket {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Second
	}
	if maxKeys <= 0 {
		maxKeys = 10_000
	}
	return &TokenBucket{
		rate:    float64(limit) / window.Seconds(),
		burst:   float64(limit),
		maxKeys: maxKeys,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow reports whether key may proceed and spends one token if so.
func (l *TokenBucket) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= l.maxKeys {
			l.sweep(now)
		}
		b = &bucket{tokens: l.burst, refilled: now}
		l.buckets[key] = b
	}

	if dt := now.Sub(b.refilled); dt > 0 {
		b.tokens += dt.Seconds() * l.rate
		if b.tokens > l.burst {
			b.tokens = l.burst
		}
		b.refilled = now
	}

	if b.tokens < 1.0 {
		return false
	}
	b.tokens -= 1.0
	return true
}

// sweep drops buckets that refilled to full, i.e. keys idle long enough
// to be indistinguishable from new ones. Called under l.mu.
func (l *TokenBucket) sweep(now time.Time) {
	for k, b := range l.buckets {
		idle := now.Sub(b.refilled).Seconds() * l.rate
		if b.tokens+idle >= l.burst {
			delete(l.buckets, k)
		}
	}
}
