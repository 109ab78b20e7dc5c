package redirect

import (
	"sync"
	"time"
)

// TokenBucket is a per-key token bucket Limiter. Buckets idle long enough
// to refill to the full burst are dropped, since a fresh bucket is
// indistinguishable from them.
type TokenBucket struct {
	mu        sync.Mutex
	rps       float64
	burst     float64
	buckets   map[string]*bucket
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewTokenBucket allows rps attempts per second per key with the given
// burst. A non-positive burst equals rps, rounded up to at least 1.
func NewTokenBucket(rps float64, burst int) *TokenBucket {
	b := float64(burst)
	if burst <= 0 {
		b = max(1, rps)
	}
	l := &TokenBucket{
		rps:     rps,
		burst:   b,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
	if rps > 0 {
		l.idle = time.Duration(b / rps * float64(time.Second))
	}
	return l
}

func (l *TokenBucket) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok {
		l.buckets[key] = &bucket{tokens: l.burst - 1, last: now}
		return true
	}

	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = min(l.burst, b.tokens+elapsed*l.rps)
		b.last = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// sweep drops refilled buckets at most once per idle period.
func (l *TokenBucket) sweep(now time.Time) {
	if l.idle <= 0 || now.Sub(l.lastSweep) < l.idle {
		return
	}
	l.lastSweep = now
	for key, b := range l.buckets {
		if b.tokens+now.Sub(b.last).Seconds()*l.rps >= l.burst {
			delete(l.buckets, key)
		}
	}
}
