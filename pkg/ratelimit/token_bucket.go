package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// TokenBucket keeps one golang.org/x/time/rate limiter per key. A key may burst
// up to Requests and then refills at Requests per Interval. Buckets idle for
// longer than one Interval after refilling are dropped on the next sweep.
type TokenBucket struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time
	swept   time.Time
}

// NewTokenBucket creates a limiter for cfg. cfg must be Enabled.
func NewTokenBucket(cfg Config) (*TokenBucket, error) {
	if !cfg.Enabled() {
		return nil, ErrInvalidConfig
	}

	perRequest := cfg.Interval / time.Duration(cfg.Requests)
	if perRequest <= 0 {
		perRequest = time.Nanosecond
	}

	return &TokenBucket{
		buckets: make(map[string]*bucket),
		limit:   rate.Every(perRequest),
		burst:   cfg.Requests,
		idle:    2 * cfg.Interval,
		now:     time.Now,
	}, nil
}

// Allow implements Limiter.
func (tb *TokenBucket) Allow(_ context.Context, key string) (*Result, error) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	tb.sweep(now)

	b, ok := tb.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(tb.limit, tb.burst)}
		tb.buckets[key] = b
	}
	b.lastSeen = now

	allowed := b.limiter.AllowN(now, 1)
	tokens := b.limiter.TokensAt(now)

	res := &Result{
		Allowed:   allowed,
		Limit:     tb.burst,
		Remaining: max(int(math.Floor(tokens)), 0),
		ResetAt:   now.Add(tb.fillTime(float64(tb.burst) - tokens)),
	}
	if !allowed {
		res.RetryIn = tb.fillTime(1 - tokens)
	}

	return res, nil
}

// fillTime is how long it takes to accumulate n tokens.
func (tb *TokenBucket) fillTime(n float64) time.Duration {
	if n <= 0 || tb.limit <= 0 {
		return 0
	}
	return time.Duration(n / float64(tb.limit) * float64(time.Second))
}

// sweep must be called with tb.mu held.
func (tb *TokenBucket) sweep(now time.Time) {
	if now.Sub(tb.swept) < tb.idle {
		return
	}
	tb.swept = now
	for key, b := range tb.buckets {
		if now.Sub(b.lastSeen) > tb.idle {
			delete(tb.buckets, key)
		}
	}
}

// Len returns the number of tracked keys.
func (tb *TokenBucket) Len() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return len(tb.buckets)
}
