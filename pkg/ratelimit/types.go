package ratelimit

import (
	"context"
	"time"
)

// Config describes a per-client budget: Requests per Interval.
type Config struct {
	Requests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"20"`
	Interval time.Duration `env:"RATE_LIMIT_INTERVAL" envDefault:"1m"`
}

// Enabled reports whether the config describes a usable limit.
func (c Config) Enabled() bool {
	return c.Requests > 0 && c.Interval > 0
}

// Result contains the result of a rate limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	// ResetAt is when the bucket is full again.
	ResetAt time.Time
	// RetryIn is how long a rejected caller should wait for its next token.
	RetryIn time.Duration
}

// RetryAfter returns how long to wait before the next request is allowed.
// Returns 0 if the current request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return r.RetryIn
}

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
}
