// Package ratelimit throttles HTTP clients with per-key token buckets.
//
//	limiter, err := ratelimit.NewTokenBucket(ratelimit.Config{Requests: 20, Interval: time.Minute})
//	if err != nil {
//		return err
//	}
//	r.With(ratelimit.Middleware(limiter, ratelimit.ByClientIP)).Post("/api/contact", h)
//
// Buckets live in process memory; each replica enforces its own budget.
package ratelimit
