// Package ratelimit paces per-element query evaluations during a filter
// pass, keeping large collection scans from saturating a shared host.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

type Limiter struct {
	limiter *rate.Limiter
}

// New builds a limiter allowing evaluationsPerSecond element evaluations.
// A zero or negative rate disables limiting.
func New(evaluationsPerSecond float64) *Limiter {
	if evaluationsPerSecond <= 0 {
		return &Limiter{
			limiter: rate.NewLimiter(rate.Inf, 1),
		}
	}

	// Burst of one: the first evaluation proceeds immediately, the rest
	// pace out according to the configured rate.
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(evaluationsPerSecond), 1),
	}
}

// Wait blocks until the next evaluation may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow is the non-blocking variant.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Limit reports the configured rate, 0 meaning unlimited.
func (l *Limiter) Limit() float64 {
	limit := l.limiter.Limit()
	if limit == rate.Inf {
		return 0
	}
	return float64(limit)
}
