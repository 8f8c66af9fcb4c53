package util

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter bounds how often watch mode re-extracts files. It is a token
// bucket refilled at perSecond with room for burst events.
type Limiter struct {
	inner *rate.Limiter
}

// NewLimiter returns a limiter admitting perSecond events on average.
// perSecond <= 0 disables limiting; burst is at least 1.
func NewLimiter(perSecond float64, burst int) *Limiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{inner: rate.NewLimiter(limit, burst)}
}

// Acquire takes one token, blocking until one is available or ctx ends.
// delayed reports whether the caller had to wait.
func (l *Limiter) Acquire(ctx context.Context) (delayed bool, err error) {
	if l.inner.AllowN(time.Now(), 1) {
		return false, nil
	}
	return true, l.inner.WaitN(ctx, 1)
}

// Unlimited reports whether the limiter admits every event immediately.
func (l *Limiter) Unlimited() bool {
	return l.inner.Limit() == rate.Inf
}
