package ai

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when a user exceeds their completion budget.
var ErrRateLimited = errors.New("ai: user rate limit exceeded")

// RateLimitedResponder wraps a Responder with a per-user token bucket so
// one chatty user cannot burn the completion budget for everyone.
type RateLimitedResponder struct {
	inner    Responder
	limit    rate.Limit
	burst    int
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewRateLimited(inner Responder, limit rate.Limit, burst int) *RateLimitedResponder {
	return &RateLimitedResponder{
		inner:    inner,
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (r *RateLimitedResponder) limiter(userID string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	limiter, ok := r.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(r.limit, r.burst)
		r.limiters[userID] = limiter
	}
	return limiter
}

func (r *RateLimitedResponder) Reply(ctx context.Context, userID string, text string) (string, error) {
	if !r.limiter(userID).Allow() {
		return "", ErrRateLimited
	}
	return r.inner.Reply(ctx, userID, text)
}
