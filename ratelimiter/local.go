package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// ErrWaitExceeded is returned by WaitAndConsume when the required wait is
// longer than the caller allows.
var ErrWaitExceeded = errors.New("rate limit wait exceeds max wait")

// RateLimiter enforces a per-minute token budget and a per-minute request
// budget. Each budget refills continuously and allows a full minute's worth
// as a burst.
type RateLimiter struct {
	tokens   *rate.Limiter
	requests *rate.Limiter
}

// Ensure RateLimiter implements Limiter.
var _ Limiter = (*RateLimiter)(nil)

// New creates a limiter allowing tokensPerMinute tokens and
// requestsPerMinute requests. A non-positive value disables that budget.
func New(tokensPerMinute, requestsPerMinute int) *RateLimiter {
	return &RateLimiter{
		tokens:   perMinute(tokensPerMinute),
		requests: perMinute(requestsPerMinute),
	}
}

func perMinute(n int) *rate.Limiter {
	if n <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(float64(n)/time.Minute.Seconds()), n)
}

// TryConsume takes numTokens tokens and one request if both are available
// right now. Nothing is taken otherwise.
func (rl *RateLimiter) TryConsume(numTokens int) bool {
	now := time.Now()

	tr := rl.tokens.ReserveN(now, numTokens)
	if !tr.OK() || tr.DelayFrom(now) > 0 {
		tr.CancelAt(now)
		return false
	}

	rr := rl.requests.ReserveN(now, 1)
	if !rr.OK() || rr.DelayFrom(now) > 0 {
		rr.CancelAt(now)
		tr.CancelAt(now)
		return false
	}

	return true
}

// TimeUntilAvailable returns how long until numTokens tokens and one request
// would be available. It does not consume anything. A request larger than
// the token budget never becomes available and reports rate.InfDuration.
func (rl *RateLimiter) TimeUntilAvailable(numTokens int) time.Duration {
	now := time.Now()
	return max(delay(rl.tokens, now, numTokens), delay(rl.requests, now, 1))
}

func delay(l *rate.Limiter, now time.Time, n int) time.Duration {
	r := l.ReserveN(now, n)
	defer r.CancelAt(now)
	if !r.OK() {
		return rate.InfDuration
	}
	return r.DelayFrom(now)
}

// WaitAndConsume waits until tokens are available (up to maxWait), then consumes them.
// If maxWait is 0, there is no limit on how long to wait.
func (rl *RateLimiter) WaitAndConsume(ctx context.Context, numTokens int, maxWait time.Duration) error {
	wait := rl.TimeUntilAvailable(numTokens)
	if maxWait > 0 && wait > maxWait {
		return fmt.Errorf("%w: need %v, max %v", ErrWaitExceeded, wait, maxWait)
	}

	if err := rl.tokens.WaitN(ctx, numTokens); err != nil {
		return err
	}
	return rl.requests.Wait(ctx)
}
