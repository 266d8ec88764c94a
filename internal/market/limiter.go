package market

import (
	"context"

	"golang.org/x/time/rate"
)

// TokenBucket wraps golang.org/x/time/rate as the per-exchange shared rate
// limiter, shared across every call made against the same exchange.
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket creates a limiter allowing ratePerSec steady-state calls
// with a burst of burst calls.
func NewTokenBucket(ratePerSec float64, burst int) *TokenBucket {
	return &TokenBucket{limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst)}
}

// Wait blocks until a token is available or ctx is done.
func (b *TokenBucket) Wait(ctx context.Context) error {
	return b.limiter.Wait(ctx)
}
