package market

import (
	"context"
	"time"

	"github.com/premovescan/premovescan/internal/errs"
)

const (
	maxRetries    = 3
	retryBaseWait = 250 * time.Millisecond
)

// withRetry retries fn up to maxRetries times with exponential backoff when
// it returns a TransientFetch error; a PermanentFetch error or success ends
// the loop immediately.
func withRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBaseWait * time.Duration(1<<(attempt-1))):
			}
		}
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !errs.Is(err, errs.TransientFetch) {
			return err
		}
	}
	return lastErr
}
