package services

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/balancebuddy/internal/common"
	"github.com/dmitrijs2005/balancebuddy/internal/logging"
)

const (
	purchaseRetries  = 2
	purchaseMaxDelay = 30 * time.Second
)

// purchaseBackoff waits 1s before the first retry and 2^n seconds before the
// n-th one after that.
func purchaseBackoff() retry.Backoff {
	attempt := 0
	b := retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		if attempt <= 1 {
			return time.Second, false
		}
		return time.Duration(1<<attempt) * time.Second, false
	})
	return retry.WithMaxRetries(purchaseRetries, retry.WithCappedDuration(purchaseMaxDelay, b))
}

// withRetry runs fn, retrying only when the backend was unreachable.
func withRetry(ctx context.Context, log logging.Logger, newBackoff func() retry.Backoff, op string, fn func(ctx context.Context) error) error {
	attempt := 0
	return retry.Do(ctx, newBackoff(), func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, common.ErrUnavailable) {
			log.Warn(ctx, "retrying", "op", op, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
}
