package indexer

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const maxRetryInterval = 30 * time.Second

// withRetry runs fn until it succeeds, maxRetries retries are spent or ctx is done.
// Delays start at baseDelay and double with jitter.
func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, logger *zap.Logger, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = baseDelay
	b.MaxInterval = maxRetryInterval
	b.MaxElapsedTime = 0
	b.Multiplier = 2.0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(maxRetries)), ctx)

	attempt := 0
	notify := func(err error, next time.Duration) {
		attempt++
		logger.Debug("retrying", zap.Error(err), zap.Int("attempt", attempt), zap.Duration("next_retry_in", next))
	}

	return backoff.RetryNotify(func() error { return fn(ctx) }, policy, notify)
}
