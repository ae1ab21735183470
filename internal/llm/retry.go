package llm

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultCallTimeout = 30 * time.Second
	defaultMaxRetries  = 2
)

// withRetry runs fn with a per-call timeout and bounded exponential backoff.
// Context cancellation aborts the retry loop immediately.
func withRetry(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (string, error)) (string, error) {
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), defaultMaxRetries),
		ctx,
	)

	var out string
	op := func() error {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		result, err := fn(callCtx)
		if err != nil {
			return err
		}
		out = result
		return nil
	}

	if err := backoff.Retry(op, policy); err != nil {
		return "", err
	}
	return out, nil
}
