package postgresengine

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"github.com/AntonStoeckl/lending-ledger/ledger"
)

const (
	defaultMaxAttempts  = 4
	defaultBaseDelay    = 10 * time.Millisecond
	defaultJitterFactor = 0.3
)

type retryPolicy struct {
	maxAttempts  int
	baseDelay    time.Duration
	jitterFactor float64
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
	}
}

// retryTransient runs fn with exponential backoff, retrying only on ledger.ErrTransientStorage.
//
// Retry Schedule (default): 0 ms, 10 ms, 20 ms, 40 ms (with 30% jitter)
//
// Business outcomes and context errors fail fast. Each attempt must be a complete atomic unit,
// a retry never resumes a half-done transaction.
func (s Store) retryTransient(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < s.retry.maxAttempts; attempt++ {
		if attempt > 0 {
			backoffDelay := s.retry.backoff(attempt)

			s.recordDuration(ctx, metricTransactionRetryWait, backoffDelay, map[string]string{
				spanAttrOperation: operation,
				"attempt_number":  strconv.Itoa(attempt),
			})

			select {
			case <-time.After(backoffDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if !errors.Is(lastErr, ledger.ErrTransientStorage) {
			return lastErr
		}

		if attempt < s.retry.maxAttempts-1 {
			s.logWarn(ctx, logMsgTransientRetry, logAttrOperation, operation, logAttrAttempt, attempt+1, logAttrError, lastErr.Error())
			s.incrementCounter(ctx, metricTransactionRetries, map[string]string{
				spanAttrOperation: operation,
				"attempt_number":  strconv.Itoa(attempt + 1),
			})
		}
	}

	s.logError(ctx, logMsgMaxRetriesReached, lastErr, logAttrOperation, operation, logAttrAttempt, s.retry.maxAttempts)
	s.incrementCounter(ctx, metricMaxRetriesReached, map[string]string{spanAttrOperation: operation})

	return lastErr
}

// backoff returns baseDelay * 2^(attempt-1) plus jitter.
func (p retryPolicy) backoff(attempt int) time.Duration {
	delay := p.baseDelay * time.Duration(1<<(attempt-1))
	jitter := rand.Float64() * float64(delay) * p.jitterFactor //nolint:gosec // math/rand is sufficient for jitter

	return delay + time.Duration(jitter)
}
