package postgresengine

import (
	"errors"
	"time"

	"github.com/AntonStoeckl/lending-ledger/ledger"
)

var (
	// ErrNonPositiveTimeout is returned when a transaction or lock timeout is not positive.
	ErrNonPositiveTimeout = errors.New("timeout must be positive")

	// ErrNilClock is returned when WithClock receives nil.
	ErrNilClock = errors.New("clock must not be nil")

	// ErrInvalidMaxAttempts is returned when max attempts are not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNegativeBaseDelay is returned when the base delay is negative.
	ErrNegativeBaseDelay = errors.New("base delay must not be negative")

	// ErrInvalidJitterFactor is returned when the jitter factor is not between 0.0 and 1.0.
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")
)

// Option defines a functional option for configuring Store.
type Option func(*Store) error

// WithTableNames sets the users, items, and history table names.
// Constraint names derive from the history table name, so Migrate must run with the same names.
func WithTableNames(users, items, history string) Option {
	return func(s *Store) error {
		if users == "" || items == "" || history == "" {
			return ledger.ErrEmptyTableName
		}

		s.usersTableName = users
		s.itemsTableName = items
		s.historyTableName = history

		return nil
	}
}

// WithTransactionTimeout bounds how long one attempt of an atomic unit may take, lock waits included.
func WithTransactionTimeout(timeout time.Duration) Option {
	return func(s *Store) error {
		if timeout <= 0 {
			return ErrNonPositiveTimeout
		}

		s.txTimeout = timeout

		return nil
	}
}

// WithLockTimeout bounds how long an atomic unit waits for the item row lock.
// Hitting it surfaces as ledger.ErrTransientStorage and the unit is retried.
func WithLockTimeout(timeout time.Duration) Option {
	return func(s *Store) error {
		if timeout <= 0 {
			return ErrNonPositiveTimeout
		}

		s.lockTimeout = timeout

		return nil
	}
}

// WithClock replaces time.Now for created_at timestamps of users and items.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) error {
		if clock == nil {
			return ErrNilClock
		}

		s.clock = clock

		return nil
	}
}

// WithRetryMaxAttempts sets how often an atomic unit is attempted when it fails transiently.
// A value of 1 disables retries.
func WithRetryMaxAttempts(attempts int) Option {
	return func(s *Store) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}

		s.retry.maxAttempts = attempts

		return nil
	}
}

// WithRetryBaseDelay sets the base delay for exponential backoff.
// Actual delays: baseDelay, baseDelay*2, baseDelay*4, etc.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(s *Store) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}

		s.retry.baseDelay = delay

		return nil
	}
}

// WithRetryJitterFactor sets the jitter added as a share of the backoff delay, from 0.0 to 1.0.
func WithRetryJitterFactor(factor float64) Option {
	return func(s *Store) error {
		if factor < 0.0 || factor > 1.0 {
			return ErrInvalidJitterFactor
		}

		s.retry.jitterFactor = factor

		return nil
	}
}

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: appended and closed history entries, migrations (production-safe)
// Warn level: transient failures that are retried, rollback failures
// Error level: failures that cause operation failures.
func WithLogger(logger ledger.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Store.
// It takes precedence over WithLogger, so log records carry trace correlation when tracing is enabled.
func WithContextualLogger(logger ledger.ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
// It receives statement and transaction durations, database errors, and transaction retries.
func WithMetrics(collector ledger.MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Store.
// Each public operation and each transaction attempt gets a span.
func WithTracing(collector ledger.TracingCollector) Option {
	return func(s *Store) error {
		s.tracingCollector = collector
		return nil
	}
}
