package postgresengine

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-ledger/ledger"
	"github.com/AntonStoeckl/lending-ledger/ledger/postgresengine/internal/adapters"
)

func retryTestStore(maxAttempts int) Store {
	return Store{retry: retryPolicy{maxAttempts: maxAttempts, baseDelay: time.Millisecond, jitterFactor: 0}}
}

func Test_retryTransient_When_TransientThenSuccess_Then_Retries(t *testing.T) {
	// arrange
	s := retryTestStore(4)
	attempts := 0

	// act
	err := s.retryTransient(t.Context(), "test", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.Join(ledger.ErrTransactionFailed, ledger.ErrTransientStorage)
		}

		return nil
	})

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func Test_retryTransient_When_AlwaysTransient_Then_StopsAfterMaxAttempts(t *testing.T) {
	// arrange
	s := retryTestStore(3)
	attempts := 0

	// act
	err := s.retryTransient(t.Context(), "test", func(context.Context) error {
		attempts++
		return ledger.ErrTransientStorage
	})

	// assert
	assert.ErrorIs(t, err, ledger.ErrTransientStorage)
	assert.Equal(t, 3, attempts)
}

func Test_retryTransient_When_BusinessError_Then_FailsFast(t *testing.T) {
	for _, businessErr := range []error{ledger.ErrAlreadyBorrowed, ledger.ErrNotBorrowedByUser, ledger.ErrUserNotFound} {
		// arrange
		s := retryTestStore(5)
		attempts := 0

		// act
		err := s.retryTransient(t.Context(), "test", func(context.Context) error {
			attempts++
			return businessErr
		})

		// assert
		assert.ErrorIs(t, err, businessErr)
		assert.Equal(t, 1, attempts)
	}
}

func Test_retryTransient_When_ContextCanceledDuringBackoff_Then_ReturnsContextError(t *testing.T) {
	// arrange
	s := Store{retry: retryPolicy{maxAttempts: 5, baseDelay: time.Hour}}
	ctx, cancel := context.WithCancel(t.Context())
	attempts := 0

	// act
	err := s.retryTransient(ctx, "test", func(context.Context) error {
		attempts++
		cancel()

		return ledger.ErrTransientStorage
	})

	// assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func Test_retryPolicy_backoff_GrowsExponentially(t *testing.T) {
	p := retryPolicy{baseDelay: 10 * time.Millisecond, jitterFactor: 0}

	assert.Equal(t, 10*time.Millisecond, p.backoff(1))
	assert.Equal(t, 20*time.Millisecond, p.backoff(2))
	assert.Equal(t, 40*time.Millisecond, p.backoff(3))

	jittered := retryPolicy{baseDelay: 10 * time.Millisecond, jitterFactor: 0.5}.backoff(1)
	assert.GreaterOrEqual(t, jittered, 10*time.Millisecond)
	assert.LessOrEqual(t, jittered, 15*time.Millisecond)
}

// commitFailingDB hands out transactions whose Commit fails with the queued errors, then succeeds.
type commitFailingDB struct {
	commitErrs []error
	commits    int
}

func (d *commitFailingDB) Query(context.Context, string) (adapters.DBRows, error) {
	return nil, errors.New("not supported")
}

func (d *commitFailingDB) Exec(context.Context, string) (adapters.DBResult, error) {
	return fakeResult(0), nil
}

func (d *commitFailingDB) BeginTx(context.Context) (adapters.DBTx, error) {
	return &commitFailingTx{db: d}, nil
}

type commitFailingTx struct {
	db *commitFailingDB
}

func (t *commitFailingTx) Query(ctx context.Context, query string) (adapters.DBRows, error) {
	return t.db.Query(ctx, query)
}

func (t *commitFailingTx) Exec(ctx context.Context, query string) (adapters.DBResult, error) {
	return t.db.Exec(ctx, query)
}

func (t *commitFailingTx) Commit(context.Context) error {
	t.db.commits++
	if t.db.commits <= len(t.db.commitErrs) {
		return t.db.commitErrs[t.db.commits-1]
	}

	return nil
}

func (t *commitFailingTx) Rollback(context.Context) error {
	return nil
}

type fakeResult int64

func (r fakeResult) RowsAffected() (int64, error) {
	return int64(r), nil
}

func commitTestStore(db adapters.DBAdapter) Store {
	return Store{
		db:          db,
		txTimeout:   time.Second,
		lockTimeout: time.Second,
		retry:       retryPolicy{maxAttempts: 4, baseDelay: time.Millisecond},
	}
}

func Test_WithinTransaction_When_CommitConnectionLost_Then_RunsOnceAndReportsUnknownOutcome(t *testing.T) {
	// arrange
	db := &commitFailingDB{commitErrs: []error{driver.ErrBadConn}}
	s := commitTestStore(db)
	attempts := 0

	// act
	err := s.WithinTransaction(t.Context(), func(context.Context, ledger.Tx) error {
		attempts++
		return nil
	})

	// assert
	require.Error(t, err)
	assert.Equal(t, 1, attempts, "a commit that may have been applied must not run again")
	assert.ErrorIs(t, err, ledger.ErrTransactionFailed)
	assert.ErrorIs(t, err, ledger.ErrCommitOutcomeUnknown)
	assert.NotErrorIs(t, err, ledger.ErrTransientStorage)
	assert.False(t, ledger.IsBusinessError(err))
}

func Test_WithinTransaction_When_CommitAnsweredWithShutdown_Then_RunsOnce(t *testing.T) {
	// arrange
	db := &commitFailingDB{commitErrs: []error{&pgconn.PgError{Code: pgCodeAdminShutdown}}}
	s := commitTestStore(db)
	attempts := 0

	// act
	err := s.WithinTransaction(t.Context(), func(context.Context, ledger.Tx) error {
		attempts++
		return nil
	})

	// assert
	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, ledger.ErrCommitOutcomeUnknown)
}

func Test_WithinTransaction_When_CommitRolledBackBySerializationFailure_Then_Retries(t *testing.T) {
	// arrange
	db := &commitFailingDB{commitErrs: []error{&pgconn.PgError{Code: pgCodeSerializationFailure}}}
	s := commitTestStore(db)
	attempts := 0

	// act
	err := s.WithinTransaction(t.Context(), func(context.Context, ledger.Tx) error {
		attempts++
		return nil
	})

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 2, db.commits)
}
