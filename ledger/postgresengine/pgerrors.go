package postgresengine

import (
	"database/sql/driver"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/AntonStoeckl/lending-ledger/ledger"
)

// PostgreSQL error codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgCodeForeignKeyViolation  = "23503"
	pgCodeUniqueViolation      = "23505"
	pgCodeCheckViolation       = "23514"
	pgCodeSerializationFailure = "40001"
	pgCodeDeadlockDetected     = "40P01"
	pgCodeLockNotAvailable     = "55P03"
	pgCodeAdminShutdown        = "57P01"
	pgClassConnectionException = "08"
)

// pgError is the driver independent part of a PostgreSQL error.
type pgError struct {
	code       string
	constraint string
}

// pgErrorOf unwraps pgx and lib/pq errors.
func pgErrorOf(err error) (pgError, bool) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgError{code: pgxErr.Code, constraint: pgxErr.ConstraintName}, true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pgError{code: string(pqErr.Code), constraint: pqErr.Constraint}, true
	}

	return pgError{}, false
}

// isTransient reports whether running the whole atomic unit again may succeed.
// Context cancellation and deadlines are never transient.
func isTransient(err error) bool {
	if err == nil {
		return false
	}

	if pgErr, ok := pgErrorOf(err); ok {
		switch pgErr.code {
		case pgCodeSerializationFailure, pgCodeDeadlockDetected, pgCodeLockNotAvailable, pgCodeAdminShutdown:
			return true
		}

		return strings.HasPrefix(pgErr.code, pgClassConnectionException)
	}

	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	return pgconn.SafeToRetry(err)
}

func queryFailed(err error) error {
	if isTransient(err) {
		return errors.Join(ledger.ErrQueryingFailed, ledger.ErrTransientStorage, err)
	}

	return errors.Join(ledger.ErrQueryingFailed, err)
}

func transactionFailed(err error) error {
	if isTransient(err) {
		return errors.Join(ledger.ErrTransactionFailed, ledger.ErrTransientStorage, err)
	}

	return errors.Join(ledger.ErrTransactionFailed, err)
}

// writeFailed maps constraint violations of history writes to business outcomes.
func (s Store) writeFailed(err error) error {
	if pgErr, ok := pgErrorOf(err); ok {
		switch {
		case pgErr.code == pgCodeUniqueViolation && pgErr.constraint == s.constraintName(constraintSuffixOneOpen):
			return errors.Join(ledger.ErrAlreadyBorrowed, err)
		case pgErr.code == pgCodeForeignKeyViolation && pgErr.constraint == s.constraintName(constraintSuffixUserFK):
			return errors.Join(ledger.ErrUserNotFound, err)
		case pgErr.code == pgCodeForeignKeyViolation && pgErr.constraint == s.constraintName(constraintSuffixItemFK):
			return errors.Join(ledger.ErrItemNotFound, err)
		case pgErr.code == pgCodeCheckViolation:
			return errors.Join(ledger.ErrValidation, err)
		}
	}

	if isTransient(err) {
		return errors.Join(ledger.ErrWritingFailed, ledger.ErrTransientStorage, err)
	}

	return errors.Join(ledger.ErrWritingFailed, err)
}

// constraintName derives constraint and index names from the history table name.
func (s Store) constraintName(suffix string) string {
	return s.historyTableName + suffix
}

// commitFailed classifies a failed COMMIT. Only failures the server answered with a rollback,
// or that never left the client, are transient. Anything else may have been applied.
func commitFailed(err error) error {
	if commitNeverApplied(err) {
		return errors.Join(ledger.ErrTransactionFailed, ledger.ErrTransientStorage, err)
	}

	return errors.Join(ledger.ErrTransactionFailed, ledger.ErrCommitOutcomeUnknown, err)
}

func commitNeverApplied(err error) bool {
	if pgErr, ok := pgErrorOf(err); ok {
		return pgErr.code == pgCodeSerializationFailure || pgErr.code == pgCodeDeadlockDetected
	}

	return pgconn.SafeToRetry(err)
}
