package ledger

import (
	"errors"
	"fmt"
)

// Business outcomes. Callers map these to user-visible statuses with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrUserNotFound      = fmt.Errorf("user %w", ErrNotFound)
	ErrItemNotFound      = fmt.Errorf("item %w", ErrNotFound)
	ErrAlreadyBorrowed   = errors.New("item is already borrowed")
	ErrNotBorrowedByUser = errors.New("item is not borrowed by this user")
	ErrValidation        = errors.New("validation failed")
	ErrEmptyName         = fmt.Errorf("%w: name must not be empty", ErrValidation)
	ErrScoreMissing      = fmt.Errorf("%w: score is required", ErrValidation)
	ErrScoreOutOfRange   = fmt.Errorf("%w: score must be between %d and %d", ErrValidation, MinScore, MaxScore)
)

// Storage and infrastructure failures.
var (
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")
	ErrEmptyTableName        = errors.New("empty table name supplied")
	ErrBuildingQueryFailed   = errors.New("building query failed")
	ErrQueryingFailed        = errors.New("querying failed")
	ErrScanningDBRowFailed   = errors.New("scanning db row failed")
	ErrWritingFailed         = errors.New("writing failed")
	ErrTransactionFailed     = errors.New("transaction failed")

	// ErrCommitOutcomeUnknown marks a COMMIT whose result never reached the client, e.g. because the
	// connection broke after the statement was sent. The unit may or may not have been applied,
	// so it is never run again automatically.
	ErrCommitOutcomeUnknown = errors.New("commit outcome unknown")

	// ErrTransientStorage marks failures that may succeed when the whole atomic unit is run again,
	// e.g. serialization failures, deadlocks, lock timeouts, or a lost connection.
	ErrTransientStorage = errors.New("transient storage failure")
)

// IsBusinessError reports whether err is an expected, caller-recoverable outcome
// rather than an infrastructure failure.
func IsBusinessError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAlreadyBorrowed) ||
		errors.Is(err, ErrNotBorrowedByUser) ||
		errors.Is(err, ErrValidation)
}
