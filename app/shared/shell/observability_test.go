package shell_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/lending-ledger/app/shared/shell"
	"github.com/AntonStoeckl/lending-ledger/ledger"
)

func Test_ClassifyOutcome(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: shell.StatusSuccess},
		{name: "user not found", err: ledger.ErrUserNotFound, want: shell.StatusRejected},
		{name: "already borrowed", err: ledger.ErrAlreadyBorrowed, want: shell.StatusRejected},
		{name: "not borrowed by user", err: fmt.Errorf("return: %w", ledger.ErrNotBorrowedByUser), want: shell.StatusRejected},
		{name: "validation", err: ledger.ErrScoreOutOfRange, want: shell.StatusRejected},
		{name: "canceled", err: errors.Join(ledger.ErrTransactionFailed, context.Canceled), want: shell.StatusCanceled},
		{name: "deadline", err: context.DeadlineExceeded, want: shell.StatusTimeout},
		{name: "infrastructure", err: errors.Join(ledger.ErrWritingFailed, errors.New("disk full")), want: shell.StatusError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, shell.ClassifyOutcome(tc.err))
		})
	}
}
