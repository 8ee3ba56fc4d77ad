package returnitem

import (
	"github.com/AntonStoeckl/lending-ledger/app/shared/core"
	"github.com/AntonStoeckl/lending-ledger/ledger"
)

// State is what the handler read inside the transaction, after locking the item.
// OpenEntry is the most recent open entry of the exact (user, item) pair.
type State struct {
	UserExists bool
	ItemExists bool
	OpenEntry  *ledger.HistoryEntry
}

// Decide implements the business logic to determine whether an item can be returned.
//
// Business Rules:
//
//	GIVEN: a user with UserID holding an item with ItemID
//	WHEN: ReturnItem command is received with a score
//	THEN: the user's open entry is closed with the return time and the score
//	ERROR: ledger.ErrScoreMissing if no score was supplied
//	ERROR: ledger.ErrUserNotFound if the user is not registered
//	ERROR: ledger.ErrItemNotFound if the item is not registered
//	ERROR: ledger.ErrNotBorrowedByUser if this user has no open entry for the item
//
// The score range is validated where the request is parsed.
func Decide(s State, command Command) core.DecisionResult {
	if command.Score == nil {
		return core.ErrorDecision(ledger.ErrScoreMissing)
	}

	if !s.UserExists {
		return core.ErrorDecision(ledger.ErrUserNotFound)
	}

	if !s.ItemExists {
		return core.ErrorDecision(ledger.ErrItemNotFound)
	}

	if s.OpenEntry == nil {
		return core.ErrorDecision(ledger.ErrNotBorrowedByUser)
	}

	return core.CloseEntryDecision(s.OpenEntry.Close(command.OccurredAt, *command.Score))
}
