package borrowitem

import (
	"github.com/AntonStoeckl/lending-ledger/app/shared/core"
	"github.com/AntonStoeckl/lending-ledger/ledger"
)

// State is what the handler read inside the transaction, after locking the item.
type State struct {
	UserExists bool
	ItemExists bool
	OpenEntry  *ledger.HistoryEntry
}

// Decide implements the business logic to determine whether an item can be borrowed.
//
// Business Rules:
//
//	GIVEN: a user with UserID and an item with ItemID
//	WHEN: BorrowItem command is received
//	THEN: a new open history entry is written
//	ERROR: ledger.ErrUserNotFound if the user is not registered
//	ERROR: ledger.ErrItemNotFound if the item is not registered
//	ERROR: ledger.ErrAlreadyBorrowed if the item has an open entry, even one of this user
func Decide(s State, command Command) core.DecisionResult {
	if !s.UserExists {
		return core.ErrorDecision(ledger.ErrUserNotFound)
	}

	if !s.ItemExists {
		return core.ErrorDecision(ledger.ErrItemNotFound)
	}

	if s.OpenEntry != nil {
		return core.ErrorDecision(ledger.ErrAlreadyBorrowed)
	}

	return core.OpenEntryDecision(
		ledger.NewOpenEntry(command.EntryID, command.UserID, command.ItemID, command.OccurredAt),
	)
}
