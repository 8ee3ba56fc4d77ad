package ledger

import (
	"context"

	"github.com/google/uuid"
)

// Tx is the atomic unit a Borrow or Return transition runs in.
//
// Implementations guarantee that, once LockItem returned for an item, no other Tx can
// append or close an entry for that item until this one commits or rolls back.
// Writes fail with ErrAlreadyBorrowed or ErrNotBorrowedByUser when a concurrent unit
// changed the item's loan state, so a decision taken on stale reads can never commit.
type Tx interface {
	// UserExists reports whether the user is registered.
	UserExists(ctx context.Context, userID uuid.UUID) (bool, error)

	// LockItem locks the item row until the end of the unit and reports whether it exists.
	LockItem(ctx context.Context, itemID uuid.UUID) (bool, error)

	// OpenEntryForItem returns the open entry of the item, if any.
	OpenEntryForItem(ctx context.Context, itemID uuid.UUID) (HistoryEntry, bool, error)

	// OpenEntryForUserAndItem returns the most recent open entry of the exact (user, item) pair, if any.
	OpenEntryForUserAndItem(ctx context.Context, userID, itemID uuid.UUID) (HistoryEntry, bool, error)

	// AppendOpenEntry inserts a new open entry.
	AppendOpenEntry(ctx context.Context, entry HistoryEntry) error

	// CloseEntry sets ReturnedAt and Score on an entry that is still open.
	CloseEntry(ctx context.Context, entry HistoryEntry) error
}
