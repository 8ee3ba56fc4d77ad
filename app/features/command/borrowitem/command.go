package borrowitem

import (
	"time"

	"github.com/google/uuid"
)

const (
	commandType = "BorrowItem"
)

// Command represents the intent of a user to borrow an item.
type Command struct {
	EntryID    uuid.UUID
	UserID     uuid.UUID
	ItemID     uuid.UUID
	OccurredAt time.Time
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command. OccurredAt is kept at the storage's microsecond precision.
// entryID becomes the ID of the history entry on success.
func BuildCommand(entryID, userID, itemID uuid.UUID, occurredAt time.Time) Command {
	return Command{
		EntryID:    entryID,
		UserID:     userID,
		ItemID:     itemID,
		OccurredAt: occurredAt.UTC().Truncate(time.Microsecond),
	}
}
