package returnitem

import (
	"time"

	"github.com/google/uuid"
)

const (
	commandType = "ReturnItem"
)

// Command represents the intent of a user to return an item and rate it.
// Score is nil when the caller did not supply one.
type Command struct {
	UserID     uuid.UUID
	ItemID     uuid.UUID
	Score      *float64
	OccurredAt time.Time
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command. OccurredAt is kept at the storage's microsecond precision.
func BuildCommand(userID, itemID uuid.UUID, score *float64, occurredAt time.Time) Command {
	return Command{
		UserID:     userID,
		ItemID:     itemID,
		Score:      score,
		OccurredAt: occurredAt.UTC().Truncate(time.Microsecond),
	}
}
