package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Score bounds, inclusive.
const (
	MinScore = 0
	MaxScore = 10
)

// User is a registered borrower.
type User struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Item is a lendable item. It carries identity only, see Availability for its loan state.
type Item struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// HistoryEntry records one loan. It is open while ReturnedAt is nil.
// ReturnedAt and Score are either both set or both nil.
type HistoryEntry struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	ItemID     uuid.UUID
	BorrowedAt time.Time
	ReturnedAt *time.Time
	Score      *float64
}

// PastLoan is a closed loan of a user, joined with the item's name.
type PastLoan struct {
	ItemID     uuid.UUID
	ItemName   string
	Score      float64
	BorrowedAt time.Time
	ReturnedAt time.Time
}

// CurrentLoan is an open loan of a user, joined with the item's name.
type CurrentLoan struct {
	ItemID     uuid.UUID
	ItemName   string
	BorrowedAt time.Time
}

// NewOpenEntry builds the HistoryEntry a successful Borrow appends.
func NewOpenEntry(entryID, userID, itemID uuid.UUID, borrowedAt time.Time) HistoryEntry {
	return HistoryEntry{
		ID:         entryID,
		UserID:     userID,
		ItemID:     itemID,
		BorrowedAt: borrowedAt,
	}
}

// IsOpen reports whether the loan has not been returned yet.
func (e HistoryEntry) IsOpen() bool {
	return e.ReturnedAt == nil
}

// Close returns a closed copy of the entry. The receiver is left untouched.
func (e HistoryEntry) Close(returnedAt time.Time, score float64) HistoryEntry {
	e.ReturnedAt = &returnedAt
	e.Score = &score

	return e
}

// NormalizeName trims surrounding whitespace and rejects names that are empty afterward.
func NormalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrEmptyName
	}

	return trimmed, nil
}

// ValidateScore rejects scores outside [MinScore, MaxScore] and NaN.
func ValidateScore(score float64) error {
	if !(score >= MinScore && score <= MaxScore) {
		return ErrScoreOutOfRange
	}

	return nil
}
