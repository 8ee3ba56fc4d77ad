package ledger

import (
	"time"

	"github.com/google/uuid"
)

// AvailabilityState is the loan state of an item.
type AvailabilityState int

const (
	// Available means no open HistoryEntry references the item.
	Available AvailabilityState = iota

	// Borrowed means exactly one open HistoryEntry references the item.
	Borrowed
)

// Availability is derived from the history log, never stored.
// The zero value is Available.
type Availability struct {
	state  AvailabilityState
	holder uuid.UUID
	since  time.Time
}

// AvailableNow builds the Available variant.
func AvailableNow() Availability {
	return Availability{state: Available}
}

// BorrowedBy builds the Borrowed variant.
func BorrowedBy(holder uuid.UUID, since time.Time) Availability {
	return Availability{state: Borrowed, holder: holder, since: since}
}

// AvailabilityFrom derives the Availability from the open entry of an item, if one was found.
func AvailabilityFrom(openEntry HistoryEntry, found bool) Availability {
	if !found || !openEntry.IsOpen() {
		return AvailableNow()
	}

	return BorrowedBy(openEntry.UserID, openEntry.BorrowedAt)
}

// State returns the variant.
func (a Availability) State() AvailabilityState {
	return a.state
}

// IsAvailable reports whether the item can be borrowed.
func (a Availability) IsAvailable() bool {
	return a.state == Available
}

// Holder returns the user holding the item, ok is false when it is Available.
func (a Availability) Holder() (holder uuid.UUID, ok bool) {
	if a.state != Borrowed {
		return uuid.Nil, false
	}

	return a.holder, true
}

// Since returns when the current loan started, ok is false when the item is Available.
func (a Availability) Since() (since time.Time, ok bool) {
	if a.state != Borrowed {
		return time.Time{}, false
	}

	return a.since, true
}

// String provides a string representation of AvailabilityState for logging and debugging.
func (s AvailabilityState) String() string {
	switch s {
	case Available:
		return "available"
	case Borrowed:
		return "borrowed"
	default:
		return "unknown"
	}
}
