// Package ledger provides the core domain types and contracts of the lending ledger.
//
// The lending ledger tracks which user currently holds which item, keeps an
// append-only history of every loan, and derives an item's rating from the
// scores given when loans were closed.
//
// Availability is never stored. An item is Borrowed iff exactly one open
// HistoryEntry references it, and Available otherwise:
//
//	availability := ledger.AvailabilityFrom(openEntry, found)
//	if holder, ok := availability.Holder(); ok {
//		// holder is the user of the open entry
//	}
//
// Storage engines (see package postgresengine) implement Tx, the atomic unit in
// which Borrow and Return transitions are decided and written, and expose the
// read-side queries used by the Rating Aggregator and the detail views.
//
// Key types:
//   - User, Item: identity records
//   - HistoryEntry: one loan, open while ReturnedAt is nil
//   - Availability: Available | Borrowed{Holder, Since}
//   - Rating: the result of AverageScore, with an explicit "no ratings" state
//
// All business failures are sentinel errors (ErrUserNotFound, ErrItemNotFound,
// ErrAlreadyBorrowed, ErrNotBorrowedByUser, ErrValidation) which callers
// inspect with errors.Is.
package ledger
