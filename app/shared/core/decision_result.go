package core

import (
	"github.com/AntonStoeckl/lending-ledger/ledger"
)

// Outcome tells a command handler what to do with a decision.
type Outcome string

const (
	// OutcomeAppendOpenEntry means a new open history entry must be written.
	OutcomeAppendOpenEntry Outcome = "append_open_entry"

	// OutcomeCloseEntry means an open history entry must be closed.
	OutcomeCloseEntry Outcome = "close_entry"

	// OutcomeRejected means the command violates a business rule and nothing is written.
	OutcomeRejected Outcome = "rejected"
)

// DecisionResult is what a pure Decide function returns.
type DecisionResult struct {
	Outcome Outcome
	Entry   ledger.HistoryEntry
	Err     error
}

// OpenEntryDecision creates a DecisionResult that appends entry.
func OpenEntryDecision(entry ledger.HistoryEntry) DecisionResult {
	return DecisionResult{Outcome: OutcomeAppendOpenEntry, Entry: entry}
}

// CloseEntryDecision creates a DecisionResult that closes entry.
// The entry must already carry ReturnedAt and Score.
func CloseEntryDecision(entry ledger.HistoryEntry) DecisionResult {
	return DecisionResult{Outcome: OutcomeCloseEntry, Entry: entry}
}

// ErrorDecision creates a DecisionResult that rejects the command with err.
func ErrorDecision(err error) DecisionResult {
	return DecisionResult{Outcome: OutcomeRejected, Err: err}
}

// HasError returns the rejection reason, or nil.
func (r DecisionResult) HasError() error {
	return r.Err
}

// HasEntryToWrite reports whether the decision results in a write.
func (r DecisionResult) HasEntryToWrite() bool {
	return r.Err == nil && (r.Outcome == OutcomeAppendOpenEntry || r.Outcome == OutcomeCloseEntry)
}
