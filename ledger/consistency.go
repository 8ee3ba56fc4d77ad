package ledger

import "context"

// ConsistencyLevel selects which database a read may be served from.
type ConsistencyLevel int

const (
	// StrongConsistency reads from the primary. Transactions always run on the primary,
	// whatever the context says.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency allows reads from a replica if one is configured.
	// Detail and list views use it; the Borrow and Return units never do.
	EventualConsistency
)

type contextKey string

// ConsistencyLevelKey is the context key used to store consistency level preferences.
const ConsistencyLevelKey contextKey = "ledger.consistency_level"

// WithStrongConsistency returns a context that pins reads to the primary database.
//
// Example usage:
//
//	ctx = ledger.WithStrongConsistency(ctx)
//	availability, err := store.CurrentHolder(ctx, itemID)
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, StrongConsistency)
}

// WithEventualConsistency returns a context that lets reads go to a replica.
//
// Example usage:
//
//	ctx = ledger.WithEventualConsistency(ctx)
//	users, err := store.ListUsers(ctx)
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, EventualConsistency)
}

// GetConsistencyLevel extracts the consistency level from the context.
// Without an explicit level it returns StrongConsistency.
func GetConsistencyLevel(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(ConsistencyLevelKey).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}

// String provides a string representation of ConsistencyLevel for logging and debugging.
func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}
