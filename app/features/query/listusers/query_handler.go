package listusers

import (
	"context"

	"github.com/AntonStoeckl/lending-ledger/ledger"
)

// Store defines what the QueryHandler needs from the storage engine.
type Store interface {
	ListUsers(ctx context.Context) ([]ledger.User, error)
}

// QueryHandler lists users.
type QueryHandler struct {
	store Store
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(store Store) QueryHandler {
	return QueryHandler{store: store}
}

// Handle returns all users. It reads with eventual consistency and may be served by a replica.
func (h QueryHandler) Handle(ctx context.Context, _ Query) (Users, error) {
	ctx = ledger.WithEventualConsistency(ctx)

	users, err := h.store.ListUsers(ctx)
	if err != nil {
		return Users{}, err
	}

	return Users{Users: users, Count: len(users)}, nil
}
