package listitems

import (
	"context"

	"github.com/AntonStoeckl/lending-ledger/ledger"
)

// Store defines what the QueryHandler needs from the storage engine.
type Store interface {
	ListItems(ctx context.Context) ([]ledger.Item, error)
}

// QueryHandler lists items.
type QueryHandler struct {
	store Store
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(store Store) QueryHandler {
	return QueryHandler{store: store}
}

// Handle returns all items. It reads with eventual consistency and may be served by a replica.
func (h QueryHandler) Handle(ctx context.Context, _ Query) (Items, error) {
	ctx = ledger.WithEventualConsistency(ctx)

	items, err := h.store.ListItems(ctx)
	if err != nil {
		return Items{}, err
	}

	return Items{Items: items, Count: len(items)}, nil
}
