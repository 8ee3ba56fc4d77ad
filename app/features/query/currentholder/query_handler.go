package currentholder

import (
	"context"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/lending-ledger/ledger"
)

// Store defines what the QueryHandler needs from the storage engine.
type Store interface {
	CurrentHolder(ctx context.Context, itemID uuid.UUID) (ledger.Availability, error)
}

// QueryHandler resolves the availability of an item.
type QueryHandler struct {
	store Store
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(store Store) QueryHandler {
	return QueryHandler{store: store}
}

// Handle returns the item's availability or ledger.ErrItemNotFound.
func (h QueryHandler) Handle(ctx context.Context, query Query) (ledger.Availability, error) {
	return h.store.CurrentHolder(ledger.WithEventualConsistency(ctx), query.ItemID)
}
