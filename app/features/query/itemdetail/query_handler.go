package itemdetail

import (
	"context"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/lending-ledger/ledger"
)

// Store defines what the QueryHandler needs from the storage engine.
type Store interface {
	GetItem(ctx context.Context, itemID uuid.UUID) (ledger.Item, error)
	AverageScore(ctx context.Context, itemID uuid.UUID) (ledger.Rating, error)
}

// QueryHandler assembles an ItemDetail.
type QueryHandler struct {
	store Store
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(store Store) QueryHandler {
	return QueryHandler{store: store}
}

// Handle returns the item's detail or ledger.ErrItemNotFound.
func (h QueryHandler) Handle(ctx context.Context, query Query) (ItemDetail, error) {
	ctx = ledger.WithEventualConsistency(ctx)

	item, err := h.store.GetItem(ctx, query.ItemID)
	if err != nil {
		return ItemDetail{}, err
	}

	rating, err := h.store.AverageScore(ctx, query.ItemID)
	if err != nil {
		return ItemDetail{}, err
	}

	return ItemDetail{Item: item, Rating: rating}, nil
}
