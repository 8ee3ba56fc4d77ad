package userdetail

import (
	"context"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/lending-ledger/ledger"
)

// Store defines what the QueryHandler needs from the storage engine.
type Store interface {
	GetUser(ctx context.Context, userID uuid.UUID) (ledger.User, error)
	PastLoans(ctx context.Context, userID uuid.UUID) ([]ledger.PastLoan, error)
	CurrentLoans(ctx context.Context, userID uuid.UUID) ([]ledger.CurrentLoan, error)
}

// QueryHandler assembles a UserDetail.
type QueryHandler struct {
	store Store
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(store Store) QueryHandler {
	return QueryHandler{store: store}
}

// Handle returns the user's detail or ledger.ErrUserNotFound.
func (h QueryHandler) Handle(ctx context.Context, query Query) (UserDetail, error) {
	ctx = ledger.WithEventualConsistency(ctx)

	user, err := h.store.GetUser(ctx, query.UserID)
	if err != nil {
		return UserDetail{}, err
	}

	past, err := h.store.PastLoans(ctx, query.UserID)
	if err != nil {
		return UserDetail{}, err
	}

	current, err := h.store.CurrentLoans(ctx, query.UserID)
	if err != nil {
		return UserDetail{}, err
	}

	return UserDetail{User: user, PastLoans: past, CurrentLoans: current}, nil
}
