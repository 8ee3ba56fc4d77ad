package createitem

import (
	"context"

	"github.com/AntonStoeckl/lending-ledger/ledger"
)

// Store defines what the CommandHandler needs from the storage engine.
type Store interface {
	CreateItem(ctx context.Context, name string) (ledger.Item, error)
}

// CommandHandler registers items.
type CommandHandler struct {
	store Store
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(store Store) CommandHandler {
	return CommandHandler{store: store}
}

// Handle registers the item and returns it with its new ID.
func (h CommandHandler) Handle(ctx context.Context, command Command) (ledger.Item, error) {
	name, err := ledger.NormalizeName(command.Name)
	if err != nil {
		return ledger.Item{}, err
	}

	return h.store.CreateItem(ctx, name)
}
