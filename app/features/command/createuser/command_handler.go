package createuser

import (
	"context"

	"github.com/AntonStoeckl/lending-ledger/ledger"
)

// Store defines what the CommandHandler needs from the storage engine.
type Store interface {
	CreateUser(ctx context.Context, name string) (ledger.User, error)
}

// CommandHandler registers users.
type CommandHandler struct {
	store Store
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(store Store) CommandHandler {
	return CommandHandler{store: store}
}

// Handle registers the user and returns it with its new ID.
func (h CommandHandler) Handle(ctx context.Context, command Command) (ledger.User, error) {
	name, err := ledger.NormalizeName(command.Name)
	if err != nil {
		return ledger.User{}, err
	}

	return h.store.CreateUser(ctx, name)
}
