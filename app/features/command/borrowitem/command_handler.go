package borrowitem

import (
	"context"

	"github.com/AntonStoeckl/lending-ledger/ledger"
)

// Store defines what the CommandHandler needs from the storage engine.
type Store interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx ledger.Tx) error) error
}

// CommandHandler orchestrates Read -> Decide -> Write for one borrow.
type CommandHandler struct {
	store Store
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(store Store) CommandHandler {
	return CommandHandler{store: store}
}

// Handle borrows the item and returns the new open entry.
// Business rule violations are returned as the bare ledger sentinel errors.
func (h CommandHandler) Handle(ctx context.Context, command Command) (ledger.HistoryEntry, error) {
	var written ledger.HistoryEntry

	ctx = ledger.WithStrongConsistency(ctx)

	err := h.store.WithinTransaction(ctx, func(ctx context.Context, tx ledger.Tx) error {
		s, err := readState(ctx, tx, command)
		if err != nil {
			return err
		}

		result := Decide(s, command)
		if err = result.HasError(); err != nil {
			return err
		}

		if err = tx.AppendOpenEntry(ctx, result.Entry); err != nil {
			return err
		}

		written = result.Entry

		return nil
	})
	if err != nil {
		return ledger.HistoryEntry{}, err
	}

	return written, nil
}

func readState(ctx context.Context, tx ledger.Tx, command Command) (State, error) {
	var s State
	var err error

	if s.UserExists, err = tx.UserExists(ctx, command.UserID); err != nil {
		return State{}, err
	}

	if s.ItemExists, err = tx.LockItem(ctx, command.ItemID); err != nil {
		return State{}, err
	}

	if !s.ItemExists {
		return s, nil
	}

	entry, found, err := tx.OpenEntryForItem(ctx, command.ItemID)
	if err != nil {
		return State{}, err
	}

	if found {
		s.OpenEntry = &entry
	}

	return s, nil
}
