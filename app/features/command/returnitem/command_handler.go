package returnitem

import (
	"context"

	"github.com/AntonStoeckl/lending-ledger/ledger"
)

// Store defines what the CommandHandler needs from the storage engine.
type Store interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx ledger.Tx) error) error
}

// CommandHandler orchestrates Read -> Decide -> Write for one return.
type CommandHandler struct {
	store Store
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(store Store) CommandHandler {
	return CommandHandler{store: store}
}

// Handle closes the user's open entry for the item and returns the closed entry.
func (h CommandHandler) Handle(ctx context.Context, command Command) (ledger.HistoryEntry, error) {
	if command.Score == nil {
		return ledger.HistoryEntry{}, ledger.ErrScoreMissing
	}

	var closed ledger.HistoryEntry

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

		if err = tx.CloseEntry(ctx, result.Entry); err != nil {
			return err
		}

		closed = result.Entry

		return nil
	})
	if err != nil {
		return ledger.HistoryEntry{}, err
	}

	return closed, nil
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

	if !s.UserExists || !s.ItemExists {
		return s, nil
	}

	entry, found, err := tx.OpenEntryForUserAndItem(ctx, command.UserID, command.ItemID)
	if err != nil {
		return State{}, err
	}

	if found {
		s.OpenEntry = &entry
	}

	return s, nil
}
