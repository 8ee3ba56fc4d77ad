package simulation_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-ledger/app/features/command/borrowitem"
	"github.com/AntonStoeckl/lending-ledger/app/features/command/createitem"
	"github.com/AntonStoeckl/lending-ledger/app/features/command/createuser"
	"github.com/AntonStoeckl/lending-ledger/app/features/command/returnitem"
	"github.com/AntonStoeckl/lending-ledger/app/shared/shell"
	"github.com/AntonStoeckl/lending-ledger/app/simulation"
	"github.com/AntonStoeckl/lending-ledger/ledger"
)

// fakeLedger enforces the borrow and return rules in memory.
type fakeLedger struct {
	mu      sync.Mutex
	holders map[uuid.UUID]uuid.UUID
	scores  []float64
	failOn  int
	calls   int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{holders: map[uuid.UUID]uuid.UUID{}}
}

func (f *fakeLedger) handlers() simulation.Handlers {
	return simulation.Handlers{
		CreateUser: shell.CommandHandlerFunc[createuser.Command, ledger.User](
			func(_ context.Context, cmd createuser.Command) (ledger.User, error) {
				return ledger.User{ID: uuid.New(), Name: cmd.Name}, nil
			}),
		CreateItem: shell.CommandHandlerFunc[createitem.Command, ledger.Item](
			func(_ context.Context, cmd createitem.Command) (ledger.Item, error) {
				return ledger.Item{ID: uuid.New(), Name: cmd.Name}, nil
			}),
		BorrowItem: shell.CommandHandlerFunc[borrowitem.Command, ledger.HistoryEntry](
			func(_ context.Context, cmd borrowitem.Command) (ledger.HistoryEntry, error) {
				f.mu.Lock()
				defer f.mu.Unlock()

				f.calls++
				if f.failOn > 0 && f.calls%f.failOn == 0 {
					return ledger.HistoryEntry{}, errors.Join(ledger.ErrTransactionFailed, errors.New("boom"))
				}

				if _, held := f.holders[cmd.ItemID]; held {
					return ledger.HistoryEntry{}, ledger.ErrAlreadyBorrowed
				}

				f.holders[cmd.ItemID] = cmd.UserID

				return ledger.NewOpenEntry(cmd.EntryID, cmd.UserID, cmd.ItemID, cmd.OccurredAt), nil
			}),
		ReturnItem: shell.CommandHandlerFunc[returnitem.Command, ledger.HistoryEntry](
			func(_ context.Context, cmd returnitem.Command) (ledger.HistoryEntry, error) {
				f.mu.Lock()
				defer f.mu.Unlock()

				if holder, held := f.holders[cmd.ItemID]; !held || holder != cmd.UserID {
					return ledger.HistoryEntry{}, ledger.ErrNotBorrowedByUser
				}

				if err := ledger.ValidateScore(*cmd.Score); err != nil {
					return ledger.HistoryEntry{}, err
				}

				delete(f.holders, cmd.ItemID)
				f.scores = append(f.scores, *cmd.Score)

				return ledger.HistoryEntry{}, nil
			}),
	}
}

func (f *fakeLedger) openLoans() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.holders)
}

func Test_Run_When_NoMistakes_Then_CountersMatchLedger(t *testing.T) {
	// arrange
	fake := newFakeLedger()
	sim, err := simulation.New(fake.handlers())
	require.NoError(t, err)

	cfg := simulation.Config{Users: 5, Items: 10, Rounds: 500, Workers: 4, MistakeRatio: 0, Seed: 42}

	// act
	report, err := sim.Run(context.Background(), cfg)

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(500), report.Borrowed+report.Returned+report.Rejected+report.Failed)
	assert.Equal(t, int(report.Borrowed-report.Returned), fake.openLoans())
	assert.Equal(t, fake.openLoans(), report.LentOut)
	assert.Zero(t, report.Failed)
	assert.Len(t, fake.scores, int(report.Returned))

	for _, score := range fake.scores {
		assert.NoError(t, ledger.ValidateScore(score))
	}
}

func Test_Run_When_OnlyMistakes_Then_EverythingIsRejected(t *testing.T) {
	// arrange
	fake := newFakeLedger()
	sim, err := simulation.New(fake.handlers())
	require.NoError(t, err)

	cfg := simulation.Config{Users: 3, Items: 4, Rounds: 100, Workers: 2, MistakeRatio: 1, Seed: 7}

	// act
	report, err := sim.Run(context.Background(), cfg)

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(100), report.Rejected)
	assert.Zero(t, report.Borrowed)
	assert.Zero(t, fake.openLoans())
}

func Test_Run_When_StorageFails_Then_FailuresAreCountedNotReturned(t *testing.T) {
	// arrange
	fake := newFakeLedger()
	fake.failOn = 3
	sim, err := simulation.New(fake.handlers())
	require.NoError(t, err)

	cfg := simulation.Config{Users: 4, Items: 50, Rounds: 60, Workers: 1, MistakeRatio: 0, Seed: 3}

	// act
	report, err := sim.Run(context.Background(), cfg)

	// assert
	require.NoError(t, err)
	assert.Positive(t, report.Failed)
	assert.Equal(t, int(report.Borrowed-report.Returned), fake.openLoans())
}

func Test_Run_When_ContextCanceled_Then_ReturnsContextError(t *testing.T) {
	// arrange
	fake := newFakeLedger()
	sim, err := simulation.New(fake.handlers())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// act
	_, err = sim.Run(ctx, simulation.DefaultConfig())

	// assert
	assert.ErrorIs(t, err, context.Canceled)
}

func Test_Config_Validate_When_Unusable_Then_ReturnsError(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*simulation.Config)
	}{
		{name: "single user", mutate: func(c *simulation.Config) { c.Users = 1 }},
		{name: "no items", mutate: func(c *simulation.Config) { c.Items = 0 }},
		{name: "no workers", mutate: func(c *simulation.Config) { c.Workers = 0 }},
		{name: "negative rounds", mutate: func(c *simulation.Config) { c.Rounds = -1 }},
		{name: "mistake ratio above one", mutate: func(c *simulation.Config) { c.MistakeRatio = 1.5 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			cfg := simulation.DefaultConfig()
			tc.mutate(&cfg)

			// act
			err := cfg.Validate()

			// assert
			assert.ErrorIs(t, err, simulation.ErrInvalidConfig)
		})
	}
}

func Test_New_When_HandlerMissing_Then_ReturnsError(t *testing.T) {
	// arrange
	handlers := newFakeLedger().handlers()
	handlers.BorrowItem = nil

	// act
	_, err := simulation.New(handlers)

	// assert
	assert.ErrorIs(t, err, simulation.ErrMissingHandler)
}
