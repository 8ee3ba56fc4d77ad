package borrowitem_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-ledger/app/features/command/borrowitem"
	"github.com/AntonStoeckl/lending-ledger/ledger"
	. "github.com/AntonStoeckl/lending-ledger/testutil/ledgertest" //nolint:revive
)

func Test_CommandHandler_Handle_When_ItemIsAvailable_Then_ItemBecomesBorrowed(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	store := wrapper.Store()
	handler := borrowitem.NewCommandHandler(store)

	// arrange
	alice := GivenUser(t, store, "alice")
	dune := GivenItem(t, store, "Dune")
	now := time.Now().UTC().Truncate(time.Microsecond)

	// act
	entry, err := handler.Handle(t.Context(), borrowitem.BuildCommand(GivenUniqueID(t), alice.ID, dune.ID, now))

	// assert
	require.NoError(t, err)
	assert.Equal(t, alice.ID, entry.UserID)
	assert.True(t, entry.IsOpen())

	availability, err := store.CurrentHolder(t.Context(), dune.ID)
	require.NoError(t, err)
	holder, borrowed := availability.Holder()
	assert.True(t, borrowed)
	assert.Equal(t, alice.ID, holder)
	since, _ := availability.Since()
	assert.True(t, now.Equal(since), "holder since must be the borrow time")
	assert.Equal(t, 1, CountOpenEntries(t, wrapper, dune.ID))
}

func Test_CommandHandler_Handle_When_ItemIsBorrowed_Then_AlreadyBorrowed(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	store := wrapper.Store()
	handler := borrowitem.NewCommandHandler(store)

	// arrange
	alice := GivenUser(t, store, "alice")
	bob := GivenUser(t, store, "bob")
	dune := GivenItem(t, store, "Dune")
	GivenOpenEntry(t, store, alice.ID, dune.ID, time.Now().Add(-time.Minute))

	// act
	_, errBob := handler.Handle(t.Context(), borrowitem.BuildCommand(GivenUniqueID(t), bob.ID, dune.ID, time.Now()))
	_, errAlice := handler.Handle(t.Context(), borrowitem.BuildCommand(GivenUniqueID(t), alice.ID, dune.ID, time.Now()))

	// assert
	assert.ErrorIs(t, errBob, ledger.ErrAlreadyBorrowed)
	assert.ErrorIs(t, errAlice, ledger.ErrAlreadyBorrowed, "the holder cannot borrow the same item twice")
	assert.Equal(t, 1, CountOpenEntries(t, wrapper, dune.ID))
}

func Test_CommandHandler_Handle_When_UserOrItemIsUnknown_Then_NotFound(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	store := wrapper.Store()
	handler := borrowitem.NewCommandHandler(store)

	// arrange
	alice := GivenUser(t, store, "alice")
	dune := GivenItem(t, store, "Dune")

	// act
	_, errUser := handler.Handle(t.Context(), borrowitem.BuildCommand(GivenUniqueID(t), GivenUniqueID(t), dune.ID, time.Now()))
	_, errItem := handler.Handle(t.Context(), borrowitem.BuildCommand(GivenUniqueID(t), alice.ID, GivenUniqueID(t), time.Now()))

	// assert
	assert.ErrorIs(t, errUser, ledger.ErrUserNotFound)
	assert.ErrorIs(t, errItem, ledger.ErrItemNotFound)
	assert.ErrorIs(t, errItem, ledger.ErrNotFound)
	assert.Equal(t, 0, CountOpenEntries(t, wrapper, dune.ID))
}

func Test_CommandHandler_Handle_When_ManyUsersBorrowConcurrently_Then_ExactlyOneWins(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	store := wrapper.Store()
	handler := borrowitem.NewCommandHandler(store)

	// arrange
	const borrowers = 12

	item := GivenItem(t, store, "The Left Hand of Darkness")
	commands := make([]borrowitem.Command, borrowers)
	for i := range commands {
		user := GivenUser(t, store, "reader")
		commands[i] = borrowitem.BuildCommand(GivenUniqueID(t), user.ID, item.ID, time.Now())
	}

	ctx, cancel := context.WithTimeout(t.Context(), 30*time.Second)
	defer cancel()

	// act
	errs := make([]error, borrowers)
	start := make(chan struct{})

	var wg sync.WaitGroup
	for i, command := range commands {
		wg.Add(1)

		go func() {
			defer wg.Done()
			<-start
			_, errs[i] = handler.Handle(ctx, command)
		}()
	}

	close(start)
	wg.Wait()

	// assert
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}

		assert.ErrorIs(t, err, ledger.ErrAlreadyBorrowed)
	}

	assert.Equal(t, 1, succeeded, "exactly one concurrent borrow must win")
	assert.Equal(t, 1, CountOpenEntries(t, wrapper, item.ID))
}
