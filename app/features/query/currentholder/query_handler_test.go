package currentholder_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-ledger/app/features/query/currentholder"
	"github.com/AntonStoeckl/lending-ledger/ledger"
	. "github.com/AntonStoeckl/lending-ledger/testutil/ledgertest" //nolint:revive
)

func Test_QueryHandler_Handle_FollowsTheLoanLifecycle(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	store := wrapper.Store()
	handler := currentholder.NewQueryHandler(store)

	// arrange
	alice := GivenUser(t, store, "alice")
	item := GivenItem(t, store, "Kindred")

	// act + assert
	before, err := handler.Handle(t.Context(), currentholder.BuildQuery(item.ID))
	require.NoError(t, err)
	assert.Equal(t, ledger.Available, before.State())

	GivenOpenEntry(t, store, alice.ID, item.ID, time.Now().Add(-time.Minute))

	during, err := handler.Handle(t.Context(), currentholder.BuildQuery(item.ID))
	require.NoError(t, err)
	holder, ok := during.Holder()
	assert.True(t, ok)
	assert.Equal(t, alice.ID, holder)

	_, err = handler.Handle(t.Context(), currentholder.BuildQuery(GivenUniqueID(t)))
	assert.ErrorIs(t, err, ledger.ErrItemNotFound)
}
