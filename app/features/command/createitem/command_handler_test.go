package createitem_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-ledger/app/features/command/createitem"
	"github.com/AntonStoeckl/lending-ledger/ledger"
)

type storeStub struct {
	names []string
}

func (s *storeStub) CreateItem(_ context.Context, name string) (ledger.Item, error) {
	s.names = append(s.names, name)
	return ledger.Item{ID: uuid.New(), Name: name}, nil
}

func Test_CommandHandler_Handle_When_NameIsValid_Then_StoreReceivesTrimmedName(t *testing.T) {
	// arrange
	store := &storeStub{}
	handler := createitem.NewCommandHandler(store)
	command, err := createitem.BuildCommand(" Dune ")
	require.NoError(t, err)

	// act
	item, err := handler.Handle(t.Context(), command)

	// assert
	require.NoError(t, err)
	assert.Equal(t, "Dune", item.Name)
	assert.Equal(t, []string{"Dune"}, store.names)
}

func Test_CommandHandler_Handle_When_NameIsBlank_Then_StoreIsNotCalled(t *testing.T) {
	// arrange
	store := &storeStub{}
	handler := createitem.NewCommandHandler(store)

	// act
	_, err := handler.Handle(t.Context(), createitem.Command{Name: "\t"})

	// assert
	assert.ErrorIs(t, err, ledger.ErrValidation)
	assert.Empty(t, store.names)
}
