package itemdetail_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-ledger/app/features/query/itemdetail"
	"github.com/AntonStoeckl/lending-ledger/ledger"
	. "github.com/AntonStoeckl/lending-ledger/testutil/ledgertest" //nolint:revive
)

func Test_QueryHandler_Handle_When_ItemWasNeverReturned_Then_NoRatings(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	store := wrapper.Store()
	handler := itemdetail.NewQueryHandler(store)

	// arrange
	alice := GivenUser(t, store, "alice")
	item := GivenItem(t, store, "Neuromancer")
	GivenOpenEntry(t, store, alice.ID, item.ID, time.Now().Add(-time.Hour))

	// act
	detail, err := handler.Handle(t.Context(), itemdetail.BuildQuery(item.ID))

	// assert
	require.NoError(t, err)
	assert.Equal(t, item.ID, detail.Item.ID)
	assert.Equal(t, "Neuromancer", detail.Item.Name)
	assert.False(t, detail.Rating.HasRatings(), "open entries never count")
	assert.Equal(t, ledger.NoRatingsLabel, detail.Rating.String())
}

func Test_QueryHandler_Handle_When_ThreeClosedEntries_Then_MeanRoundedToTwoDecimals(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	store := wrapper.Store()
	handler := itemdetail.NewQueryHandler(store)

	// arrange
	item := GivenItem(t, store, "Hyperion")
	for _, score := range []float64{10, 7, 7} {
		user := GivenUser(t, store, "reader")
		GivenClosedEntry(t, store, user.ID, item.ID, score)
	}

	// act
	detail, err := handler.Handle(t.Context(), itemdetail.BuildQuery(item.ID))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3, detail.Rating.Count())
	assert.Equal(t, "8.00", detail.Rating.String())
}

func Test_QueryHandler_Handle_When_ItemIsUnknown_Then_ItemNotFound(t *testing.T) {
	// setup
	wrapper := CreateWrapperWithTestConfig(t)
	handler := itemdetail.NewQueryHandler(wrapper.Store())

	// act
	_, err := handler.Handle(t.Context(), itemdetail.BuildQuery(GivenUniqueID(t)))

	// assert
	assert.ErrorIs(t, err, ledger.ErrItemNotFound)
}

func Test_QueryHandler_Handle_When_StoreAggregatesRating_Then_ItsRatingIsReturned(t *testing.T) {
	// arrange
	itemID := uuid.New()
	store := &ratingStoreStub{
		item:   ledger.Item{ID: itemID, Name: "Dune"},
		rating: ledger.AverageScore([]float64{9, 8}),
	}
	handler := itemdetail.NewQueryHandler(store)

	// act
	detail, err := handler.Handle(t.Context(), itemdetail.BuildQuery(itemID))

	// assert
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{itemID}, store.averagedItems)
	assert.Equal(t, "8.50", detail.Rating.String())
	assert.Equal(t, 2, detail.Rating.Count())
}

func Test_QueryHandler_Handle_When_RatingAggregationFails_Then_ErrorIsReturned(t *testing.T) {
	// arrange
	storageErr := errors.New("connection reset")
	store := &ratingStoreStub{ratingErr: storageErr}
	handler := itemdetail.NewQueryHandler(store)

	// act
	_, err := handler.Handle(t.Context(), itemdetail.BuildQuery(uuid.New()))

	// assert
	assert.ErrorIs(t, err, storageErr)
}

type ratingStoreStub struct {
	item          ledger.Item
	rating        ledger.Rating
	ratingErr     error
	averagedItems []uuid.UUID
}

func (s *ratingStoreStub) GetItem(_ context.Context, itemID uuid.UUID) (ledger.Item, error) {
	if s.item.ID == uuid.Nil {
		return ledger.Item{ID: itemID}, nil
	}

	return s.item, nil
}

func (s *ratingStoreStub) AverageScore(_ context.Context, itemID uuid.UUID) (ledger.Rating, error) {
	s.averagedItems = append(s.averagedItems, itemID)

	return s.rating, s.ratingErr
}
