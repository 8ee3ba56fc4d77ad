package ledger_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/lending-ledger/ledger"
)

func Test_HistoryEntry_Close_LeavesOriginalOpen(t *testing.T) {
	// arrange
	open := ledger.NewOpenEntry(uuid.New(), uuid.New(), uuid.New(), time.Now())
	returnedAt := open.BorrowedAt.Add(time.Hour)

	// act
	closed := open.Close(returnedAt, 8)

	// assert
	assert.True(t, open.IsOpen())
	assert.Nil(t, open.Score)
	assert.False(t, closed.IsOpen())
	assert.Equal(t, returnedAt, *closed.ReturnedAt)
	assert.InDelta(t, 8.0, *closed.Score, 0.0001)
	assert.Equal(t, open.ID, closed.ID)
}

func Test_NormalizeName(t *testing.T) {
	name, err := ledger.NormalizeName("  Dune \t")
	assert.NoError(t, err)
	assert.Equal(t, "Dune", name)

	for _, invalid := range []string{"", "   ", "\n\t"} {
		_, err = ledger.NormalizeName(invalid)
		assert.ErrorIs(t, err, ledger.ErrEmptyName)
		assert.ErrorIs(t, err, ledger.ErrValidation)
	}
}

func Test_ValidateScore(t *testing.T) {
	for _, valid := range []float64{0, 0.5, 5, 10} {
		assert.NoError(t, ledger.ValidateScore(valid))
	}

	for _, invalid := range []float64{-0.01, 10.01, math.NaN(), math.Inf(1)} {
		assert.ErrorIs(t, ledger.ValidateScore(invalid), ledger.ErrScoreOutOfRange)
	}
}

func Test_ErrorTaxonomy(t *testing.T) {
	assert.ErrorIs(t, ledger.ErrUserNotFound, ledger.ErrNotFound)
	assert.ErrorIs(t, ledger.ErrItemNotFound, ledger.ErrNotFound)
	assert.NotErrorIs(t, ledger.ErrUserNotFound, ledger.ErrItemNotFound)

	assert.True(t, ledger.IsBusinessError(ledger.ErrUserNotFound))
	assert.True(t, ledger.IsBusinessError(errors.Join(ledger.ErrAlreadyBorrowed, errors.New("dup"))))
	assert.True(t, ledger.IsBusinessError(ledger.ErrNotBorrowedByUser))
	assert.True(t, ledger.IsBusinessError(ledger.ErrScoreMissing))
	assert.False(t, ledger.IsBusinessError(ledger.ErrTransientStorage))
	assert.False(t, ledger.IsBusinessError(errors.Join(ledger.ErrQueryingFailed, errors.New("boom"))))
}

func Test_ConsistencyLevel_FromContext(t *testing.T) {
	ctx := t.Context()

	assert.Equal(t, ledger.StrongConsistency, ledger.GetConsistencyLevel(ctx))
	assert.Equal(t, ledger.EventualConsistency, ledger.GetConsistencyLevel(ledger.WithEventualConsistency(ctx)))
	assert.Equal(t, ledger.StrongConsistency, ledger.GetConsistencyLevel(ledger.WithStrongConsistency(ctx)))
	assert.Equal(t, "eventual", ledger.EventualConsistency.String())
}
