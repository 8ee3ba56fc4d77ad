package returnitem_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/lending-ledger/app/features/command/returnitem"
)

func Test_BuildCommand_When_OccurredAtHasNanoseconds_Then_TruncatedToMicrosecondsInUTC(t *testing.T) {
	// arrange
	berlin := time.FixedZone("CET", 3600)
	occurredAt := time.Date(2024, 3, 1, 13, 0, 0, 123456789, berlin)

	// act
	command := returnitem.BuildCommand(uuid.New(), uuid.New(), nil, occurredAt)

	// assert
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 123456000, time.UTC), command.OccurredAt)
}
