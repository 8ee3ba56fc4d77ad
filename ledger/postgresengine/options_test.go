package postgresengine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/lending-ledger/ledger"
	"github.com/AntonStoeckl/lending-ledger/ledger/postgresengine"
	"github.com/AntonStoeckl/lending-ledger/testutil/ledgertest"
)

func Test_NewStore_When_NilConnection_Then_Error(t *testing.T) {
	_, err := postgresengine.NewStoreFromPGXPool(nil)
	assert.ErrorIs(t, err, ledger.ErrNilDatabaseConnection)

	_, err = postgresengine.NewStoreFromSQLDB(nil)
	assert.ErrorIs(t, err, ledger.ErrNilDatabaseConnection)

	_, err = postgresengine.NewStoreFromSQLX(nil)
	assert.ErrorIs(t, err, ledger.ErrNilDatabaseConnection)

	_, err = postgresengine.NewStoreFromPGXPoolAndReplica(nil, nil)
	assert.ErrorIs(t, err, ledger.ErrNilDatabaseConnection)
}

func Test_Options_RejectInvalidValues(t *testing.T) {
	// setup
	wrapper := ledgertest.CreateWrapperWithTestConfig(t)
	conns := wrapper.Connections()
	cfg := wrapper.Config()

	tests := []struct {
		name        string
		option      postgresengine.Option
		expectedErr error
	}{
		{name: "empty users table", option: postgresengine.WithTableNames("", "items", "history"), expectedErr: ledger.ErrEmptyTableName},
		{name: "empty history table", option: postgresengine.WithTableNames("users", "items", ""), expectedErr: ledger.ErrEmptyTableName},
		{name: "zero tx timeout", option: postgresengine.WithTransactionTimeout(0), expectedErr: postgresengine.ErrNonPositiveTimeout},
		{name: "negative lock timeout", option: postgresengine.WithLockTimeout(-time.Second), expectedErr: postgresengine.ErrNonPositiveTimeout},
		{name: "nil clock", option: postgresengine.WithClock(nil), expectedErr: postgresengine.ErrNilClock},
		{name: "zero attempts", option: postgresengine.WithRetryMaxAttempts(0), expectedErr: postgresengine.ErrInvalidMaxAttempts},
		{name: "negative base delay", option: postgresengine.WithRetryBaseDelay(-time.Millisecond), expectedErr: postgresengine.ErrNegativeBaseDelay},
		{name: "jitter above one", option: postgresengine.WithRetryJitterFactor(1.5), expectedErr: postgresengine.ErrInvalidJitterFactor},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// act
			_, err := conns.NewStore(cfg, tc.option)

			// assert
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}
