// Package ledgertest provides test utilities for running tests against a real PostgreSQL database.
//
// The adapter type is selected by the ADAPTER_TYPE environment variable (pgx.pool, sql.db,
// sqlx.db; default pgx.pool) and the database by LEDGER_TEST_DSN, so the same test suite
// runs against every supported driver. Each Wrapper migrates its own uniquely named tables
// and drops them on cleanup, so test packages never see each other's rows.
//
// Usage:
//
//	wrapper := ledgertest.CreateWrapperWithTestConfig(t)
//	store := wrapper.Store()
//	user := ledgertest.GivenUser(t, store, "Alice")
package ledgertest
