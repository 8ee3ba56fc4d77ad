// Command ledgerd runs the lending ledger.
//
//	ledgerd migrate --config ledgerd.toml   creates the tables and indexes
//	ledgerd serve   --config ledgerd.toml   serves the REST API until SIGINT or SIGTERM
//	ledgerd simulate --rounds 5000           plays random lending traffic against the store
//
// Settings come from the TOML file, overridden by LEDGER_* environment variables.
package main
