// Package adapters provide database adapter implementations for the PostgreSQL ledger store.
//
// Three connection types are supported: pgxpool.Pool, sql.DB (lib/pq), and sqlx.DB.
// Each adapter exposes the same DBAdapter interface, including transactions, so the
// store runs its Borrow and Return units identically on all of them.
//
// Reads outside a transaction go to the replica when one is configured and the context
// asks for eventual consistency. Writes and transactions always use the primary.
package adapters
