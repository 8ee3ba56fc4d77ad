// Package postgresengine provides the PostgreSQL implementation of the lending ledger store.
//
// A Store holds users, items, and the history log, and runs Borrow and Return
// transitions as atomic units (see WithinTransaction). It supports pgx, sql.DB (lib/pq),
// and sqlx connections, optionally with a read replica for eventually consistent reads.
//
// At most one open history entry per item is enforced twice: callers lock the item row
// inside the unit before reading its loan state, and a partial unique index on open
// entries rejects any second insert with ledger.ErrAlreadyBorrowed.
//
// Key features:
//   - Multiple database adapter support (PGX, SQL, SQLX)
//   - Schema migration with constraint and index names derived from the table names
//   - Retries of whole atomic units on transient storage failures, with backoff
//   - Optional logging, metrics, and tracing through dependency-free interfaces
//
// Usage examples:
//
//	db, _ := pgxpool.New(ctx, dsn)
//	store, _ := postgresengine.NewStoreFromPGXPool(db, postgresengine.WithLogger(slog.Default()))
//	_ = store.Migrate(ctx)
//
//	err := store.WithinTransaction(ctx, func(ctx context.Context, tx ledger.Tx) error {
//		if found, err := tx.LockItem(ctx, itemID); err != nil || !found {
//			return ledger.ErrItemNotFound
//		}
//		// decide, then tx.AppendOpenEntry or tx.CloseEntry
//		return nil
//	})
package postgresengine
