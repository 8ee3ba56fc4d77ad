package postgresengine

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/jackc/pgx/v5"
)

// Migrate creates the tables, constraints, and indexes the Store needs, if missing.
//
// It runs in one transaction guarded by an advisory lock, so concurrent callers
// (several service instances, parallel test packages) do not race each other.
// The partial unique index on open entries is what makes a second concurrent
// Borrow of the same item fail instead of succeed.
func (s Store) Migrate(ctx context.Context) (err error) {
	ctx, observer := s.startOperation(ctx, logActionMigrate, nil)
	defer func() { observer.finish(err) }()

	dbTx, err := s.db.BeginTx(ctx)
	if err != nil {
		s.logError(ctx, logMsgBeginTxFailed, err)
		return transactionFailed(err)
	}

	defer func() {
		if err != nil {
			s.rollback(ctx, dbTx)
		}
	}()

	for _, statement := range s.schemaStatements() {
		if _, err = dbTx.Exec(ctx, statement); err != nil {
			s.logError(ctx, logMsgDBExecFailed, err, logAttrQuery, statement)
			return transactionFailed(err)
		}
	}

	if err = dbTx.Commit(ctx); err != nil {
		s.logError(ctx, logMsgCommitFailed, err)
		return transactionFailed(err)
	}

	s.logInfo(ctx, logMsgSchemaMigrated, "users_table", s.usersTableName, "items_table", s.itemsTableName, "history_table", s.historyTableName)

	return nil
}

func (s Store) schemaStatements() []string {
	users := quoteIdent(s.usersTableName)
	items := quoteIdent(s.itemsTableName)
	history := quoteIdent(s.historyTableName)

	identityTable := `CREATE TABLE IF NOT EXISTS %s (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL CHECK (btrim(name) <> ''),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

	return []string{
		fmt.Sprintf("SELECT pg_advisory_xact_lock(%d)", advisoryLockKey(s.historyTableName)),
		fmt.Sprintf(identityTable, users),
		fmt.Sprintf(identityTable, items),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id          UUID PRIMARY KEY,
	user_id     UUID NOT NULL CONSTRAINT %s REFERENCES %s (id),
	item_id     UUID NOT NULL CONSTRAINT %s REFERENCES %s (id),
	borrowed_at TIMESTAMPTZ NOT NULL,
	returned_at TIMESTAMPTZ,
	score       DOUBLE PRECISION CHECK (score >= 0 AND score <= 10),
	CONSTRAINT %s CHECK ((returned_at IS NULL) = (score IS NULL))
)`,
			history,
			quoteIdent(s.constraintName(constraintSuffixUserFK)), users,
			quoteIdent(s.constraintName(constraintSuffixItemFK)), items,
			quoteIdent(s.constraintName(constraintSuffixClosedSet)),
		),
		fmt.Sprintf(
			"CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (item_id) WHERE returned_at IS NULL",
			quoteIdent(s.constraintName(constraintSuffixOneOpen)), history,
		),
		fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS %s ON %s (user_id, returned_at)",
			quoteIdent(s.historyTableName+"_user_idx"), history,
		),
		fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS %s ON %s (item_id) WHERE returned_at IS NOT NULL",
			quoteIdent(s.historyTableName+"_item_closed_idx"), history,
		),
	}
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func advisoryLockKey(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("ledger.migrate." + name))

	return int64(h.Sum64()) //nolint:gosec // wrap-around is fine for a lock key
}
