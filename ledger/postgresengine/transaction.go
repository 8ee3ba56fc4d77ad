package postgresengine

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/lending-ledger/ledger"
	"github.com/AntonStoeckl/lending-ledger/ledger/postgresengine/internal/adapters"
)

// WithinTransaction runs fn as one atomic unit on the primary database.
//
// The unit runs at READ COMMITTED with a lock timeout and a deadline of its own.
// Callers serialize on an item by calling Tx.LockItem before reading its loan state.
// If fn fails transiently (lock timeout, deadlock, serialization failure, lost connection),
// the whole unit is rolled back and fn runs again with backoff. A failed commit is only run
// again when it provably was not applied; otherwise it returns ledger.ErrCommitOutcomeUnknown.
// Any other error rolls back and is returned unchanged.
func (s Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx ledger.Tx) error) (err error) {
	ctx, observer := s.startOperation(ctx, logActionTransaction, nil)
	defer func() { observer.finish(err) }()

	return s.retryTransient(ctx, logActionTransaction, func(ctx context.Context) error {
		return s.runTransaction(ctx, fn)
	})
}

func (s Store) runTransaction(ctx context.Context, fn func(ctx context.Context, tx ledger.Tx) error) (err error) {
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	dbTx, err := s.db.BeginTx(ctx)
	if err != nil {
		s.logError(ctx, logMsgBeginTxFailed, err)
		return transactionFailed(err)
	}

	committed := false

	defer func() {
		if !committed {
			s.rollback(ctx, dbTx)
		}
	}()

	lockTimeout := fmt.Sprintf("SET LOCAL lock_timeout = %d", s.lockTimeout.Milliseconds())
	if _, err = s.exec(ctx, dbTx, logActionTransaction, lockTimeout); err != nil {
		return transactionFailed(err)
	}

	if err = fn(ctx, &storeTx{store: s, q: dbTx}); err != nil {
		return err
	}

	if err = dbTx.Commit(ctx); err != nil {
		s.logError(ctx, logMsgCommitFailed, err)
		return commitFailed(err)
	}

	committed = true

	return nil
}

// storeTx implements ledger.Tx on top of an open database transaction.
type storeTx struct {
	store Store
	q     adapters.Querier
}

func (t *storeTx) UserExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	_, found, err := t.store.getIdentity(ctx, t.q, t.store.usersTableName, logActionUserExists, userID, false)

	return found, err
}

func (t *storeTx) LockItem(ctx context.Context, itemID uuid.UUID) (bool, error) {
	_, found, err := t.store.getIdentity(ctx, t.q, t.store.itemsTableName, logActionLockItem, itemID, true)

	return found, err
}

func (t *storeTx) OpenEntryForItem(ctx context.Context, itemID uuid.UUID) (ledger.HistoryEntry, bool, error) {
	return t.openEntry(ctx, goqu.C(colItemID).Eq(itemID.String()))
}

func (t *storeTx) OpenEntryForUserAndItem(ctx context.Context, userID, itemID uuid.UUID) (ledger.HistoryEntry, bool, error) {
	return t.openEntry(ctx,
		goqu.C(colUserID).Eq(userID.String()),
		goqu.C(colItemID).Eq(itemID.String()),
	)
}

func (t *storeTx) AppendOpenEntry(ctx context.Context, entry ledger.HistoryEntry) error {
	s := t.store

	if !entry.IsOpen() || entry.Score != nil {
		return errors.Join(ledger.ErrWritingFailed, errors.New("entry to append must be open"))
	}

	sqlQuery, _, err := s.dialect().
		Insert(s.historyTableName).
		Rows(goqu.Record{
			colID:         entry.ID.String(),
			colUserID:     entry.UserID.String(),
			colItemID:     entry.ItemID.String(),
			colBorrowedAt: entry.BorrowedAt.UTC(),
		}).
		ToSQL()
	if err != nil {
		return buildFailed(ctx, s, err)
	}

	if _, err = s.exec(ctx, t.q, logActionAppendOpenEntry, sqlQuery); err != nil {
		err = s.writeFailed(err)
		if errors.Is(err, ledger.ErrAlreadyBorrowed) {
			s.logInfo(ctx, logMsgAlreadyBorrowed, logAttrItemID, entry.ItemID.String(), logAttrUserID, entry.UserID.String())
		}

		return err
	}

	s.logInfo(ctx, logMsgEntryAppended,
		logAttrEntryID, entry.ID.String(),
		logAttrItemID, entry.ItemID.String(),
		logAttrUserID, entry.UserID.String(),
	)

	return nil
}

func (t *storeTx) CloseEntry(ctx context.Context, entry ledger.HistoryEntry) error {
	s := t.store

	if entry.ReturnedAt == nil || entry.Score == nil {
		return ledger.ErrScoreMissing
	}

	sqlQuery, _, err := s.dialect().
		Update(s.historyTableName).
		Set(goqu.Record{
			colReturnedAt: entry.ReturnedAt.UTC(),
			colScore:      *entry.Score,
		}).
		Where(
			goqu.C(colID).Eq(entry.ID.String()),
			goqu.C(colUserID).Eq(entry.UserID.String()),
			goqu.C(colItemID).Eq(entry.ItemID.String()),
			goqu.C(colReturnedAt).IsNull(),
		).
		ToSQL()
	if err != nil {
		return buildFailed(ctx, s, err)
	}

	rowsAffected, err := s.exec(ctx, t.q, logActionCloseEntry, sqlQuery)
	if err != nil {
		return s.writeFailed(err)
	}

	if rowsAffected == 0 {
		return ledger.ErrNotBorrowedByUser
	}

	s.logInfo(ctx, logMsgEntryClosed,
		logAttrEntryID, entry.ID.String(),
		logAttrItemID, entry.ItemID.String(),
		logAttrUserID, entry.UserID.String(),
		logAttrRowsAffected, rowsAffected,
	)

	return nil
}

func (t *storeTx) openEntry(ctx context.Context, where ...exp.Expression) (ledger.HistoryEntry, bool, error) {
	s := t.store

	sqlQuery, _, err := s.dialect().
		From(s.historyTableName).
		Select(colID, colUserID, colItemID, colBorrowedAt, colReturnedAt, colScore).
		Where(append(where, goqu.C(colReturnedAt).IsNull())...).
		Order(goqu.C(colBorrowedAt).Desc()).
		Limit(1).
		ToSQL()
	if err != nil {
		return ledger.HistoryEntry{}, false, buildFailed(ctx, s, err)
	}

	return queryFirst(ctx, s, t.q, logActionOpenEntry, sqlQuery, scanHistoryEntry)
}

func scanHistoryEntry(row adapters.DBRows) (ledger.HistoryEntry, error) {
	var e ledger.HistoryEntry
	if err := row.Scan(&e.ID, &e.UserID, &e.ItemID, &e.BorrowedAt, &e.ReturnedAt, &e.Score); err != nil {
		return ledger.HistoryEntry{}, err
	}

	e.BorrowedAt = e.BorrowedAt.UTC()
	if e.ReturnedAt != nil {
		returnedAt := e.ReturnedAt.UTC()
		e.ReturnedAt = &returnedAt
	}

	return e, nil
}
