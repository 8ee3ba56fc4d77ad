package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/AntonStoeckl/lending-ledger/ledger"
	"github.com/AntonStoeckl/lending-ledger/ledger/postgresengine/internal/adapters"
)

type (
	sqlQueryString    = string
	rowsAffectedInt64 = int64
)

// queryAll runs a SELECT and scans every row with scan.
func queryAll[T any](
	ctx context.Context,
	s Store,
	q adapters.Querier,
	action string,
	sqlQuery sqlQueryString,
	scan func(row adapters.DBRows) (T, error),
) ([]T, error) {
	start := time.Now()

	rows, err := q.Query(ctx, sqlQuery)
	if err != nil {
		s.logError(ctx, logMsgDBQueryFailed, err, logAttrQuery, sqlQuery)
		return nil, queryFailed(err)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logError(ctx, logMsgCloseRowsFailed, closeErr)
		}
	}()

	result := make([]T, 0)

	for rows.Next() {
		item, scanErr := scan(rows)
		if scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, scanErr, logAttrQuery, sqlQuery)
			return nil, errors.Join(ledger.ErrScanningDBRowFailed, scanErr)
		}

		result = append(result, item)
	}

	if err = rows.Err(); err != nil {
		s.logError(ctx, logMsgDBQueryFailed, err, logAttrQuery, sqlQuery)
		return nil, queryFailed(err)
	}

	s.logQueryWithDuration(ctx, sqlQuery, action, time.Since(start))

	return result, nil
}

// queryFirst is queryAll for queries that return at most one relevant row.
func queryFirst[T any](
	ctx context.Context,
	s Store,
	q adapters.Querier,
	action string,
	sqlQuery sqlQueryString,
	scan func(row adapters.DBRows) (T, error),
) (T, bool, error) {
	var zero T

	result, err := queryAll(ctx, s, q, action, sqlQuery, scan)
	if err != nil {
		return zero, false, err
	}

	if len(result) == 0 {
		return zero, false, nil
	}

	return result[0], true, nil
}

// exec runs a write statement and returns the raw driver error for the caller to translate.
func (s Store) exec(
	ctx context.Context,
	q adapters.Querier,
	action string,
	sqlQuery sqlQueryString,
) (rowsAffectedInt64, error) {
	start := time.Now()

	result, err := q.Exec(ctx, sqlQuery)
	if err != nil {
		s.logError(ctx, logMsgDBExecFailed, err, logAttrQuery, sqlQuery)
		return 0, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		s.logError(ctx, logMsgRowsAffectedFailed, err)
		return 0, err
	}

	s.logQueryWithDuration(ctx, sqlQuery, action, time.Since(start))

	return rowsAffected, nil
}

// rollback ends a transaction that will not be committed. It outlives a cancelled ctx.
func (s Store) rollback(ctx context.Context, dbTx adapters.DBTx) {
	err := dbTx.Rollback(context.WithoutCancel(ctx))
	if err != nil && !errors.Is(err, sql.ErrTxDone) && !errors.Is(err, pgx.ErrTxClosed) {
		s.logWarn(ctx, logMsgRollbackFailed, logAttrError, err.Error())
	}
}

func buildFailed(ctx context.Context, s Store, err error) error {
	s.logError(ctx, logMsgBuildQueryFailed, err)
	return errors.Join(ledger.ErrBuildingQueryFailed, err)
}
