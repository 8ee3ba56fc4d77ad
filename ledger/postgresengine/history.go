package postgresengine

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/lending-ledger/ledger"
	"github.com/AntonStoeckl/lending-ledger/ledger/postgresengine/internal/adapters"
)

// CurrentHolder derives the item's Availability from its open history entry.
// It returns ledger.ErrItemNotFound for unknown items.
func (s Store) CurrentHolder(ctx context.Context, itemID uuid.UUID) (availability ledger.Availability, err error) {
	ctx, observer := s.startOperation(ctx, logActionCurrentHolder, map[string]string{logAttrItemID: itemID.String()})
	defer func() { observer.finish(err) }()

	sqlQuery, _, err := s.dialect().
		From(goqu.T(s.itemsTableName).As(aliasItems)).
		LeftJoin(
			goqu.T(s.historyTableName).As(aliasHistory),
			goqu.On(
				histCol(colItemID).Eq(itemCol(colID)),
				histCol(colReturnedAt).IsNull(),
			),
		).
		Select(histCol(colUserID), histCol(colBorrowedAt)).
		Where(itemCol(colID).Eq(itemID.String())).
		ToSQL()
	if err != nil {
		return ledger.Availability{}, buildFailed(ctx, s, err)
	}

	type holderRow struct {
		userID     *uuid.UUID
		borrowedAt *time.Time
	}

	row, found, err := queryFirst(ctx, s, s.db, logActionCurrentHolder, sqlQuery, func(row adapters.DBRows) (holderRow, error) {
		var r holderRow
		err := row.Scan(&r.userID, &r.borrowedAt)

		return r, err
	})
	if err != nil {
		return ledger.Availability{}, err
	}

	if !found {
		return ledger.Availability{}, ledger.ErrItemNotFound
	}

	if row.userID == nil || row.borrowedAt == nil {
		return ledger.AvailableNow(), nil
	}

	return ledger.BorrowedBy(*row.userID, row.borrowedAt.UTC()), nil
}

// PastLoans returns the closed loans of a user, oldest return first.
// Unknown users have no loans; callers check existence with GetUser.
func (s Store) PastLoans(ctx context.Context, userID uuid.UUID) (loans []ledger.PastLoan, err error) {
	ctx, observer := s.startOperation(ctx, logActionPastLoans, map[string]string{logAttrUserID: userID.String()})
	defer func() { observer.finish(err) }()

	sqlQuery, _, err := s.loansOfUser(userID, true).
		Select(histCol(colItemID), itemCol(colName), histCol(colScore), histCol(colBorrowedAt), histCol(colReturnedAt)).
		Order(histCol(colReturnedAt).Asc(), histCol(colID).Asc()).
		ToSQL()
	if err != nil {
		return nil, buildFailed(ctx, s, err)
	}

	return queryAll(ctx, s, s.db, logActionPastLoans, sqlQuery, func(row adapters.DBRows) (ledger.PastLoan, error) {
		var loan ledger.PastLoan
		if scanErr := row.Scan(&loan.ItemID, &loan.ItemName, &loan.Score, &loan.BorrowedAt, &loan.ReturnedAt); scanErr != nil {
			return ledger.PastLoan{}, scanErr
		}

		loan.BorrowedAt = loan.BorrowedAt.UTC()
		loan.ReturnedAt = loan.ReturnedAt.UTC()

		return loan, nil
	})
}

// CurrentLoans returns the open loans of a user, oldest first.
// Unknown users have no loans; callers check existence with GetUser.
func (s Store) CurrentLoans(ctx context.Context, userID uuid.UUID) (loans []ledger.CurrentLoan, err error) {
	ctx, observer := s.startOperation(ctx, logActionCurrentLoans, map[string]string{logAttrUserID: userID.String()})
	defer func() { observer.finish(err) }()

	sqlQuery, _, err := s.loansOfUser(userID, false).
		Select(histCol(colItemID), itemCol(colName), histCol(colBorrowedAt)).
		Order(histCol(colBorrowedAt).Asc(), histCol(colID).Asc()).
		ToSQL()
	if err != nil {
		return nil, buildFailed(ctx, s, err)
	}

	return queryAll(ctx, s, s.db, logActionCurrentLoans, sqlQuery, func(row adapters.DBRows) (ledger.CurrentLoan, error) {
		var loan ledger.CurrentLoan
		if scanErr := row.Scan(&loan.ItemID, &loan.ItemName, &loan.BorrowedAt); scanErr != nil {
			return ledger.CurrentLoan{}, scanErr
		}

		loan.BorrowedAt = loan.BorrowedAt.UTC()

		return loan, nil
	})
}

// ClosedScoresForItem returns the scores of all closed loans of an item. Open entries never contribute.
func (s Store) ClosedScoresForItem(ctx context.Context, itemID uuid.UUID) (scores []float64, err error) {
	ctx, observer := s.startOperation(ctx, logActionClosedScores, map[string]string{logAttrItemID: itemID.String()})
	defer func() { observer.finish(err) }()

	sqlQuery, _, err := s.dialect().
		From(s.historyTableName).
		Select(colScore).
		Where(
			goqu.C(colItemID).Eq(itemID.String()),
			goqu.C(colReturnedAt).IsNotNull(),
		).
		ToSQL()
	if err != nil {
		return nil, buildFailed(ctx, s, err)
	}

	return queryAll(ctx, s, s.db, logActionClosedScores, sqlQuery, func(row adapters.DBRows) (float64, error) {
		var score float64
		err := row.Scan(&score)

		return score, err
	})
}

// AverageScore is the Rating Aggregator: the rounded mean over the item's closed loans,
// recomputed from the history log on every call.
func (s Store) AverageScore(ctx context.Context, itemID uuid.UUID) (ledger.Rating, error) {
	scores, err := s.ClosedScoresForItem(ctx, itemID)
	if err != nil {
		return ledger.Rating{}, err
	}

	return ledger.AverageScore(scores), nil
}

func (s Store) loansOfUser(userID uuid.UUID, closed bool) *goqu.SelectDataset {
	returned := histCol(colReturnedAt).IsNull()
	if closed {
		returned = histCol(colReturnedAt).IsNotNull()
	}

	return s.dialect().
		From(goqu.T(s.historyTableName).As(aliasHistory)).
		Join(
			goqu.T(s.itemsTableName).As(aliasItems),
			goqu.On(histCol(colItemID).Eq(itemCol(colID))),
		).
		Where(histCol(colUserID).Eq(userID.String()), returned)
}

// histCol qualifies a column with the history table alias.
func histCol(col string) exp.IdentifierExpression {
	return goqu.T(aliasHistory).Col(col)
}

// itemCol qualifies a column with the items table alias.
func itemCol(col string) exp.IdentifierExpression {
	return goqu.T(aliasItems).Col(col)
}
