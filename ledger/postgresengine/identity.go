package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/lending-ledger/ledger"
	"github.com/AntonStoeckl/lending-ledger/ledger/postgresengine/internal/adapters"
)

// identityRow is the shared shape of the users and items tables.
type identityRow struct {
	id        uuid.UUID
	name      string
	createdAt time.Time
}

func scanIdentityRow(row adapters.DBRows) (identityRow, error) {
	var r identityRow
	if err := row.Scan(&r.id, &r.name, &r.createdAt); err != nil {
		return identityRow{}, err
	}

	r.createdAt = r.createdAt.UTC()

	return r, nil
}

// CreateUser registers a user. The name must already be normalized, see ledger.NormalizeName.
func (s Store) CreateUser(ctx context.Context, name string) (user ledger.User, err error) {
	ctx, observer := s.startOperation(ctx, logActionCreateUser, nil)
	defer func() { observer.finish(err) }()

	row, err := s.insertIdentity(ctx, s.usersTableName, logActionCreateUser, name)
	if err != nil {
		return ledger.User{}, err
	}

	s.logOperation(ctx, logActionCreateUser, logAttrUserID, row.id.String())

	return ledger.User{ID: row.id, Name: row.name, CreatedAt: row.createdAt}, nil
}

// CreateItem registers an item. The name must already be normalized, see ledger.NormalizeName.
func (s Store) CreateItem(ctx context.Context, name string) (item ledger.Item, err error) {
	ctx, observer := s.startOperation(ctx, logActionCreateItem, nil)
	defer func() { observer.finish(err) }()

	row, err := s.insertIdentity(ctx, s.itemsTableName, logActionCreateItem, name)
	if err != nil {
		return ledger.Item{}, err
	}

	s.logOperation(ctx, logActionCreateItem, logAttrItemID, row.id.String())

	return ledger.Item{ID: row.id, Name: row.name, CreatedAt: row.createdAt}, nil
}

// GetUser returns the user or ledger.ErrUserNotFound.
func (s Store) GetUser(ctx context.Context, userID uuid.UUID) (user ledger.User, err error) {
	ctx, observer := s.startOperation(ctx, logActionGetUser, map[string]string{logAttrUserID: userID.String()})
	defer func() { observer.finish(err) }()

	row, found, err := s.getIdentity(ctx, s.db, s.usersTableName, logActionGetUser, userID, false)
	if err != nil {
		return ledger.User{}, err
	}

	if !found {
		return ledger.User{}, ledger.ErrUserNotFound
	}

	return ledger.User{ID: row.id, Name: row.name, CreatedAt: row.createdAt}, nil
}

// GetItem returns the item or ledger.ErrItemNotFound.
func (s Store) GetItem(ctx context.Context, itemID uuid.UUID) (item ledger.Item, err error) {
	ctx, observer := s.startOperation(ctx, logActionGetItem, map[string]string{logAttrItemID: itemID.String()})
	defer func() { observer.finish(err) }()

	row, found, err := s.getIdentity(ctx, s.db, s.itemsTableName, logActionGetItem, itemID, false)
	if err != nil {
		return ledger.Item{}, err
	}

	if !found {
		return ledger.Item{}, ledger.ErrItemNotFound
	}

	return ledger.Item{ID: row.id, Name: row.name, CreatedAt: row.createdAt}, nil
}

// ListUsers returns all users in registration order.
func (s Store) ListUsers(ctx context.Context) (users []ledger.User, err error) {
	ctx, observer := s.startOperation(ctx, logActionListUsers, nil)
	defer func() { observer.finish(err) }()

	rows, err := s.listIdentities(ctx, s.usersTableName, logActionListUsers)
	if err != nil {
		return nil, err
	}

	users = make([]ledger.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, ledger.User{ID: row.id, Name: row.name, CreatedAt: row.createdAt})
	}

	return users, nil
}

// ListItems returns all items in registration order.
func (s Store) ListItems(ctx context.Context) (items []ledger.Item, err error) {
	ctx, observer := s.startOperation(ctx, logActionListItems, nil)
	defer func() { observer.finish(err) }()

	rows, err := s.listIdentities(ctx, s.itemsTableName, logActionListItems)
	if err != nil {
		return nil, err
	}

	items = make([]ledger.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, ledger.Item{ID: row.id, Name: row.name, CreatedAt: row.createdAt})
	}

	return items, nil
}

func (s Store) insertIdentity(ctx context.Context, table string, action string, name string) (identityRow, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return identityRow{}, errors.Join(ledger.ErrWritingFailed, err)
	}

	row := identityRow{id: id, name: name, createdAt: s.now()}

	sqlQuery, _, err := s.dialect().
		Insert(table).
		Rows(goqu.Record{
			colID:        row.id.String(),
			colName:      row.name,
			colCreatedAt: row.createdAt,
		}).
		ToSQL()
	if err != nil {
		return identityRow{}, buildFailed(ctx, s, err)
	}

	if _, err = s.exec(ctx, s.db, action, sqlQuery); err != nil {
		return identityRow{}, s.writeFailed(err)
	}

	return row, nil
}

// getIdentity selects one row by id. With forUpdate the row stays locked until the transaction ends.
func (s Store) getIdentity(
	ctx context.Context,
	q adapters.Querier,
	table string,
	action string,
	id uuid.UUID,
	forUpdate bool,
) (identityRow, bool, error) {
	ds := s.dialect().
		From(table).
		Select(colID, colName, colCreatedAt).
		Where(goqu.C(colID).Eq(id.String()))

	if forUpdate {
		ds = ds.ForUpdate(exp.Wait)
	}

	sqlQuery, _, err := ds.ToSQL()
	if err != nil {
		return identityRow{}, false, buildFailed(ctx, s, err)
	}

	return queryFirst(ctx, s, q, action, sqlQuery, scanIdentityRow)
}

func (s Store) listIdentities(ctx context.Context, table string, action string) ([]identityRow, error) {
	sqlQuery, _, err := s.dialect().
		From(table).
		Select(colID, colName, colCreatedAt).
		Order(goqu.C(colCreatedAt).Asc(), goqu.C(colID).Asc()).
		ToSQL()
	if err != nil {
		return nil, buildFailed(ctx, s, err)
	}

	return queryAll(ctx, s, s.db, action, sqlQuery, scanIdentityRow)
}
