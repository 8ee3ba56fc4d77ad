package postgresengine

import (
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/lending-ledger/ledger"
	"github.com/AntonStoeckl/lending-ledger/ledger/postgresengine/internal/adapters"
)

const (
	defaultUsersTableName   = "users"
	defaultItemsTableName   = "items"
	defaultHistoryTableName = "history_entries"
	defaultTxTimeout        = 5 * time.Second
	defaultLockTimeout      = 2 * time.Second

	logMsgBuildQueryFailed    = "failed to build query"
	logMsgDBQueryFailed       = "database query execution failed"
	logMsgDBExecFailed        = "database execution failed"
	logMsgCloseRowsFailed     = "failed to close database rows"
	logMsgScanRowFailed       = "failed to scan database row"
	logMsgRowsAffectedFailed  = "failed to get rows affected count"
	logMsgBeginTxFailed       = "failed to begin transaction"
	logMsgCommitFailed        = "failed to commit transaction"
	logMsgRollbackFailed      = "failed to roll back transaction"
	logMsgTransientRetry      = "transient storage failure, retrying transaction"
	logMsgMaxRetriesReached   = "transient storage failure, giving up"
	logMsgEntryAppended       = "open history entry appended"
	logMsgEntryClosed         = "history entry closed"
	logMsgAlreadyBorrowed     = "item already has an open history entry"
	logMsgSchemaMigrated      = "schema migrated"
	logMsgSQLExecuted         = "executed sql for: "
	logMsgOperation           = "ledger operation: "
	logAttrError              = "error"
	logAttrQuery              = "query"
	logAttrDurationMS         = "duration_ms"
	logAttrRowsAffected       = "rows_affected"
	logAttrUserID             = "user_id"
	logAttrItemID             = "item_id"
	logAttrEntryID            = "entry_id"
	logAttrAttempt            = "attempt"
	logAttrOperation          = "operation"
	logActionCreateUser       = "create_user"
	logActionCreateItem       = "create_item"
	logActionGetUser          = "get_user"
	logActionGetItem          = "get_item"
	logActionListUsers        = "list_users"
	logActionListItems        = "list_items"
	logActionCurrentHolder    = "current_holder"
	logActionPastLoans        = "past_loans"
	logActionCurrentLoans     = "current_loans"
	logActionClosedScores     = "closed_scores"
	logActionTransaction      = "transaction"
	logActionLockItem         = "lock_item"
	logActionUserExists       = "user_exists"
	logActionOpenEntry        = "open_entry"
	logActionAppendOpenEntry  = "append_open_entry"
	logActionCloseEntry       = "close_entry"
	logActionMigrate          = "migrate"
	colID                     = "id"
	colName                   = "name"
	colCreatedAt              = "created_at"
	colUserID                 = "user_id"
	colItemID                 = "item_id"
	colBorrowedAt             = "borrowed_at"
	colReturnedAt             = "returned_at"
	colScore                  = "score"
	aliasHistory              = "h"
	aliasItems                = "i"
	dialectPostgres           = "postgres"
	constraintSuffixOneOpen   = "_one_open_per_item"
	constraintSuffixUserFK    = "_user_fk"
	constraintSuffixItemFK    = "_item_fk"
	constraintSuffixClosedSet = "_closed_fields"
)

// Store is the PostgreSQL backed lending ledger.
//
// It implements the Identity Store (users and items), the History Log, the read
// queries of the Rating Aggregator, and the atomic unit (see WithinTransaction)
// in which Borrow and Return transitions are decided and written.
type Store struct {
	db               adapters.DBAdapter
	usersTableName   string
	itemsTableName   string
	historyTableName string
	txTimeout        time.Duration
	lockTimeout      time.Duration
	retry            retryPolicy
	clock            func() time.Time
	logger           ledger.Logger
	contextualLogger ledger.ContextualLogger
	metricsCollector ledger.MetricsCollector
	tracingCollector ledger.TracingCollector
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, ledger.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options...)
}

// NewStoreFromPGXPoolAndReplica creates a new Store using a primary pgx Pool for writes and
// strongly consistent reads, and a replica Pool for eventually consistent reads.
func NewStoreFromPGXPoolAndReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (Store, error) {
	if db == nil || replica == nil {
		return Store{}, ledger.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, ledger.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLDBAndReplica creates a new Store using a primary and a replica sql.DB.
func NewStoreFromSQLDBAndReplica(db *sql.DB, replica *sql.DB, options ...Option) (Store, error) {
	if db == nil || replica == nil {
		return Store{}, ledger.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapterWithReplica(db, replica), options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, ledger.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

// NewStoreFromSQLXAndReplica creates a new Store using a primary and a replica sqlx.DB.
func NewStoreFromSQLXAndReplica(db *sqlx.DB, replica *sqlx.DB, options ...Option) (Store, error) {
	if db == nil || replica == nil {
		return Store{}, ledger.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapterWithReplica(db, replica), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (Store, error) {
	s := Store{
		db:               db,
		usersTableName:   defaultUsersTableName,
		itemsTableName:   defaultItemsTableName,
		historyTableName: defaultHistoryTableName,
		txTimeout:        defaultTxTimeout,
		lockTimeout:      defaultLockTimeout,
		retry:            defaultRetryPolicy(),
		clock:            time.Now,
	}

	for _, option := range options {
		if err := option(&s); err != nil {
			return Store{}, err
		}
	}

	return s, nil
}

// TableNames returns the users, items, and history table names in that order.
func (s Store) TableNames() (users, items, history string) {
	return s.usersTableName, s.itemsTableName, s.historyTableName
}

func (s Store) dialect() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}

func (s Store) now() time.Time {
	return s.clock().UTC()
}
