package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver

	"github.com/AntonStoeckl/lending-ledger/ledger/postgresengine"
)

const driverNamePostgres = "postgres"

// Connections holds the open primary and optional replica connections of one adapter type.
type Connections struct {
	Adapter string

	PGXPool        *pgxpool.Pool
	PGXReplicaPool *pgxpool.Pool
	SQLDB          *sql.DB
	SQLReplicaDB   *sql.DB
	SQLXDB         *sqlx.DB
	SQLXReplicaDB  *sqlx.DB
}

// OpenPostgres opens and pings the connections cfg.Adapter asks for.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*Connections, error) {
	conns := &Connections{Adapter: strings.ToLower(cfg.Adapter)}

	switch conns.Adapter {
	case AdapterPGXPool, "":
		conns.Adapter = AdapterPGXPool

		primary, err := NewPGXPool(ctx, cfg, cfg.DSN)
		if err != nil {
			return nil, err
		}

		conns.PGXPool = primary

		if cfg.ReplicaDSN != "" {
			if conns.PGXReplicaPool, err = NewPGXPool(ctx, cfg, cfg.ReplicaDSN); err != nil {
				conns.Close()
				return nil, err
			}
		}

	case AdapterSQLDB:
		primary, err := NewSQLDB(ctx, cfg, cfg.DSN)
		if err != nil {
			return nil, err
		}

		conns.SQLDB = primary

		if cfg.ReplicaDSN != "" {
			if conns.SQLReplicaDB, err = NewSQLDB(ctx, cfg, cfg.ReplicaDSN); err != nil {
				conns.Close()
				return nil, err
			}
		}

	case AdapterSQLXDB:
		primary, err := NewSQLXDB(ctx, cfg, cfg.DSN)
		if err != nil {
			return nil, err
		}

		conns.SQLXDB = primary

		if cfg.ReplicaDSN != "" {
			if conns.SQLXReplicaDB, err = NewSQLXDB(ctx, cfg, cfg.ReplicaDSN); err != nil {
				conns.Close()
				return nil, err
			}
		}

	default:
		return nil, fmt.Errorf("%w: unsupported postgres adapter %q", ErrInvalidConfig, cfg.Adapter)
	}

	return conns, nil
}

// NewStore builds a postgresengine.Store on the open connections, using a replica when one is open.
func (c *Connections) NewStore(cfg PostgresConfig, options ...postgresengine.Option) (postgresengine.Store, error) {
	options = append([]postgresengine.Option{
		postgresengine.WithTableNames(cfg.UsersTable, cfg.ItemsTable, cfg.HistoryTable),
		postgresengine.WithTransactionTimeout(cfg.TxTimeout),
		postgresengine.WithLockTimeout(cfg.LockTimeout),
		postgresengine.WithRetryMaxAttempts(cfg.RetryMaxAttempts),
		postgresengine.WithRetryBaseDelay(cfg.RetryBaseDelay),
	}, options...)

	switch c.Adapter {
	case AdapterPGXPool:
		if c.PGXReplicaPool != nil {
			return postgresengine.NewStoreFromPGXPoolAndReplica(c.PGXPool, c.PGXReplicaPool, options...)
		}

		return postgresengine.NewStoreFromPGXPool(c.PGXPool, options...)

	case AdapterSQLDB:
		if c.SQLReplicaDB != nil {
			return postgresengine.NewStoreFromSQLDBAndReplica(c.SQLDB, c.SQLReplicaDB, options...)
		}

		return postgresengine.NewStoreFromSQLDB(c.SQLDB, options...)

	case AdapterSQLXDB:
		if c.SQLXReplicaDB != nil {
			return postgresengine.NewStoreFromSQLXAndReplica(c.SQLXDB, c.SQLXReplicaDB, options...)
		}

		return postgresengine.NewStoreFromSQLX(c.SQLXDB, options...)

	default:
		return postgresengine.Store{}, fmt.Errorf("%w: unsupported postgres adapter %q", ErrInvalidConfig, c.Adapter)
	}
}

// Ping checks the primary connection.
func (c *Connections) Ping(ctx context.Context) error {
	switch {
	case c.PGXPool != nil:
		return c.PGXPool.Ping(ctx)
	case c.SQLDB != nil:
		return c.SQLDB.PingContext(ctx)
	case c.SQLXDB != nil:
		return c.SQLXDB.PingContext(ctx)
	default:
		return errors.New("no open postgres connection")
	}
}

// Exec runs a raw statement on the primary connection. Used by tooling and tests, never by the store.
func (c *Connections) Exec(ctx context.Context, statement string) error {
	var err error

	switch {
	case c.PGXPool != nil:
		_, err = c.PGXPool.Exec(ctx, statement)
	case c.SQLDB != nil:
		_, err = c.SQLDB.ExecContext(ctx, statement)
	case c.SQLXDB != nil:
		_, err = c.SQLXDB.ExecContext(ctx, statement)
	default:
		err = errors.New("no open postgres connection")
	}

	return err
}

// Close closes every open connection.
func (c *Connections) Close() {
	if c.PGXPool != nil {
		c.PGXPool.Close()
	}

	if c.PGXReplicaPool != nil {
		c.PGXReplicaPool.Close()
	}

	for _, db := range []*sql.DB{c.SQLDB, c.SQLReplicaDB} {
		if db != nil {
			_ = db.Close() // makes no sense to handle this
		}
	}

	for _, db := range []*sqlx.DB{c.SQLXDB, c.SQLXReplicaDB} {
		if db != nil {
			_ = db.Close() // makes no sense to handle this
		}
	}
}

// NewPGXPool creates and pings a pgxpool.Pool for dsn.
func NewPGXPool(ctx context.Context, cfg PostgresConfig, dsn string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing postgres dsn: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating pgx pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	return pool, nil
}

// NewSQLDB creates and pings a database/sql connection pool for dsn, using lib/pq.
func NewSQLDB(ctx context.Context, cfg PostgresConfig, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driverNamePostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}

	configureSQLPool(db, cfg)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err = db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	return db, nil
}

// NewSQLXDB creates and pings a sqlx connection pool for dsn, using lib/pq.
func NewSQLXDB(ctx context.Context, cfg PostgresConfig, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driverNamePostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}

	configureSQLPool(db.DB, cfg)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err = db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	return db, nil
}

func configureSQLPool(db *sql.DB, cfg PostgresConfig) {
	db.SetMaxOpenConns(int(cfg.MaxConns))
	db.SetMaxIdleConns(int(cfg.MinConns))
	db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)
}
