// Package config loads the ledgerd configuration and builds the infrastructure it describes.
//
// Configuration comes from an optional TOML file, overlaid by LEDGER_* environment
// variables. Factory functions turn it into database connections (pgx.Pool, sql.DB,
// sqlx.DB, optionally with a read replica), a postgresengine.Store, a slog logger,
// and an OpenTelemetry tracer provider.
//
// This package is part of the shell (infrastructure) layer.
package config
