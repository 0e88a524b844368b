package app

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver for database/sql

	"github.com/guttosm/spimexpulse/config"
	"github.com/guttosm/spimexpulse/internal/storage"
)

// sqlOpener is an indirection for unit testing; defaults to sql.Open
var sqlOpener = sql.Open

// InitPostgres opens a PostgreSQL pool from cfg.Postgres and pings it.
// cfg.Postgres.URL is used when set; otherwise the DSN is built from the individual fields.
//
// Returns:
//   - *sql.DB: an open database connection pool (safe for concurrent use).
//   - error: if opening or pinging the database fails.
func InitPostgres(cfg config.Config) (*sql.DB, error) {
	dsn := cfg.Postgres.URL
	if dsn == "" {
		dsn = config.PostgresDSN(cfg.Postgres)
	}

	db, err := sqlOpener("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return db, nil
}

// postgresOpener is an indirection used by OpenStorage; overridden in tests to avoid real connections.
var postgresOpener = InitPostgres

// OpenStorage connects to the configured backend, applies migrations and
// returns the pool together with the trade results repository.
//
// Backends:
//   - postgres: InitPostgres + embedded goose migrations.
//   - sqlite: storage.OpenSQLite at cfg.Storage.SQLitePath + DDL.
func OpenStorage(ctx context.Context, cfg config.Config) (*sql.DB, storage.TradeResultsRepository, error) {
	dialect, err := storage.DialectFor(cfg.Storage.Driver)
	if err != nil {
		return nil, nil, err
	}

	var db *sql.DB
	switch dialect.Name {
	case storage.Postgres.Name:
		db, err = postgresOpener(cfg)
	default:
		db, err = storage.OpenSQLite(cfg.Storage.SQLitePath)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize %s: %w", dialect.Name, err)
	}

	if err := storage.Migrate(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to migrate %s: %w", dialect.Name, err)
	}

	return db, storage.NewTradeResultsRepository(db, dialect), nil
}
