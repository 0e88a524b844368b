package storage

import (
	"context"
	"database/sql"
	"fmt"

	goose "github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/guttosm/spimexpulse/db"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS spimex_trading_results (
	id                    INTEGER PRIMARY KEY AUTOINCREMENT,
	exchange_product_id   TEXT    NOT NULL,
	exchange_product_name TEXT    NOT NULL,
	oil_id                TEXT,
	delivery_basis_id     TEXT    NOT NULL,
	delivery_basis_name   TEXT    NOT NULL DEFAULT '',
	delivery_type_id      TEXT,
	volume                REAL,
	total                 REAL,
	count                 INTEGER,
	date                  TEXT    NOT NULL,
	created_on            TEXT    NOT NULL DEFAULT (datetime('now')),
	updated_on            TEXT    NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_spimex_trading_results_date ON spimex_trading_results(date);
`

// OpenSQLite opens the SQLite database at path (":memory:" is accepted) and configures WAL mode.
func OpenSQLite(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	conn.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("sqlite: exec %s: %w", pragma, err)
		}
	}
	return conn, nil
}

// Migrate brings the schema of conn up to date for dialect d.
//
// PostgreSQL runs the embedded goose migrations; SQLite applies an idempotent DDL script.
func Migrate(ctx context.Context, conn *sql.DB, d Dialect) error {
	switch d.Name {
	case Postgres.Name:
		goose.SetBaseFS(db.Migrations)
		defer goose.SetBaseFS(nil)
		if err := goose.SetDialect("postgres"); err != nil {
			return fmt.Errorf("goose dialect: %w", err)
		}
		if err := goose.UpContext(ctx, conn, "migrations"); err != nil {
			return fmt.Errorf("goose up: %w", err)
		}
		return nil
	case SQLite.Name:
		if _, err := conn.ExecContext(ctx, sqliteSchema); err != nil {
			return fmt.Errorf("sqlite: migrate: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("migrate: unsupported dialect %q", d.Name)
	}
}

// DialectFor maps a configured driver name to its Dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case Postgres.Name:
		return Postgres, nil
	case SQLite.Name:
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported storage driver %q", driver)
	}
}
