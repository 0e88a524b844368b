package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/guttosm/spimexpulse/internal/domain/models"
)

const dateLayout = "2006-01-02"

// Dialect captures the SQL differences between the supported backends.
type Dialect struct {
	Name string
	// bind returns the n-th (1-based) positional placeholder.
	bind func(n int) string
	// date converts a trade date into the driver argument stored in the date column.
	date func(time.Time) any
}

var (
	// Postgres uses $n placeholders and native DATE values (lib/pq).
	Postgres = Dialect{
		Name: "postgres",
		bind: func(n int) string { return fmt.Sprintf("$%d", n) },
		date: func(t time.Time) any { return models.TradeDate(t) },
	}
	// SQLite uses ? placeholders and ISO-8601 text dates (modernc.org/sqlite).
	SQLite = Dialect{
		Name: "sqlite",
		bind: func(int) string { return "?" },
		date: func(t time.Time) any { return models.TradeDate(t).Format(dateLayout) },
	}
)

const columns = "exchange_product_id, exchange_product_name, oil_id, delivery_basis_id, " +
	"delivery_basis_name, delivery_type_id, volume, total, count, date"

type queries struct {
	exists    string
	insert    string
	listByDay string
	listDates string
}

func buildQueries(d Dialect) queries {
	binds := make([]string, 10)
	for i := range binds {
		binds[i] = d.bind(i + 1)
	}
	return queries{
		exists: fmt.Sprintf(
			"SELECT EXISTS(SELECT 1 FROM spimex_trading_results WHERE date = %s)", d.bind(1)),
		insert: fmt.Sprintf(
			"INSERT INTO spimex_trading_results (%s) VALUES (%s)", columns, strings.Join(binds, ", ")),
		listByDay: fmt.Sprintf(
			"SELECT %s FROM spimex_trading_results WHERE date = %s ORDER BY id", columns, d.bind(1)),
		listDates: fmt.Sprintf(
			"SELECT date, COUNT(*), COALESCE(SUM(volume), 0), COALESCE(SUM(total), 0), COALESCE(SUM(count), 0) "+
				"FROM spimex_trading_results GROUP BY date ORDER BY date DESC LIMIT %s", d.bind(1)),
	}
}

// TradeResultsRepository is the storage boundary of the trade results table.
//
// The ingestion pipeline only writes through a Tx; the API only reads.
type TradeResultsRepository interface {
	// Begin opens the single transaction a pipeline run stages its inserts in.
	Begin(ctx context.Context) (Tx, error)
	// ListByDate returns every row stored for the trade date, in insertion order.
	ListByDate(ctx context.Context, date time.Time) ([]models.TradeRecord, error)
	// ListDates returns per-date summaries, newest first, at most limit entries.
	ListDates(ctx context.Context, limit int) ([]models.TradeDateSummary, error)
	// Ping checks that the database is reachable.
	Ping(ctx context.Context) error
}

// Tx stages trade rows until Commit.
type Tx interface {
	// ExistsForDate reports whether any row (committed or staged in this Tx) has the trade date.
	ExistsForDate(ctx context.Context, date time.Time) (bool, error)
	Insert(ctx context.Context, rec models.TradeRecord) error
	Commit() error
	Rollback() error
}

type tradeResultsRepository struct {
	db      *sql.DB
	dialect Dialect
	q       queries
}

// NewTradeResultsRepository returns a repository over db using the SQL dialect d.
func NewTradeResultsRepository(db *sql.DB, d Dialect) TradeResultsRepository {
	return &tradeResultsRepository{db: db, dialect: d, q: buildQueries(d)}
}

func (r *tradeResultsRepository) Begin(ctx context.Context) (Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	return &tradeResultsTx{tx: tx, dialect: r.dialect, q: r.q}, nil
}

func (r *tradeResultsRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ListByDate returns the stored rows of a trade date.
func (r *tradeResultsRepository) ListByDate(ctx context.Context, date time.Time) ([]models.TradeRecord, error) {
	rows, err := r.db.QueryContext(ctx, r.q.listByDay, r.dialect.date(date))
	if err != nil {
		return nil, fmt.Errorf("list by date: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.TradeRecord
	for rows.Next() {
		var (
			rec                   models.TradeRecord
			oilID, deliveryTypeID sql.NullString
			volume, total         sql.NullFloat64
			count                 sql.NullInt64
			day                   any
		)
		if err := rows.Scan(
			&rec.ExchangeProductID,
			&rec.ExchangeProductName,
			&oilID,
			&rec.DeliveryBasisID,
			&rec.DeliveryBasisName,
			&deliveryTypeID,
			&volume,
			&total,
			&count,
			&day,
		); err != nil {
			return nil, fmt.Errorf("list by date: scan: %w", err)
		}
		if rec.TradeDate, err = scanDate(day); err != nil {
			return nil, fmt.Errorf("list by date: %w", err)
		}
		rec.OilID = nullString(oilID)
		rec.DeliveryTypeID = nullString(deliveryTypeID)
		rec.Volume = nullFloat(volume)
		rec.Total = nullFloat(total)
		rec.Count = nullInt(count)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list by date: %w", err)
	}
	return out, nil
}

// ListDates summarizes the stored trade dates, newest first.
func (r *tradeResultsRepository) ListDates(ctx context.Context, limit int) ([]models.TradeDateSummary, error) {
	rows, err := r.db.QueryContext(ctx, r.q.listDates, limit)
	if err != nil {
		return nil, fmt.Errorf("list dates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.TradeDateSummary
	for rows.Next() {
		var (
			s   models.TradeDateSummary
			day any
		)
		if err := rows.Scan(&day, &s.Rows, &s.Volume, &s.Total, &s.Count); err != nil {
			return nil, fmt.Errorf("list dates: scan: %w", err)
		}
		if s.TradeDate, err = scanDate(day); err != nil {
			return nil, fmt.Errorf("list dates: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list dates: %w", err)
	}
	return out, nil
}

type tradeResultsTx struct {
	tx      *sql.Tx
	dialect Dialect
	q       queries
}

func (t *tradeResultsTx) ExistsForDate(ctx context.Context, date time.Time) (bool, error) {
	var exists bool
	if err := t.tx.QueryRowContext(ctx, t.q.exists, t.dialect.date(date)).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists for date %s: %w", date.Format(dateLayout), err)
	}
	return exists, nil
}

func (t *tradeResultsTx) Insert(ctx context.Context, rec models.TradeRecord) error {
	_, err := t.tx.ExecContext(ctx, t.q.insert,
		rec.ExchangeProductID,
		rec.ExchangeProductName,
		rec.OilID,
		rec.DeliveryBasisID,
		rec.DeliveryBasisName,
		rec.DeliveryTypeID,
		rec.Volume,
		rec.Total,
		rec.Count,
		t.dialect.date(rec.TradeDate),
	)
	if err != nil {
		return fmt.Errorf("insert %s/%s: %w", rec.ExchangeProductID, rec.DeliveryBasisID, err)
	}
	return nil
}

func (t *tradeResultsTx) Commit() error { return t.tx.Commit() }

func (t *tradeResultsTx) Rollback() error { return t.tx.Rollback() }

// scanDate accepts the representations drivers return for the date column:
// time.Time (lib/pq, typed sqlite columns) or ISO-8601 text.
func scanDate(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return models.TradeDate(x), nil
	case string:
		return parseDay(x)
	case []byte:
		return parseDay(string(x))
	default:
		return time.Time{}, fmt.Errorf("unexpected date value %T", v)
	}
}

func parseDay(s string) (time.Time, error) {
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}
