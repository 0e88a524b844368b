package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/guttosm/spimexpulse/internal/domain/models"
)

type dummyErr struct{}

func (dummyErr) Error() string { return "dummy" }

func strp(s string) *string   { return &s }
func f64p(f float64) *float64 { return &f }
func i64p(n int64) *int64     { return &n }

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func newMockRepo(t *testing.T) (*tradeResultsRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	repo := NewTradeResultsRepository(db, Postgres).(*tradeResultsRepository)
	cleanup := func() { _ = db.Close() }
	return repo, mock, cleanup
}

func TestBuildQueries_Placeholders(t *testing.T) {
	pg := buildQueries(Postgres)
	if pg.exists != "SELECT EXISTS(SELECT 1 FROM spimex_trading_results WHERE date = $1)" {
		t.Fatalf("unexpected postgres exists query: %s", pg.exists)
	}
	if !regexp.MustCompile(`VALUES \(\$1, \$2, .*\$10\)$`).MatchString(pg.insert) {
		t.Fatalf("unexpected postgres insert query: %s", pg.insert)
	}

	lite := buildQueries(SQLite)
	if lite.exists != "SELECT EXISTS(SELECT 1 FROM spimex_trading_results WHERE date = ?)" {
		t.Fatalf("unexpected sqlite exists query: %s", lite.exists)
	}
	if !regexp.MustCompile(`VALUES \(\?(, \?){9}\)$`).MatchString(lite.insert) {
		t.Fatalf("unexpected sqlite insert query: %s", lite.insert)
	}
}

func TestTx_ExistsInsertCommit_SQLMock(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	d := day(2024, 1, 10)
	rec := models.TradeRecord{
		ExchangeProductID:   "A100ANK060F",
		ExchangeProductName: "Бензин",
		OilID:               strp("A100"),
		DeliveryBasisID:     "ANK",
		Volume:              f64p(60),
		Count:               i64p(1),
		TradeDate:           d,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM spimex_trading_results WHERE date = $1)")).
		WithArgs(d).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO spimex_trading_results (exchange_product_id, exchange_product_name, oil_id, delivery_basis_id, delivery_basis_name, delivery_type_id, volume, total, count, date)")).
		WithArgs("A100ANK060F", "Бензин", "A100", "ANK", "", nil, 60.0, nil, int64(1), d).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := repo.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	exists, err := tx.ExistsForDate(ctx, d)
	if err != nil || exists {
		t.Fatalf("ExistsForDate: exists=%v err=%v", exists, err)
	}
	if err := tx.Insert(ctx, rec); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTx_Errors_SQLMock(t *testing.T) {
	t.Run("begin", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()
		mock.ExpectBegin().WillReturnError(dummyErr{})
		if _, err := repo.Begin(context.Background()); !errors.Is(err, dummyErr{}) {
			t.Fatalf("expected wrapped begin error, got %v", err)
		}
	})

	t.Run("exists", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT EXISTS").WillReturnError(dummyErr{})
		mock.ExpectRollback()

		tx, err := repo.Begin(context.Background())
		if err != nil {
			t.Fatalf("begin: %v", err)
		}
		if _, err := tx.ExistsForDate(context.Background(), day(2024, 1, 10)); !errors.Is(err, dummyErr{}) {
			t.Fatalf("expected exists error, got %v", err)
		}
		if err := tx.Rollback(); err != nil {
			t.Fatalf("rollback: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	})

	t.Run("insert", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO spimex_trading_results").WillReturnError(dummyErr{})

		tx, err := repo.Begin(context.Background())
		if err != nil {
			t.Fatalf("begin: %v", err)
		}
		err = tx.Insert(context.Background(), models.TradeRecord{ExchangeProductID: "X", DeliveryBasisID: "B"})
		if !errors.Is(err, dummyErr{}) {
			t.Fatalf("expected insert error, got %v", err)
		}
	})
}

func TestListByDate_SQLMock(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	d := day(2024, 3, 15)
	cols := []string{"exchange_product_id", "exchange_product_name", "oil_id", "delivery_basis_id",
		"delivery_basis_name", "delivery_type_id", "volume", "total", "count", "date"}
	rows := sqlmock.NewRows(cols).
		AddRow("A100ANK060F", "Бензин", "A100", "ANK", "", nil, 60.0, 4500000.0, int64(1), d).
		AddRow("DSC5ANK065F", "ДТ", "DSC5", "ANK", "", "64000", nil, nil, nil, "2024-03-15")

	mock.ExpectQuery(regexp.QuoteMeta("FROM spimex_trading_results WHERE date = $1 ORDER BY id")).
		WithArgs(d).WillReturnRows(rows)

	out, err := repo.ListByDate(context.Background(), d)
	if err != nil {
		t.Fatalf("ListByDate: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("want 2 rows, got %d", len(out))
	}
	if *out[0].OilID != "A100" || *out[0].Volume != 60 || *out[0].Count != 1 || out[0].DeliveryTypeID != nil {
		t.Fatalf("unexpected first row: %+v", out[0])
	}
	if out[1].Volume != nil || out[1].Count != nil || *out[1].DeliveryTypeID != "64000" {
		t.Fatalf("unexpected second row: %+v", out[1])
	}
	for _, r := range out {
		if !r.TradeDate.Equal(d) {
			t.Fatalf("unexpected trade date %v", r.TradeDate)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListDates_SQLMock(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	rows := sqlmock.NewRows([]string{"date", "count", "volume", "total", "count"}).
		AddRow(day(2024, 1, 11), int64(3), 10.5, 1000.0, int64(4)).
		AddRow([]byte("2024-01-10"), int64(1), 0.0, 0.0, int64(0))

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY date ORDER BY date DESC LIMIT $1")).
		WithArgs(5).WillReturnRows(rows)

	out, err := repo.ListDates(context.Background(), 5)
	if err != nil {
		t.Fatalf("ListDates: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("want 2 summaries, got %d", len(out))
	}
	if !out[0].TradeDate.Equal(day(2024, 1, 11)) || out[0].Rows != 3 || out[0].Volume != 10.5 || out[0].Count != 4 {
		t.Fatalf("unexpected first summary: %+v", out[0])
	}
	if !out[1].TradeDate.Equal(day(2024, 1, 10)) {
		t.Fatalf("unexpected second summary: %+v", out[1])
	}
}

func TestListDates_QueryError(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectQuery("GROUP BY date").WillReturnError(dummyErr{})
	if _, err := repo.ListDates(context.Background(), 5); !errors.Is(err, dummyErr{}) {
		t.Fatalf("expected query error, got %v", err)
	}
}

func TestScanDate(t *testing.T) {
	msk := time.FixedZone("MSK", 3*3600)
	cases := []struct {
		name    string
		in      any
		want    time.Time
		wantErr bool
	}{
		{name: "time", in: time.Date(2024, 1, 10, 0, 0, 0, 0, msk), want: day(2024, 1, 10)},
		{name: "text", in: "2024-01-10", want: day(2024, 1, 10)},
		{name: "text with time", in: "2024-01-10T00:00:00Z", want: day(2024, 1, 10)},
		{name: "bytes", in: []byte("2024-01-10"), want: day(2024, 1, 10)},
		{name: "garbage", in: "10.01.2024", wantErr: true},
		{name: "int", in: int64(1), wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := scanDate(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil || !got.Equal(tc.want) {
				t.Fatalf("scanDate(%v)=%v,%v want %v", tc.in, got, err, tc.want)
			}
		})
	}
}

func TestDialectFor(t *testing.T) {
	if d, err := DialectFor("postgres"); err != nil || d.Name != "postgres" {
		t.Fatalf("postgres: %v %v", d.Name, err)
	}
	if d, err := DialectFor("sqlite"); err != nil || d.Name != "sqlite" {
		t.Fatalf("sqlite: %v %v", d.Name, err)
	}
	if _, err := DialectFor("mysql"); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}
