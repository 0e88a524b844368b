package report

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/spimexpulse/internal/report/reporttest"
)

func englishLayout() Layout {
	return Layout{
		SkipRows:     0,
		DateMarker:   "Trade date:",
		FooterMarker: "Total",
		Columns: map[string]Field{
			"Code\nInstrument":  FieldExchangeProductID,
			"Name\nInstrument":  FieldExchangeProductName,
			"Basis\nDelivery":   FieldDeliveryBasisID,
			"Volume\nContracts": FieldVolume,
			"Total\nContracts":  FieldTotal,
			"Price\nBids":       FieldDeliveryTypeID,
			"Count\nContracts":  FieldCount,
		},
	}
}

var englishHeader = []string{
	"Code\nInstrument", "Name\nInstrument", "Basis\nDelivery",
	"Volume\nContracts", "Total\nContracts", "Price\nBids", "Count\nContracts",
}

func TestParseRecords_SingleRow(t *testing.T) {
	p := NewParser(englishLayout())
	sheet := Sheet{
		englishHeader,
		{"A100XYZ", "Product A", "BASIS1", "-", "1000", "500000", "10"},
	}
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	recs, err := p.ParseRecords(sheet, date)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	r := recs[0]
	assert.Equal(t, "A100XYZ", r.ExchangeProductID)
	assert.Equal(t, "Product A", r.ExchangeProductName)
	require.NotNil(t, r.OilID)
	assert.Equal(t, "A100", *r.OilID)
	assert.Equal(t, "BASIS1", r.DeliveryBasisID)
	assert.Equal(t, "", r.DeliveryBasisName)
	assert.Nil(t, r.Volume)
	require.NotNil(t, r.Total)
	assert.Equal(t, 1000.0, *r.Total)
	require.NotNil(t, r.DeliveryTypeID)
	assert.Equal(t, "500000", *r.DeliveryTypeID)
	require.NotNil(t, r.Count)
	assert.Equal(t, int64(10), *r.Count)
	assert.True(t, r.TradeDate.Equal(date))
}

func TestParseRecords_ExcludesFooterRows(t *testing.T) {
	p := NewParser(englishLayout())
	sheet := Sheet{
		englishHeader,
		{"A100XYZ", "Product A", "BASIS1", "1", "2", "3", "4"},
		{"Total:", "Product A", "BASIS1", "1", "2", "3", "4"},
		{"Section Total", "everything", "ALL", "10", "20", "", "40"},
	}

	recs, err := p.ParseRecords(sheet, time.Now())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "A100XYZ", recs[0].ExchangeProductID)
}

func TestParseRecords_DropsRowsMissingIdentity(t *testing.T) {
	p := NewParser(englishLayout())
	sheet := Sheet{
		englishHeader,
		{"", "Product A", "BASIS1", "1", "2", "3", "4"},
		{"B200", "-", "BASIS1", "1", "2", "3", "4"},
		{"C300", "Product C", " ", "1", "2", "3", "4"},
		{"D400", "Product D", "BASIS4"},
	}

	recs, err := p.ParseRecords(sheet, time.Now())
	require.NoError(t, err)
	require.Len(t, recs, 1)

	r := recs[0]
	assert.Equal(t, "D400", r.ExchangeProductID)
	assert.Nil(t, r.Volume)
	assert.Nil(t, r.Total)
	assert.Nil(t, r.Count)
	assert.Nil(t, r.DeliveryTypeID)
}

func TestParseRecords_CoercionFailuresAreNull(t *testing.T) {
	p := NewParser(englishLayout())
	sheet := Sheet{
		englishHeader,
		{"A1", "short id", "B", "n/a", "1,234,567.5", "x", "12.0"},
		{"E500", "Product E", "B", "12.5", "abc", "x", "many"},
		{"F600", "Product F", "B", "1", "2", "x", "10.7"},
	}

	recs, err := p.ParseRecords(sheet, time.Now())
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, "A1", *recs[0].OilID)
	assert.Nil(t, recs[0].Volume)
	assert.Equal(t, 1234567.5, *recs[0].Total)
	assert.Equal(t, int64(12), *recs[0].Count)

	assert.Equal(t, 12.5, *recs[1].Volume)
	assert.Nil(t, recs[1].Total)
	assert.Nil(t, recs[1].Count)

	assert.Nil(t, recs[2].Count, "fractional counts are not truncated")
}

func TestParseRecords_MissingColumns(t *testing.T) {
	p := NewParser(englishLayout())
	sheet := Sheet{
		englishHeader[:5],
		{"A100XYZ", "Product A", "BASIS1", "1", "2"},
	}

	_, err := p.ParseRecords(sheet, time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumns))
	assert.Contains(t, err.Error(), "delivery_type_id")
	assert.Contains(t, err.Error(), "count")
}

func TestParseRecords_NoHeader(t *testing.T) {
	p := NewDefaultParser()
	_, err := p.ParseRecords(Sheet{{"a"}, {"b"}}, time.Now())
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestMapColumns_ForwardFillKeepsFirstColumn(t *testing.T) {
	p := NewParser(englishLayout())
	header := []string{"", "Code\nInstrument", "Name\nInstrument", "Basis\nDelivery",
		"Volume\nContracts", "Total\nContracts", "Price\nBids", "", " Count\r\nContracts "}

	cols, err := p.mapColumns(header)
	require.NoError(t, err)
	assert.Equal(t, 1, cols[FieldExchangeProductID])
	assert.Equal(t, 6, cols[FieldDeliveryTypeID])
	assert.Equal(t, 8, cols[FieldCount])
}

func TestExtractTradeDate(t *testing.T) {
	p := NewParser(englishLayout())
	cases := []struct {
		name  string
		sheet Sheet
		want  time.Time
		ok    bool
	}{
		{
			name:  "marker in a later row",
			sheet: Sheet{{"Bulletin"}, {"", "Trade date: 15.03.2024"}},
			want:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "first match in row-major order wins",
			sheet: Sheet{{"x", "Trade date: 01.02.2024"}, {"Trade date: 03.04.2024"}},
			want:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "impossible date is skipped",
			sheet: Sheet{{"Trade date: 31.02.2024"}, {"Trade date: 10.01.2024"}},
			want:  time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "date before the marker does not count",
			sheet: Sheet{{"15.03.2024 Trade date:"}},
		},
		{
			name:  "no marker",
			sheet: Sheet{{"15.03.2024"}, {"nothing here"}},
		},
		{
			name: "empty sheet",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := p.ExtractTradeDate(tc.sheet)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.True(t, got.Equal(tc.want), "got %v want %v", got, tc.want)
			}
		})
	}
}

func TestDefaultBulletin_EndToEnd(t *testing.T) {
	content := reporttest.Bulletin(t, "10.01.2024", [][]any{
		{"A592UFM060F", "Бензин (АИ-92-К5)", "Уфа-группа станций", 60.0, 3840000.0, "-", 64000.0, "", 1},
		{"DSC5ANK065F", "ДТ (ДТ-Е-К5)", "ст. Комсомольск", "-", "-", "", "-", "", "-"},
	})

	sheet, err := Decode(content)
	require.NoError(t, err)

	p := NewDefaultParser()
	date, ok := p.ExtractTradeDate(sheet)
	require.True(t, ok)
	assert.True(t, date.Equal(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)))

	recs, err := p.ParseRecords(sheet, date)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	first := recs[0]
	assert.Equal(t, "A592UFM060F", first.ExchangeProductID)
	assert.Equal(t, "A592", *first.OilID)
	assert.Equal(t, "Уфа-группа станций", first.DeliveryBasisID)
	assert.Equal(t, 60.0, *first.Volume)
	assert.Equal(t, 3840000.0, *first.Total)
	assert.Equal(t, "64000", *first.DeliveryTypeID)
	assert.Equal(t, int64(1), *first.Count)

	second := recs[1]
	assert.Equal(t, "DSC5", *second.OilID)
	assert.Nil(t, second.Volume)
	assert.Nil(t, second.Total)
	assert.Nil(t, second.DeliveryTypeID)
	assert.Nil(t, second.Count)
}

func TestParseFile_AndExtractFileTradeDate(t *testing.T) {
	dir := t.TempDir()

	dated := filepath.Join(dir, "dated.xls")
	require.NoError(t, os.WriteFile(dated, reporttest.Bulletin(t, "05.06.2024", [][]any{
		{"A100NVY005A", "Бензин", "Новый Уренгой", 5.0, 100.0, "", 20.0, "", 2},
	}), 0o644))

	undated := filepath.Join(dir, "undated.xls")
	require.NoError(t, os.WriteFile(undated, reporttest.Bulletin(t, "", nil), 0o644))

	p := NewDefaultParser()

	d, err := p.ExtractFileTradeDate(dated)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-05", d.Format("2006-01-02"))

	recs, err := p.ParseFile(dated, d)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "A100", *recs[0].OilID)

	_, err = p.ExtractFileTradeDate(undated)
	assert.ErrorIs(t, err, ErrDateNotFound)

	_, err = p.ParseFile(filepath.Join(dir, "missing.xls"), d)
	assert.Error(t, err)
}

func TestDecode_UnknownFormat(t *testing.T) {
	_, err := Decode([]byte("<html>not a workbook</html>"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Decode(nil)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestDecode_TruncatedWorkbooks(t *testing.T) {
	_, err := Decode([]byte("PK\x03\x04garbage"))
	assert.Error(t, err)

	_, err = Decode(append(append([]byte{}, oleMagic...), 0, 1, 2, 3))
	assert.Error(t, err)
}

func TestSheetCell_OutOfRange(t *testing.T) {
	s := Sheet{{"a"}, nil}
	assert.Equal(t, "a", s.Cell(0, 0))
	assert.Equal(t, "", s.Cell(0, 5))
	assert.Equal(t, "", s.Cell(1, 0))
	assert.Equal(t, "", s.Cell(9, 0))
	assert.Equal(t, "", s.Cell(-1, 0))
}
