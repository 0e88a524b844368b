package report

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/guttosm/spimexpulse/internal/domain/models"
)

var (
	// ErrDateNotFound is returned when no cell carries the date marker followed by a valid DD.MM.YYYY date.
	ErrDateNotFound = errors.New("report: trade date not found")
	// ErrMissingColumns is returned when the header row lacks one of the mapped columns.
	ErrMissingColumns = errors.New("report: missing expected columns")
	// ErrNoHeader is returned when the sheet ends before the header row.
	ErrNoHeader = errors.New("report: header row not found")
)

var datePattern = regexp.MustCompile(`\d{2}\.\d{2}\.\d{4}`)

// Parser extracts trade dates and records from bulletin sheets laid out as described by a Layout.
type Parser struct {
	layout  Layout
	columns map[string]Field
}

// NewParser returns a Parser for the given layout.
func NewParser(layout Layout) *Parser {
	return &Parser{layout: layout, columns: layout.index()}
}

// NewDefaultParser returns a Parser for the exchange's oil-products bulletin.
func NewDefaultParser() *Parser {
	return NewParser(DefaultLayout())
}

// ExtractTradeDate scans every cell in row-major order for the date marker followed by
// a DD.MM.YYYY date and returns the first valid one at UTC midnight.
func (p *Parser) ExtractTradeDate(sheet Sheet) (time.Time, bool) {
	marker := p.layout.DateMarker
	for _, row := range sheet {
		for _, cell := range row {
			i := strings.Index(cell, marker)
			if i < 0 {
				continue
			}
			for _, m := range datePattern.FindAllString(cell[i+len(marker):], -1) {
				if d, err := time.Parse("02.01.2006", m); err == nil {
					return d, true
				}
			}
		}
	}
	return time.Time{}, false
}

// ExtractFileTradeDate reads the workbook at path and returns its trade date.
func (p *Parser) ExtractFileTradeDate(path string) (time.Time, error) {
	sheet, err := ReadFile(path)
	if err != nil {
		return time.Time{}, err
	}
	d, ok := p.ExtractTradeDate(sheet)
	if !ok {
		return time.Time{}, ErrDateNotFound
	}
	return d, nil
}

// ParseFile reads the workbook at path and parses its records.
func (p *Parser) ParseFile(path string, tradeDate time.Time) ([]models.TradeRecord, error) {
	sheet, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.ParseRecords(sheet, tradeDate)
}

// ParseRecords converts the data rows of sheet into trade records stamped with tradeDate.
//
// Rules:
//   - the first SkipRows rows are ignored; the next row is the header;
//   - blank header cells inherit the nearest non-blank header on their left;
//   - when a header maps to a field more than once, the leftmost column wins;
//   - "-" and blank cells are null;
//   - rows whose product id contains the footer marker are excluded;
//   - rows missing product id, product name or delivery basis are dropped;
//   - unparsable numbers become null.
//
// Source row order is preserved.
func (p *Parser) ParseRecords(sheet Sheet, tradeDate time.Time) ([]models.TradeRecord, error) {
	headerRow := p.layout.SkipRows
	if headerRow >= len(sheet) {
		return nil, ErrNoHeader
	}

	cols, err := p.mapColumns(sheet[headerRow])
	if err != nil {
		return nil, err
	}

	date := models.TradeDate(tradeDate)
	var out []models.TradeRecord
	for r := headerRow + 1; r < len(sheet); r++ {
		get := func(f Field) *string { return nullable(sheet.Cell(r, cols[f])) }

		productID := get(FieldExchangeProductID)
		if productID != nil && p.layout.FooterMarker != "" && strings.Contains(*productID, p.layout.FooterMarker) {
			continue
		}
		name := get(FieldExchangeProductName)
		basis := get(FieldDeliveryBasisID)
		if productID == nil || name == nil || basis == nil {
			continue
		}

		out = append(out, models.TradeRecord{
			ExchangeProductID:   *productID,
			ExchangeProductName: *name,
			OilID:               oilID(*productID),
			DeliveryBasisID:     *basis,
			DeliveryBasisName:   "",
			DeliveryTypeID:      get(FieldDeliveryTypeID),
			Volume:              parseFloat(get(FieldVolume)),
			Total:               parseFloat(get(FieldTotal)),
			Count:               parseInt(get(FieldCount)),
			TradeDate:           date,
		})
	}
	return out, nil
}

func (p *Parser) mapColumns(header []string) (map[Field]int, error) {
	cols := make(map[Field]int, len(requiredFields))
	var last string
	for i, raw := range header {
		h := normalizeHeader(raw)
		if h == "" {
			h = last
		} else {
			last = h
		}
		f, ok := p.columns[h]
		if !ok {
			continue
		}
		if _, seen := cols[f]; !seen {
			cols[f] = i
		}
	}

	var missing []string
	for _, f := range requiredFields {
		if _, ok := cols[f]; !ok {
			missing = append(missing, string(f))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return cols, nil
}

func nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return nil
	}
	return &s
}

func oilID(productID string) *string {
	r := []rune(productID)
	if len(r) > 4 {
		r = r[:4]
	}
	s := string(r)
	return &s
}

var groupedThousands = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+(\.\d+)?$`)

func parseFloat(s *string) *float64 {
	if s == nil {
		return nil
	}
	v := strings.NewReplacer(" ", "", "\u00a0", "").Replace(*s)
	if groupedThousands.MatchString(v) {
		v = strings.ReplaceAll(v, ",", "")
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// parseInt accepts integral floats ("12.0"); fractional values are null.
func parseInt(s *string) *int64 {
	f := parseFloat(s)
	if f == nil || math.Abs(*f) >= math.MaxInt64 || *f != math.Trunc(*f) {
		return nil
	}
	n := int64(*f)
	return &n
}
