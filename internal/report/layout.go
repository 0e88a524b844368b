package report

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Field is the canonical name of a bulletin column.
type Field string

const (
	FieldExchangeProductID   Field = "exchange_product_id"
	FieldExchangeProductName Field = "exchange_product_name"
	FieldDeliveryBasisID     Field = "delivery_basis_id"
	FieldVolume              Field = "volume"
	FieldTotal               Field = "total"
	FieldDeliveryTypeID      Field = "delivery_type_id"
	FieldCount               Field = "count"
)

// requiredFields lists every canonical column a bulletin must carry, in output order.
var requiredFields = []Field{
	FieldExchangeProductID,
	FieldExchangeProductName,
	FieldDeliveryBasisID,
	FieldVolume,
	FieldTotal,
	FieldDeliveryTypeID,
	FieldCount,
}

// Layout describes the fixed shape of a bulletin sheet.
//
// Fields:
//   - SkipRows: leading non-data rows before the header row.
//   - DateMarker: text that precedes the DD.MM.YYYY trade date somewhere in the sheet.
//   - FooterMarker: product-id substring of subtotal/total rows.
//   - Columns: localized header text → canonical field. Lookups ignore surrounding
//     whitespace, CRLF vs LF and Unicode composition differences.
type Layout struct {
	SkipRows     int
	DateMarker   string
	FooterMarker string
	Columns      map[string]Field
}

// DefaultLayout is the oil-products section bulletin as published by the exchange.
func DefaultLayout() Layout {
	return Layout{
		SkipRows:     6,
		DateMarker:   "Дата торгов:",
		FooterMarker: "Итого",
		Columns: map[string]Field{
			"Код\nИнструмента":                        FieldExchangeProductID,
			"Наименование\nИнструмента":               FieldExchangeProductName,
			"Базис\nпоставки":                         FieldDeliveryBasisID,
			"Объем\nДоговоров\nв единицах\nизмерения": FieldVolume,
			"Обьем\nДоговоров,\nруб.":                 FieldTotal,
			"Цена в Заявках (за единицу\nизмерения)":  FieldDeliveryTypeID,
			"Количество\nДоговоров,\nшт.":             FieldCount,
		},
	}
}

// normalizeHeader canonicalizes header text before dictionary lookup.
func normalizeHeader(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return norm.NFC.String(strings.TrimSpace(s))
}

// index builds the normalized lookup table for l.Columns.
func (l Layout) index() map[string]Field {
	out := make(map[string]Field, len(l.Columns))
	for header, f := range l.Columns {
		out[normalizeHeader(header)] = f
	}
	return out
}
