// Package reporttest builds in-memory bulletin workbooks for tests.
package reporttest

import (
	"bytes"
	"testing"

	"github.com/tealeg/xlsx/v2"
)

// Header is the bulletin header row as published by the exchange, including the
// leading index column, the merged blank cell after the price header and an
// unmapped column.
var Header = []any{
	"",
	"Код\nИнструмента",
	"Наименование\nИнструмента",
	"Базис\nпоставки",
	"Объем\nДоговоров\nв единицах\nизмерения",
	"Обьем\nДоговоров,\nруб.",
	"Изменение рыночной\nцены к цене\nпредыдущего\nдня",
	"Цена в Заявках (за единицу\nизмерения)",
	"",
	"Количество\nДоговоров,\nшт.",
}

// Workbook encodes rows as the first sheet of an .xlsx file.
// string cells are written as text, float64 and int cells as numbers.
func Workbook(t testing.TB, rows [][]any) []byte {
	t.Helper()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("TRADE_SUMMARY")
	if err != nil {
		t.Fatalf("add sheet: %v", err)
	}
	for _, data := range rows {
		row := sheet.AddRow()
		for _, v := range data {
			cell := row.AddCell()
			switch x := v.(type) {
			case float64:
				cell.SetFloat(x)
			case int:
				cell.SetInt(x)
			case string:
				cell.SetString(x)
			default:
				t.Fatalf("unsupported cell value %T", v)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// Bulletin builds a default-layout bulletin. date is written after the
// "Дата торгов:" marker in DD.MM.YYYY form; an empty date omits the marker.
// Each data row follows Header: code, name, basis, volume, total, change,
// price, price (merged), count.
func Bulletin(t testing.TB, date string, data [][]any) []byte {
	t.Helper()

	marker := "Форма СЭТ-БТ"
	if date != "" {
		marker = "Дата торгов: " + date
	}
	rows := [][]any{
		{"", "Бюллетень по итогам торгов в Секции «Нефтепродукты»"},
		{"", "АО «Санкт-Петербургская Международная Товарно-сырьевая Биржа»"},
		{"", marker},
		{"", "Секция Биржи: «Нефтепродукты» АО «СПбМТСБ»"},
		{"", "Единица измерения: Метрическая тонна"},
		{"", "Форма СЭТ-БТ"},
		Header,
	}
	for _, d := range data {
		rows = append(rows, append([]any{""}, d...))
	}
	rows = append(rows,
		[]any{"", "Итого:", "", "", 0.0, 0.0},
		[]any{"", "Итого по секции:", "", "", 0.0, 0.0},
	)
	return Workbook(t, rows)
}
