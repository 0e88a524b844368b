package report

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/extrame/xls"
	"github.com/tealeg/xlsx/v2"
)

// Sheet is the first worksheet of a bulletin, as text cells in row-major order.
// Rows may have different lengths; missing trailing cells read as "".
type Sheet [][]string

// Cell returns the text at (row, col) or "" when out of range.
func (s Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s) || col < 0 || col >= len(s[row]) {
		return ""
	}
	return s[row][col]
}

var (
	// ErrUnknownFormat is returned when a payload is neither an OOXML workbook nor a legacy BIFF workbook.
	ErrUnknownFormat = errors.New("report: unknown spreadsheet format")
	// ErrNoSheets is returned when a workbook has no worksheet to read.
	ErrNoSheets = errors.New("report: workbook has no sheets")
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Decode reads the first worksheet of an .xlsx or .xls payload.
//
// The format is sniffed from the leading bytes, not from a file extension: the exchange
// serves legacy .xls bulletins, while fixtures and re-exports are usually .xlsx.
func Decode(content []byte) (Sheet, error) {
	switch {
	case bytes.HasPrefix(content, zipMagic):
		return decodeXLSX(content)
	case bytes.HasPrefix(content, oleMagic):
		return decodeXLS(content)
	default:
		return nil, ErrUnknownFormat
	}
}

// ReadFile decodes the workbook stored at path.
func ReadFile(path string) (Sheet, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(content)
}

func decodeXLSX(content []byte) (Sheet, error) {
	f, err := xlsx.OpenBinary(content)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open: %w", err)
	}
	if len(f.Sheets) == 0 {
		return nil, ErrNoSheets
	}

	ws := f.Sheets[0]
	out := make(Sheet, 0, len(ws.Rows))
	for _, row := range ws.Rows {
		if row == nil {
			out = append(out, nil)
			continue
		}
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			if cell == nil {
				continue
			}
			// Numeric cells keep their raw value; the display format may add separators.
			if cell.Type() == xlsx.CellTypeNumeric {
				cells[j] = cell.Value
				continue
			}
			cells[j] = cell.String()
		}
		out = append(out, cells)
	}
	return out, nil
}

func decodeXLS(content []byte) (sheet Sheet, err error) {
	// extrame/xls panics on some truncated streams.
	defer func() {
		if r := recover(); r != nil {
			sheet, err = nil, fmt.Errorf("xls: malformed workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(content), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("xls: open: %w", err)
	}
	ws := wb.GetSheet(0)
	if ws == nil {
		return nil, ErrNoSheets
	}

	out := make(Sheet, 0, int(ws.MaxRow)+1)
	for i := 0; i <= int(ws.MaxRow); i++ {
		row := ws.Row(i)
		if row == nil {
			out = append(out, nil)
			continue
		}
		last := row.LastCol()
		if last < 0 {
			last = 0
		}
		cells := make([]string, last)
		for j := row.FirstCol(); j < last; j++ {
			cells[j] = row.Col(j)
		}
		out = append(out, cells)
	}
	return out, nil
}
