package spreadsheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row maps a header to the cell text of one data row.
type Row map[string]string

// Sheet is the content of an uploaded order sheet.
type Sheet struct {
	Headers []string
	Rows    []Row
	// Numeric marks, per row, the headers whose cells the workbook stores
	// as numbers. Only those cells may hold Excel date serials.
	Numeric []map[string]bool
}

// NumericCells returns the numeric markers of row i, or nil when the sheet
// carries none for it.
func (s *Sheet) NumericCells(i int) map[string]bool {
	if i < 0 || i >= len(s.Numeric) {
		return nil
	}
	return s.Numeric[i]
}

// ReadSheet reads the first worksheet of an xlsx file. The first row holds
// the headers; each following row becomes one Row, blank rows included so
// that row numbers match the file. Cells are read raw, so dates stored as
// numbers arrive as Excel serials. When a header repeats, a blank cell
// never replaces a value already read for it.
func ReadSheet(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}

	out := &Sheet{}
	if len(rows) == 0 {
		return out, nil
	}

	out.Headers = make([]string, len(rows[0]))
	for i, h := range rows[0] {
		out.Headers[i] = strings.TrimSpace(h)
	}

	out.Rows = make([]Row, 0, len(rows)-1)
	out.Numeric = make([]map[string]bool, 0, len(rows)-1)
	for n, cells := range rows[1:] {
		row := make(Row, len(out.Headers))
		numeric := make(map[string]bool)
		for i, cell := range cells {
			header := ""
			if i < len(out.Headers) {
				header = out.Headers[i]
			}
			if header == "" {
				continue
			}
			if strings.TrimSpace(cell) == "" {
				if _, seen := row[header]; !seen {
					row[header] = cell
				}
				continue
			}

			row[header] = cell
			isNumber, err := numericCell(f, sheet, i+1, n+2)
			if err != nil {
				return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
			}
			numeric[header] = isNumber
		}
		out.Rows = append(out.Rows, row)
		out.Numeric = append(out.Numeric, numeric)
	}

	return out, nil
}

func numericCell(f *excelize.File, sheet string, col, row int) (bool, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false, err
	}
	typ, err := f.GetCellType(sheet, cell)
	if err != nil {
		return false, err
	}
	return typ == excelize.CellTypeUnset || typ == excelize.CellTypeNumber, nil
}

// Blank reports whether every cell of the row is empty.
func (r Row) Blank() bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
