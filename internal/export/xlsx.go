package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Data"

// sheetWriter collects cell writes and keeps the first error, so the
// happy path reads as a straight sequence.
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) str(col, row int, v string) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellStr(sheetName, cell, v)
}

func (w *sheetWriter) num(col, row int, v float64) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellFloat(sheetName, cell, v, -1, 64)
}

// EncodeXLSX renders the table as a one-sheet workbook in the same
// vertical order as the text form: metadata, a blank row, the header,
// then the data rows. Nil values stay as empty cells.
func EncodeXLSX(t *Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetColWidth(sheetName, "A", "A", 14); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}
	if len(t.Headers) > 1 {
		last, err := excelize.ColumnNumberToName(len(t.Headers))
		if err != nil {
			return nil, fmt.Errorf("column name: %w", err)
		}
		if err := f.SetColWidth(sheetName, "B", last, 22); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	w := &sheetWriter{f: f}
	row := 1
	for _, line := range t.MetaLines {
		w.str(1, row, line)
		row++
	}
	row++ // blank separator row

	for i, h := range t.Headers {
		w.str(i+1, row, h)
	}
	row++

	for _, r := range t.Rows {
		w.str(1, row, r.Period)
		for i, v := range r.Values {
			if v != nil {
				w.num(i+2, row, *v)
			}
		}
		row++
	}
	if w.err != nil {
		return nil, fmt.Errorf("fill sheet: %w", w.err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
