package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// utf8BOM makes spreadsheet applications detect the encoding instead
// of assuming the platform codepage.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// EncodeCSV renders the table as semicolon-delimited text with comma
// decimal separators, CRLF line endings and a UTF-8 byte-order mark.
// The semicolon delimiter is what keeps the comma decimals unambiguous.
func EncodeCSV(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	w.Comma = ';'
	w.UseCRLF = true

	for _, line := range t.MetaLines {
		if err := w.Write([]string{line}); err != nil {
			return nil, fmt.Errorf("write meta line: %w", err)
		}
	}
	if err := w.Write([]string{""}); err != nil {
		return nil, fmt.Errorf("write separator: %w", err)
	}
	if err := w.Write(t.Headers); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for _, row := range t.Rows {
		record := make([]string, 1+len(row.Values))
		record[0] = row.Period
		for i, v := range row.Values {
			if v != nil {
				record[i+1] = formatNumber(*v)
			}
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write row %s: %w", row.Period, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush: %w", err)
	}
	return buf.Bytes(), nil
}
