package export

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/xuri/excelize/v2"

	"RateScope/internal/chart"
)

func TestEncodeXLSXKeepsVerticalOrder(t *testing.T) {
	table, err := BuildTable(testSnapshot(), chart.ChartRate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := EncodeXLSX(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wb, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer wb.Close()

	cell := func(ref string) string {
		t.Helper()
		v, err := wb.GetCellValue(sheetName, ref)
		if err != nil {
			t.Fatalf("read %s: %v", ref, err)
		}
		return v
	}

	// Rows 1-3 metadata, row 4 blank, row 5 header, rows 6-8 data.
	for i, want := range table.MetaLines {
		if got := cell(fmt.Sprintf("A%d", i+1)); got != want {
			t.Fatalf("meta row %d = %q, want %q", i+1, got, want)
		}
	}
	if got := cell("A4"); got != "" {
		t.Fatalf("separator row not blank: %q", got)
	}
	if got := cell("A5"); got != "Period" {
		t.Fatalf("header A5 = %q, want Period", got)
	}
	if got := cell("C5"); got != chart.SeriesImplied {
		t.Fatalf("header C5 = %q, want %q", got, chart.SeriesImplied)
	}
	if got := cell("A6"); got != "2020-01" {
		t.Fatalf("first data row A6 = %q, want 2020-01", got)
	}
	if got := cell("B6"); got != "2" {
		t.Fatalf("B6 = %q, want 2", got)
	}
	if got := cell("C6"); got != "2.1234" {
		t.Fatalf("C6 = %q, want 2.1234", got)
	}
	// Nil observations stay empty cells.
	if got := cell("C7"); got != "" {
		t.Fatalf("C7 = %q, want empty", got)
	}
	if got := cell("B8"); got != "" {
		t.Fatalf("B8 = %q, want empty", got)
	}
}
