package export

import (
	"errors"
	"strings"
	"testing"
	"time"

	"RateScope/internal/chart"
	"RateScope/internal/domain/models"
)

func f(v float64) *float64 { return &v }

func testSnapshot() *models.Snapshot {
	return &models.Snapshot{
		ComputedAt:      time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Params:          models.RuleParameters{Rho: 0.8, RStar: 1.5, Alpha: 1.5, Beta: 0.5},
		Window:          models.DateWindow{From: "2020-01", To: "2020-03"},
		Periods:         []string{"2020-01", "2020-02", "2020-03"},
		ActualRate:      []*float64{f(2.0), f(2.25), nil},
		ImpliedRate:     []*float64{f(2.1234), nil, f(2.5)},
		Inflation:       []*float64{f(3.0), f(3.2), f(3.4)},
		InflationTarget: []*float64{f(2.0), f(2.0), f(2.0)},
		OutputGrowth:    []*float64{f(1.0), f(-0.5), nil},
	}
}

func TestBuildTableRateChart(t *testing.T) {
	table, err := BuildTable(testSnapshot(), chart.ChartRate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(table.MetaLines) != 3 {
		t.Fatalf("got %d meta lines, want 3 (title, window, coefficients)", len(table.MetaLines))
	}
	if !strings.Contains(table.MetaLines[2], "rho=0,8") {
		t.Fatalf("coefficients line %q missing rho", table.MetaLines[2])
	}
	if len(table.Headers) != 3 {
		t.Fatalf("got %d headers, want 3", len(table.Headers))
	}
	if len(table.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(table.Rows))
	}
	if table.Rows[1].Values[1] != nil {
		t.Fatal("missing implied value should stay nil")
	}
}

func TestBuildTableSecondaryChartsOmitCoefficients(t *testing.T) {
	for _, id := range []string{chart.ChartInflation, chart.ChartOutput} {
		table, err := BuildTable(testSnapshot(), id)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", id, err)
		}
		if len(table.MetaLines) != 2 {
			t.Fatalf("%s: got %d meta lines, want 2", id, len(table.MetaLines))
		}
	}
}

func TestBuildTableOutputChartHasOneValueColumn(t *testing.T) {
	table, err := BuildTable(testSnapshot(), chart.ChartOutput)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Headers) != 2 {
		t.Fatalf("got %d headers, want 2", len(table.Headers))
	}
	if got := len(table.Rows[0].Values); got != 1 {
		t.Fatalf("got %d value columns, want 1", got)
	}
}

func TestBuildTableUnknownChart(t *testing.T) {
	_, err := BuildTable(testSnapshot(), "volume")
	if !errors.Is(err, ErrUnknownChart) {
		t.Fatalf("got %v, want ErrUnknownChart", err)
	}
}

func TestFormatNumberComma(t *testing.T) {
	if got := formatNumber(2.1234); got != "2,1234" {
		t.Fatalf("got %q, want %q", got, "2,1234")
	}
	if got := formatNumber(-3.0); got != "-3" {
		t.Fatalf("got %q, want %q", got, "-3")
	}
}
