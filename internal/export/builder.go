package export

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"RateScope/internal/chart"
	"RateScope/internal/domain/models"
)

// ErrUnknownChart marks an export request for a chart id nobody
// registered. Callers log it and return an empty result instead of
// failing the session.
var ErrUnknownChart = errors.New("unknown chart id")

// Row is one windowed period with its chart's value columns. Nil
// values become empty fields in text output and empty cells in the
// workbook.
type Row struct {
	Period string
	Values []*float64
}

// Table is the encoding-independent form of a data export: metadata
// lines, a header row and the data rows, in that vertical order.
type Table struct {
	MetaLines []string
	Headers   []string
	Rows      []Row
}

// BuildTable assembles the export table for one chart from the latest
// snapshot. The rate chart additionally carries the active
// coefficients in its metadata.
func BuildTable(snap *models.Snapshot, chartID string) (*Table, error) {
	var (
		title   string
		headers []string
		columns [][]*float64
	)
	switch chartID {
	case chart.ChartRate:
		title = "Policy rate: actual vs. rule-implied"
		headers = []string{"Period", chart.SeriesActual, chart.SeriesImplied}
		columns = [][]*float64{snap.ActualRate, snap.ImpliedRate}
	case chart.ChartInflation:
		title = "CPI inflation and target"
		headers = []string{"Period", chart.SeriesInflation, chart.SeriesTarget}
		columns = [][]*float64{snap.Inflation, snap.InflationTarget}
	case chart.ChartOutput:
		title = "Real GDP growth"
		headers = []string{"Period", chart.SeriesOutput}
		columns = [][]*float64{snap.OutputGrowth}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownChart, chartID)
	}

	meta := []string{
		title,
		fmt.Sprintf("Generated %s, window %s to %s",
			snap.ComputedAt.Format("2006-01-02 15:04 UTC"),
			snap.Window.From, snap.Window.To),
	}
	if chartID == chart.ChartRate {
		meta = append(meta, fmt.Sprintf("rho=%s | rstar=%s | alpha=%s | beta=%s",
			formatNumber(snap.Params.Rho), formatNumber(snap.Params.RStar),
			formatNumber(snap.Params.Alpha), formatNumber(snap.Params.Beta)))
	}

	rows := make([]Row, len(snap.Periods))
	for i, p := range snap.Periods {
		values := make([]*float64, len(columns))
		for j, col := range columns {
			values[j] = col[i]
		}
		rows[i] = Row{Period: p, Values: values}
	}

	return &Table{MetaLines: meta, Headers: headers, Rows: rows}, nil
}

// formatNumber renders a value at full precision with a comma decimal
// separator, matching the text export's locale convention.
func formatNumber(v float64) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', -1, 64), ".", ",", 1)
}
