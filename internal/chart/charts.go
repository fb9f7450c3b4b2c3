package chart

import (
	"github.com/wcharczuk/go-chart/v2/drawing"

	"RateScope/internal/domain/models"
)

// Chart and series identifiers used across the scheduler, the handlers
// and the exporters.
const (
	ChartRate      = "rate"
	ChartInflation = "inflation"
	ChartOutput    = "gdp"

	SeriesActual    = "Actual rate"
	SeriesImplied   = "Rule-implied rate"
	SeriesInflation = "CPI inflation (y/y)"
	SeriesTarget    = "Inflation target"
	SeriesOutput    = "Real GDP growth (y/y)"
)

// ReferenceWidth is the default live chart width the export scale
// factor is derived from; configuration can override it per deployment.
const ReferenceWidth = 960

var (
	colorActual   = drawing.Color{R: 0x1f, G: 0x77, B: 0xb4, A: 255}
	colorImplied  = drawing.Color{R: 0xd6, G: 0x27, B: 0x28, A: 255}
	colorCPI      = drawing.Color{R: 0xff, G: 0x7f, B: 0x0e, A: 255}
	colorTarget   = drawing.Color{R: 0x7f, G: 0x7f, B: 0x7f, A: 255}
	colorPositive = drawing.Color{R: 0x2c, G: 0xa0, B: 0x2c, A: 255}
	colorNegative = drawing.Color{R: 0xd6, G: 0x27, B: 0x28, A: 255}
)

// NewStandardRegistry builds the registry with the three charts of the
// explorer: the primary rate chart and the two parameter-free
// secondary charts. The implied series starts empty and is filled by
// the scheduler's first recompute. refWidth is the live chart width
// exports scale from; zero or negative means ReferenceWidth.
func NewStandardRegistry(ds *models.Dataset, refWidth int) (*Registry, error) {
	if refWidth <= 0 {
		refWidth = ReferenceWidth
	}
	r := NewRegistry(ds.Periods)

	charts := []*State{
		{
			ID:       ChartRate,
			Title:    "Policy rate: actual vs. rule-implied",
			Unit:     "%",
			RefWidth: refWidth,
			Series: []Series{
				{Name: SeriesActual, Values: ds.ActualRate, Style: LineStyle{Color: colorActual}, Callout: true},
				{Name: SeriesImplied, Values: make([]*float64, ds.Len()), Style: LineStyle{Color: colorImplied, Dashed: true}, Callout: true},
			},
		},
		{
			ID:       ChartInflation,
			Title:    "CPI inflation and target",
			Unit:     "%",
			RefWidth: refWidth,
			Series: []Series{
				{Name: SeriesInflation, Values: ds.Inflation, Style: LineStyle{Color: colorCPI}, Callout: true},
				{Name: SeriesTarget, Values: ds.InflationTarget, Style: LineStyle{Color: colorTarget, Dashed: true}},
			},
		},
		{
			ID:       ChartOutput,
			Title:    "Real GDP growth",
			Unit:     "%",
			RefWidth: refWidth,
			Series: []Series{
				{Name: SeriesOutput, Values: ds.OutputGrowth, Style: BarStyle{NonNegative: colorPositive, Negative: colorNegative}, Callout: true},
			},
		},
	}

	for _, c := range charts {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}
