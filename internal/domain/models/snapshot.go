package models

import "time"

// CalloutLabel is the resolved end-of-series value annotation for one
// chart series. Recomputed on every render pass, never stored.
type CalloutLabel struct {
	Y     float64 `json:"y"`     // resolved vertical position, pixels
	Color string  `json:"color"` // CSS-style hex color
	Text  string  `json:"text"`
}

// Snapshot is what the scheduler pushes to every connected chart view
// after a debounced recompute: the windowed series, the fit statistics
// and the callout placements, all consistent with a single parameter
// and window reading.
type Snapshot struct {
	ComputedAt time.Time      `json:"computed_at"`
	Params     RuleParameters `json:"params"`
	Window     DateWindow     `json:"window"`

	Periods         []string   `json:"dates"`
	ActualRate      []*float64 `json:"actual_rate"`
	ImpliedRate     []*float64 `json:"implied_rate"`
	Inflation       []*float64 `json:"cpi"`
	InflationTarget []*float64 `json:"pistar"`
	OutputGrowth    []*float64 `json:"gdp"`

	Stats    FitStatistics             `json:"stats"`
	Callouts map[string][]CalloutLabel `json:"callouts"` // keyed by chart id
}
