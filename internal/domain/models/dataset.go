package models

import "time"

// Dataset is the immutable monthly time-series document loaded at startup.
// All series are index-aligned with Periods; a nil entry is a missing
// observation, not a zero. Periods are "YYYY-MM" labels in strictly
// increasing order.
type Dataset struct {
	GeneratedAt     time.Time  `json:"generated_at"`
	Periods         []string   `json:"dates"`
	ActualRate      []*float64 `json:"actual_rate"`
	Inflation       []*float64 `json:"cpi"`
	OutputGrowth    []*float64 `json:"gdp"`
	InflationTarget []*float64 `json:"pistar"`
}

// Len returns the number of periods.
func (d *Dataset) Len() int {
	return len(d.Periods)
}

// Aligned reports whether every series matches the period index length.
func (d *Dataset) Aligned() bool {
	n := len(d.Periods)
	return len(d.ActualRate) == n &&
		len(d.Inflation) == n &&
		len(d.OutputGrowth) == n &&
		len(d.InflationTarget) == n
}

// Range returns the first and last period labels, or empty strings for
// an empty dataset.
func (d *Dataset) Range() (from, to string) {
	if len(d.Periods) == 0 {
		return "", ""
	}
	return d.Periods[0], d.Periods[len(d.Periods)-1]
}
