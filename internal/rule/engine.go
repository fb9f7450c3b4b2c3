package rule

import (
	"RateScope/internal/domain/models"
)

// ComputeImplied evaluates the inertial policy rule over the entire
// dataset:
//
//	i_t = rho * i_{t-1} + (1-rho) * [r* + pi_t + alpha*(pi_t - pi*_t) + beta*g_t]
//
// where i_{t-1} is the actual (not implied) rate of the previous month.
// The recurrence always runs over the full history; the display window
// is applied afterwards, never before, because the lag term may depend
// on periods outside the visible range.
//
// A missing inflation or output observation yields a nil entry; it is
// never fabricated. A missing inflation target counts as 0, so the gap
// term reduces to (1+alpha)*pi_t; the target series is fully populated
// by construction, so this only matters for hand-built datasets.
// Results are rounded to 4 decimals, half up.
func ComputeImplied(ds *models.Dataset, p models.RuleParameters) []*float64 {
	n := ds.Len()
	result := make([]*float64, n)

	for i := 0; i < n; i++ {
		pi := ds.Inflation[i]
		g := ds.OutputGrowth[i]
		if pi == nil || g == nil {
			continue
		}

		var piStar float64
		if ds.InflationTarget[i] != nil {
			piStar = *ds.InflationTarget[i]
		}

		target := p.RStar + *pi + p.Alpha*(*pi-piStar) + p.Beta**g

		// The first period has no predecessor; it references its own
		// actual rate. This is a deliberate boundary rule, kept as is.
		prev := ds.ActualRate[0]
		if i > 0 {
			prev = ds.ActualRate[i-1]
		}

		var implied float64
		if prev == nil {
			implied = (1 - p.Rho) * target
		} else {
			implied = p.Rho**prev + (1-p.Rho)*target
		}

		rounded := Round4(implied)
		result[i] = &rounded
	}

	return result
}
