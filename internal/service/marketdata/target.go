package marketdata

import "RateScope/pkg/util"

// targetBands holds the central bank's announced inflation targets as
// normalized period bounds. Periods outside every band fall back to
// the current 2% target.
var targetBands = []struct {
	from, to string
	value    float64
}{
	{"200001", "200112", 4.0},
	{"200201", "200912", 3.0},
	{"201001", "209912", 2.0},
}

const defaultTarget = 2.0

// InflationTarget builds the target series over the period index.
func InflationTarget(periods []string) []*float64 {
	out := make([]*float64, len(periods))
	for i, p := range periods {
		norm := util.NormalizePeriod(p)
		v := defaultTarget
		for _, band := range targetBands {
			if norm >= band.from && norm <= band.to {
				v = band.value
				break
			}
		}
		vv := v
		out[i] = &vv
	}
	return out
}
