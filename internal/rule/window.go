package rule

import (
	"RateScope/internal/domain/models"
	"RateScope/pkg/util"
)

// FilterWindow projects the period index and any number of parallel
// series onto the inclusive [from, to] window. Bounds compare as
// normalized six-digit strings; order is preserved.
func FilterWindow(periods []string, w models.DateWindow, series ...[]*float64) ([]string, [][]*float64) {
	from := util.NormalizePeriod(w.From)
	to := util.NormalizePeriod(w.To)

	outPeriods := make([]string, 0, len(periods))
	outSeries := make([][]*float64, len(series))
	for si := range series {
		outSeries[si] = make([]*float64, 0, len(periods))
	}

	for i, p := range periods {
		key := util.NormalizePeriod(p)
		if key < from || key > to {
			continue
		}
		outPeriods = append(outPeriods, p)
		for si, s := range series {
			outSeries[si] = append(outSeries[si], s[i])
		}
	}

	return outPeriods, outSeries
}
