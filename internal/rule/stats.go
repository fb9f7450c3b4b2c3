package rule

import (
	"math"

	"RateScope/internal/domain/models"
)

// ComputeStats measures the fit between the windowed actual and implied
// rate series. Only indices where both values are present count as
// pairs; fewer than two pairs leaves every field nil. Correlation uses
// unnormalized sums of squared deviations (the 1/n factors cancel) and
// is nil when either series has zero variance.
func ComputeStats(actual, implied []*float64) models.FitStatistics {
	var a, b []float64
	for i := range actual {
		if i >= len(implied) {
			break
		}
		if actual[i] == nil || implied[i] == nil {
			continue
		}
		a = append(a, *actual[i])
		b = append(b, *implied[i])
	}

	if len(a) < 2 {
		return models.FitStatistics{}
	}

	n := float64(len(a))
	var sumSq, sumAbs, sum float64
	for i := range a {
		d := a[i] - b[i]
		sumSq += d * d
		sumAbs += math.Abs(d)
		sum += d
	}

	stats := models.FitStatistics{
		RMSE:          ptr(Round3(math.Sqrt(sumSq / n))),
		MAE:           ptr(Round3(sumAbs / n)),
		MeanDeviation: ptr(Round3(sum / n)),
	}

	meanA := mean(a)
	meanB := mean(b)
	var sab, saa, sbb float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		sab += da * db
		saa += da * da
		sbb += db * db
	}
	if saa > 0 && sbb > 0 {
		stats.Correlation = ptr(Round3(sab / math.Sqrt(saa*sbb)))
	}

	return stats
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func ptr(v float64) *float64 {
	return &v
}
