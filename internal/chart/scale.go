package chart

import (
	"math"

	"RateScope/internal/domain/models"
	"RateScope/internal/rule"
)

// ReferencePlotHeight is the vertical pixel extent used for callout
// placement when no concrete render surface exists yet. Exports
// recompute placement against their own geometry.
const ReferencePlotHeight = 540.0

// ValueRange scans every series of a chart over the window and returns
// the observed min and max. ok is false when no non-null value falls
// inside the window.
func ValueRange(s *State, periods []string, w models.DateWindow) (min, max float64, ok bool) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, series := range s.Series {
		_, windowed := rule.FilterWindow(periods, w, series.Values)
		for _, v := range windowed[0] {
			if v == nil || math.IsNaN(*v) {
				continue
			}
			if *v < min {
				min = *v
			}
			if *v > max {
				max = *v
			}
		}
	}
	if min > max {
		return 0, 0, false
	}
	return min, max, true
}

// ReferenceScale derives the value-to-pixel mapping for a chart at
// reference geometry, padding the observed range by 5% on each side so
// extreme values do not sit on the plot border.
func ReferenceScale(s *State, periods []string, w models.DateWindow) Scale {
	min, max, ok := ValueRange(s, periods, w)
	if !ok {
		return Scale{Min: 0, Max: 1, Top: 0, Bottom: ReferencePlotHeight}
	}
	return PaddedScale(min, max, 0, ReferencePlotHeight)
}

// PaddedScale builds a Scale over [min, max] widened by 5% per side.
// A flat series gets a unit band around its value so division by the
// span stays defined.
func PaddedScale(min, max, top, bottom float64) Scale {
	if min == max {
		min, max = min-0.5, max+0.5
	}
	pad := (max - min) * 0.05
	return Scale{Min: min - pad, Max: max + pad, Top: top, Bottom: bottom}
}
