package rule

import "math"

// roundHalfUp rounds to the given power-of-ten scale with ties going
// toward positive infinity (-0.00005 rounds to -0, not -0.0001). The
// displayed figures depend on this exact tie-break; do not replace it
// with math.Round or round-half-to-even.
func roundHalfUp(v float64, scale float64) float64 {
	return math.Floor(v*scale+0.5) / scale
}

// Round4 rounds to 4 decimals, half up.
func Round4(v float64) float64 {
	return roundHalfUp(v, 1e4)
}

// Round3 rounds to 3 decimals, half up.
func Round3(v float64) float64 {
	return roundHalfUp(v, 1e3)
}
