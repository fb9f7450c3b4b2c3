package rule

import (
	"errors"
	"math"

	"RateScope/internal/domain/models"
)

// FallbackParameters are the stock coefficients callers without
// configured defaults pass as the fallback.
var FallbackParameters = models.RuleParameters{Rho: 0.80, RStar: 1.5, Alpha: 1.5, Beta: 0.5}

const minCalibrationSamples = 20

// Calibrate estimates default rule coefficients by ordinary least
// squares on i_t = c + rho*i_{t-1} + a*pi_t + b*g_t and maps the fit
// back to the structural form:
//
//	alpha = a/(1-rho) - 1
//	beta  = b/(1-rho)
//	r*    = c/(1-rho) + alpha*mean(pistar)
//
// Estimates are clipped to the coefficient ranges the explorer accepts
// and rounded to 3 decimals. Short or singular samples return the
// given fallback coefficients unchanged.
func Calibrate(ds *models.Dataset, fallback models.RuleParameters) models.RuleParameters {
	var (
		rows       [][4]float64 // 1, lagged rate, inflation, output
		targets    []float64
		pistarSum  float64
		sampleSize int
	)
	for i := 1; i < ds.Len(); i++ {
		lag := ds.ActualRate[i-1]
		if lag == nil || ds.ActualRate[i] == nil || ds.Inflation[i] == nil ||
			ds.OutputGrowth[i] == nil || ds.InflationTarget[i] == nil {
			continue
		}
		rows = append(rows, [4]float64{1, *lag, *ds.Inflation[i], *ds.OutputGrowth[i]})
		targets = append(targets, *ds.ActualRate[i])
		pistarSum += *ds.InflationTarget[i]
		sampleSize++
	}

	if sampleSize < minCalibrationSamples {
		return fallback
	}

	coeffs, err := leastSquares(rows, targets)
	if err != nil {
		return fallback
	}
	c, rhoHat, a, b := coeffs[0], coeffs[1], coeffs[2], coeffs[3]

	rho := clip(rhoHat, 0, 0.99)
	oneMinusRho := math.Max(1-rho, 0.01)

	alpha := a/oneMinusRho - 1
	beta := b / oneMinusRho
	rstar := c/oneMinusRho + alpha*(pistarSum/float64(sampleSize))

	return models.RuleParameters{
		Rho:   Round3(rho),
		RStar: Round3(clip(rstar, -2, 5)),
		Alpha: Round3(clip(alpha, 0, 3)),
		Beta:  Round3(clip(beta, 0, 3)),
	}
}

// leastSquares solves min ||X*beta - y|| for the 4-column design matrix
// via the normal equations with partial-pivot elimination. The system
// is tiny, so numerical finesse beyond pivoting is not needed.
func leastSquares(rows [][4]float64, y []float64) ([4]float64, error) {
	var (
		m [4][5]float64 // augmented X'X | X'y
	)
	for k, row := range rows {
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				m[i][j] += row[i] * row[j]
			}
			m[i][4] += row[i] * y[k]
		}
	}

	for col := 0; col < 4; col++ {
		pivot := col
		for r := col + 1; r < 4; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		m[col], m[pivot] = m[pivot], m[col]
		if math.Abs(m[col][col]) < 1e-12 {
			return [4]float64{}, errors.New("singular design matrix")
		}
		for r := 0; r < 4; r++ {
			if r == col {
				continue
			}
			factor := m[r][col] / m[col][col]
			for j := col; j < 5; j++ {
				m[r][j] -= factor * m[col][j]
			}
		}
	}

	var out [4]float64
	for i := 0; i < 4; i++ {
		out[i] = m[i][4] / m[i][i]
	}
	return out, nil
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
