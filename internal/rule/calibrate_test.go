package rule

import (
	"math"
	"testing"

	"RateScope/internal/domain/models"
)

// synthDataset generates a dataset whose actual rate follows the rule
// exactly, so calibration should recover the generating coefficients.
func synthDataset(n int, p models.RuleParameters) *models.Dataset {
	ds := &models.Dataset{
		Periods:         make([]string, n),
		ActualRate:      make([]*float64, n),
		Inflation:       make([]*float64, n),
		OutputGrowth:    make([]*float64, n),
		InflationTarget: make([]*float64, n),
	}
	rate := 2.0
	for i := 0; i < n; i++ {
		ds.Periods[i] = "2010-01" // labels unused by calibration
		pi := 2.0 + 1.5*math.Sin(float64(i)/3)
		g := 1.0 + 2.0*math.Cos(float64(i)/5)
		target := 2.0

		ds.Inflation[i] = f(pi)
		ds.OutputGrowth[i] = f(g)
		ds.InflationTarget[i] = f(target)

		if i > 0 {
			implied := p.RStar + pi + p.Alpha*(pi-target) + p.Beta*g
			rate = p.Rho*rate + (1-p.Rho)*implied
		}
		ds.ActualRate[i] = f(rate)
	}
	return ds
}

func TestCalibrateRecoversGeneratingCoefficients(t *testing.T) {
	want := models.RuleParameters{Rho: 0.7, RStar: 1.0, Alpha: 1.2, Beta: 0.4}
	ds := synthDataset(120, want)

	got := Calibrate(ds, FallbackParameters)

	if math.Abs(got.Rho-want.Rho) > 0.02 {
		t.Fatalf("rho=%v, want about %v", got.Rho, want.Rho)
	}
	if math.Abs(got.Alpha-want.Alpha) > 0.05 {
		t.Fatalf("alpha=%v, want about %v", got.Alpha, want.Alpha)
	}
	if math.Abs(got.Beta-want.Beta) > 0.05 {
		t.Fatalf("beta=%v, want about %v", got.Beta, want.Beta)
	}
	if math.Abs(got.RStar-want.RStar) > 0.1 {
		t.Fatalf("rstar=%v, want about %v", got.RStar, want.RStar)
	}
}

func TestCalibrateShortSampleFallsBack(t *testing.T) {
	ds := synthDataset(10, models.RuleParameters{Rho: 0.7, RStar: 1.0, Alpha: 1.2, Beta: 0.4})

	if got := Calibrate(ds, FallbackParameters); got != FallbackParameters {
		t.Fatalf("got %+v, want fallback defaults", got)
	}
}

func TestCalibrateShortSampleUsesGivenFallback(t *testing.T) {
	ds := synthDataset(10, models.RuleParameters{Rho: 0.7, RStar: 1.0, Alpha: 1.2, Beta: 0.4})
	configured := models.RuleParameters{Rho: 0.5, RStar: 2.0, Alpha: 1.0, Beta: 1.0}

	if got := Calibrate(ds, configured); got != configured {
		t.Fatalf("got %+v, want the configured defaults", got)
	}
}

func TestCalibrateClipsToAcceptedRanges(t *testing.T) {
	ds := synthDataset(120, models.RuleParameters{Rho: 0.7, RStar: 1.0, Alpha: 1.2, Beta: 0.4})
	got := Calibrate(ds, FallbackParameters)

	if got.Rho < 0 || got.Rho > 0.99 {
		t.Fatalf("rho %v outside [0, 0.99]", got.Rho)
	}
	if got.RStar < -2 || got.RStar > 5 {
		t.Fatalf("rstar %v outside [-2, 5]", got.RStar)
	}
	if got.Alpha < 0 || got.Alpha > 3 {
		t.Fatalf("alpha %v outside [0, 3]", got.Alpha)
	}
	if got.Beta < 0 || got.Beta > 3 {
		t.Fatalf("beta %v outside [0, 3]", got.Beta)
	}
}

func TestCalibrateSkipsRowsWithGaps(t *testing.T) {
	ds := synthDataset(120, models.RuleParameters{Rho: 0.7, RStar: 1.0, Alpha: 1.2, Beta: 0.4})
	// Punch holes; calibration should still have enough clean rows.
	for i := 10; i < 30; i += 2 {
		ds.Inflation[i] = nil
	}

	got := Calibrate(ds, FallbackParameters)
	if got == FallbackParameters {
		t.Fatal("expected a fit, got the fallback")
	}
	if math.Abs(got.Rho-0.7) > 0.05 {
		t.Fatalf("rho=%v drifted from the generating value", got.Rho)
	}
}
