package export

import (
	"bytes"
	"errors"
	"image/png"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"RateScope/internal/chart"
	"RateScope/internal/domain/models"
	"RateScope/pkg/logger"
	"RateScope/pkg/metrics"
	"RateScope/pkg/util"
)

func rendererFixture(t *testing.T) *Renderer {
	t.Helper()

	ds := &models.Dataset{
		Periods:         []string{"2020-01", "2020-02", "2020-03", "2020-04"},
		ActualRate:      []*float64{f(2.0), f(2.25), f(2.5), f(2.5)},
		Inflation:       []*float64{f(3.0), f(3.2), nil, f(3.6)},
		OutputGrowth:    []*float64{f(1.0), f(-0.5), f(-0.2), f(0.4)},
		InflationTarget: []*float64{f(2.0), f(2.0), f(2.0), f(2.0)},
	}
	reg, err := chart.NewStandardRegistry(ds, 0)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	implied := []*float64{f(2.1), f(2.3), f(2.4), f(2.45)}
	if err := reg.SetSeriesValues(chart.ChartRate, chart.SeriesImplied, implied); err != nil {
		t.Fatalf("implied: %v", err)
	}

	return NewRenderer(reg, 1920, 1080, 96, metrics.NewWith(prometheus.NewRegistry()), logger.Nop())
}

func TestRenderPNGDimensions(t *testing.T) {
	r := rendererFixture(t)
	w := models.DateWindow{From: "2020-01", To: "2020-12"}

	for _, id := range []string{chart.ChartRate, chart.ChartInflation, chart.ChartOutput} {
		out, err := r.RenderPNG(id, w)
		if err != nil {
			t.Fatalf("%s: %v", id, err)
		}
		cfg, err := png.DecodeConfig(bytes.NewReader(out))
		if err != nil {
			t.Fatalf("%s: not a PNG: %v", id, err)
		}
		if cfg.Width != 1920 || cfg.Height != 1080 {
			t.Fatalf("%s: got %dx%d, want 1920x1080", id, cfg.Width, cfg.Height)
		}
	}
}

func TestRenderPNGUnknownChart(t *testing.T) {
	r := rendererFixture(t)

	out, err := r.RenderPNG("volume", models.DateWindow{From: "2020-01", To: "2020-12"})
	if !errors.Is(err, ErrUnknownChart) {
		t.Fatalf("got %v, want ErrUnknownChart", err)
	}
	if out != nil {
		t.Fatal("expected no image bytes")
	}
}

func TestRenderPNGEmptyWindow(t *testing.T) {
	r := rendererFixture(t)

	_, err := r.RenderPNG(chart.ChartRate, models.DateWindow{From: "1990-01", To: "1990-02"})
	if err == nil {
		t.Fatal("expected error for a window with no values")
	}
}

func TestSplitSegmentsBreaksOnNullAndSign(t *testing.T) {
	times := mustTimes(t, "2020-01", "2020-02", "2020-03", "2020-04", "2020-05")
	values := []*float64{f(1.0), f(0.5), nil, f(-0.3), f(0.2)}
	style := chart.BarStyle{
		NonNegative: drawing.Color{G: 255, A: 255},
		Negative:    drawing.Color{R: 255, A: 255},
	}

	segs := splitSegments(times, values, style)

	// [1.0 0.5] | gap | [-0.3] | [0.2]
	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3", len(segs))
	}
	if len(segs[0].values) != 2 || len(segs[1].values) != 1 || len(segs[2].values) != 1 {
		t.Fatalf("segment sizes %d/%d/%d, want 2/1/1",
			len(segs[0].values), len(segs[1].values), len(segs[2].values))
	}
	if segs[1].color != style.Negative || segs[2].color != style.NonNegative {
		t.Fatal("segment colors do not follow the value sign")
	}
}

func mustTimes(t *testing.T, periods ...string) []time.Time {
	t.Helper()
	out := make([]time.Time, len(periods))
	for i, p := range periods {
		tm, err := util.ParsePeriod(p)
		if err != nil {
			t.Fatalf("parse %q: %v", p, err)
		}
		out[i] = tm
	}
	return out
}
