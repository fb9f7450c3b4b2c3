package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"time"

	"github.com/golang/freetype"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"RateScope/internal/chart"
	"RateScope/internal/domain/models"
	"RateScope/internal/domain/repository"
	"RateScope/internal/rule"
	"RateScope/pkg/logger"
	"RateScope/pkg/util"
)

// Renderer redraws a registered chart at fixed export resolution: a
// title band above a freshly rendered chart body. Every render works
// from a deep copy of the live state, so an export never observes a
// recompute happening beside it.
type Renderer struct {
	registry  *chart.Registry
	width     int
	height    int
	titleBand int
	metrics   repository.Metrics
	log       *logger.Logger
}

func NewRenderer(registry *chart.Registry, width, height, titleBand int, metrics repository.Metrics, log *logger.Logger) *Renderer {
	return &Renderer{
		registry:  registry,
		width:     width,
		height:    height,
		titleBand: titleBand,
		metrics:   metrics,
		log:       log.With("export"),
	}
}

// RenderPNG draws one chart over the given window and returns the
// encoded image. Typography and geometry scale by export width over
// the chart's reference width. An unregistered chart id yields
// ErrUnknownChart and no image.
func (r *Renderer) RenderPNG(chartID string, w models.DateWindow) ([]byte, error) {
	started := time.Now()

	state, ok := r.registry.Snapshot(chartID)
	if !ok {
		r.log.Warn("export requested for unregistered chart", logger.String("chart", chartID))
		return nil, fmt.Errorf("%w: %q", ErrUnknownChart, chartID)
	}

	sf := float64(r.width) / float64(state.RefWidth)
	body, err := r.renderBody(state, w, sf, r.width, r.height-r.titleBand)
	if err != nil {
		return nil, fmt.Errorf("render chart body: %w", err)
	}

	out := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	if err := r.drawTitleBand(out, state.Title, sf); err != nil {
		return nil, err
	}
	draw.Draw(out, image.Rect(0, r.titleBand, r.width, r.height), body, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	r.metrics.RecordExport(chartID, "png", time.Since(started).Seconds())
	return buf.Bytes(), nil
}

func (r *Renderer) renderBody(state *chart.State, w models.DateWindow, sf float64, width, height int) (image.Image, error) {
	allPeriods := r.registry.Periods()

	min, max, ok := chart.ValueRange(state, allPeriods, w)
	if !ok {
		return nil, fmt.Errorf("chart %q has no plottable values in %s..%s", state.ID, w.From, w.To)
	}
	scale := chart.PaddedScale(min, max, 0, float64(height))

	series, err := buildSeries(state, allPeriods, w, sf)
	if err != nil {
		return nil, err
	}

	ch := gochart.Chart{
		Width:  width,
		Height: height,
		Background: gochart.Style{
			Padding: gochart.Box{
				Top:    int(14 * sf),
				Left:   int(16 * sf),
				Right:  int(20 * sf),
				Bottom: int(10 * sf),
			},
		},
		XAxis: gochart.XAxis{
			Style:          gochart.Style{FontSize: 9 * sf},
			ValueFormatter: gochart.TimeValueFormatterWithFormat("2006-01"),
		},
		YAxis: gochart.YAxis{
			Name:  state.Unit,
			Style: gochart.Style{FontSize: 9 * sf},
			Range: &gochart.ContinuousRange{Min: scale.Min, Max: scale.Max},
		},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{
		gochart.Legend(&ch, gochart.Style{FontSize: 10 * sf}),
		calloutOverlay(state, allPeriods, w, sf, scale.Min, scale.Max),
	}

	var buf bytes.Buffer
	if err := ch.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("draw chart %q: %w", state.ID, err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode chart body: %w", err)
	}
	return img, nil
}

// buildSeries converts the chart's windowed nullable series into
// go-chart time series. Null entries split a series into independent
// segments so gaps stay gaps instead of interpolated lines; bar-styled
// series additionally split on sign changes, taking the color of their
// sign.
func buildSeries(state *chart.State, allPeriods []string, w models.DateWindow, sf float64) ([]gochart.Series, error) {
	periods, _ := rule.FilterWindow(allPeriods, w)
	times := make([]time.Time, len(periods))
	for i, p := range periods {
		t, err := util.ParsePeriod(p)
		if err != nil {
			return nil, err
		}
		times[i] = t
	}

	var out []gochart.Series
	for _, s := range state.Series {
		_, windowed := rule.FilterWindow(allPeriods, w, s.Values)
		for k, seg := range splitSegments(times, windowed[0], s.Style) {
			style := gochart.Style{
				StrokeColor: seg.color,
				StrokeWidth: 2 * sf,
			}
			if seg.dashed {
				style.StrokeDashArray = []float64{6 * sf, 4 * sf}
			}

			name := ""
			if k == 0 {
				name = s.Name
			}

			xs, ys := seg.times, seg.values
			if len(xs) == 1 {
				// A lone point draws as a short flat dash.
				xs = []time.Time{xs[0], xs[0].AddDate(0, 0, 14)}
				ys = []float64{ys[0], ys[0]}
			}
			out = append(out, gochart.TimeSeries{Name: name, XValues: xs, YValues: ys, Style: style})
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("chart %q has no drawable segments", state.ID)
	}
	return out, nil
}

type segment struct {
	times  []time.Time
	values []float64
	color  drawing.Color
	dashed bool
}

func splitSegments(times []time.Time, values []*float64, style chart.Style) []segment {
	var (
		out []segment
		cur *segment
	)
	flush := func() {
		if cur != nil && len(cur.times) > 0 {
			out = append(out, *cur)
		}
		cur = nil
	}

	for i, v := range values {
		if v == nil {
			flush()
			continue
		}

		var col drawing.Color
		dashed := false
		switch st := style.(type) {
		case chart.LineStyle:
			col, dashed = st.Color, st.Dashed
		case chart.BarStyle:
			if *v < 0 {
				col = st.Negative
			} else {
				col = st.NonNegative
			}
		}

		if cur != nil && cur.color != col {
			flush()
		}
		if cur == nil {
			cur = &segment{color: col, dashed: dashed}
		}
		cur.times = append(cur.times, times[i])
		cur.values = append(cur.values, *v)
	}
	flush()
	return out
}

// calloutOverlay draws the resolved end-of-series value pills inside
// the plot area, using the canvas box go-chart hands to renderables so
// pixel placement matches the drawn axes.
func calloutOverlay(state *chart.State, allPeriods []string, w models.DateWindow, sf, yMin, yMax float64) gochart.Renderable {
	return func(rdr gochart.Renderer, canvasBox gochart.Box, _ gochart.Style) {
		scale := chart.Scale{
			Min: yMin, Max: yMax,
			Top:    float64(canvasBox.Top),
			Bottom: float64(canvasBox.Bottom),
		}
		cands := chart.Resolve(
			chart.Candidates(state, allPeriods, w, scale),
			scale.Top, scale.Bottom, chart.DefaultMinGap*sf,
		)
		if len(cands) == 0 {
			return
		}

		font, err := gochart.GetDefaultFont()
		if err != nil {
			return
		}
		rdr.SetFont(font)
		rdr.SetFontSize(10 * sf)

		padX := int(5 * sf)
		pillH := int(16 * sf)
		for _, c := range cands {
			box := rdr.MeasureText(c.Text)
			pw := box.Width() + 2*padX
			x0 := canvasBox.Right - pw - int(4*sf)
			y := int(c.Y)

			rdr.SetFillColor(c.Color)
			rdr.MoveTo(x0, y-pillH/2)
			rdr.LineTo(x0+pw, y-pillH/2)
			rdr.LineTo(x0+pw, y+pillH/2)
			rdr.LineTo(x0, y+pillH/2)
			rdr.Close()
			rdr.Fill()

			rdr.SetFontColor(drawing.ColorWhite)
			rdr.Text(c.Text, x0+padX, y+box.Height()/2)
		}
	}
}

func (r *Renderer) drawTitleBand(dst *image.RGBA, title string, sf float64) error {
	font, err := gochart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}

	size := 18 * sf
	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(font)
	ctx.SetFontSize(size)
	ctx.SetClip(dst.Bounds())
	ctx.SetDst(dst)
	ctx.SetSrc(image.NewUniform(color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff}))

	baseline := (float64(r.titleBand) + size*0.7) / 2
	if _, err := ctx.DrawString(title, freetype.Pt(int(16*sf), int(baseline))); err != nil {
		return fmt.Errorf("draw title: %w", err)
	}

	thickness := int(sf)
	if thickness < 1 {
		thickness = 1
	}
	sep := image.NewUniform(color.RGBA{R: 0xd0, G: 0xd0, B: 0xd0, A: 0xff})
	draw.Draw(dst, image.Rect(0, r.titleBand-thickness, r.width, r.titleBand), sep, image.Point{}, draw.Src)
	return nil
}
