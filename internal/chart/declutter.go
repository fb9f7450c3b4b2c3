package chart

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"RateScope/internal/domain/models"
	"RateScope/internal/rule"
)

// DefaultMinGap is the minimum vertical distance between callout
// centers at reference scale.
const DefaultMinGap = 18.0

// Scale maps series values onto the plot's vertical pixel extent
// (Top < Bottom, y grows downward).
type Scale struct {
	Min, Max    float64
	Top, Bottom float64
}

// Y converts a value to its vertical pixel coordinate.
func (s Scale) Y(v float64) float64 {
	if s.Max == s.Min {
		return s.Bottom
	}
	return s.Top + (s.Max-v)/(s.Max-s.Min)*(s.Bottom-s.Top)
}

// Candidate is a provisional callout before overlap resolution.
type Candidate struct {
	Y     float64
	Color drawing.Color
	Text  string
}

// Candidates collects one provisional callout per label-eligible
// series: the last non-null, non-NaN windowed value, mapped through the
// scale. Values landing outside the plotted extent are discarded.
func Candidates(s *State, periods []string, w models.DateWindow, scale Scale) []Candidate {
	var out []Candidate
	for _, series := range s.Series {
		if !series.Callout {
			continue
		}
		_, windowed := rule.FilterWindow(periods, w, series.Values)

		v, ok := lastValue(windowed[0])
		if !ok {
			continue
		}
		y := scale.Y(v)
		if y < scale.Top || y > scale.Bottom {
			continue
		}

		out = append(out, Candidate{
			Y:     y,
			Color: calloutColor(series.Style, v),
			Text:  FormatValue(v),
		})
	}
	return out
}

// Resolve spaces candidates at least minGap apart and keeps them inside
// [top, bottom]. A forward pass pushes overlapping labels down; a
// backward pass pulls labels clamped at the bottom edge back up,
// propagating as long as the gap stays violated. When more labels exist
// than vertical space allows, only the pair nearest a clamp may end
// closer than minGap; no label leaves the plot extent.
func Resolve(cands []Candidate, top, bottom, minGap float64) []Candidate {
	out := append([]Candidate(nil), cands...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Y < out[j].Y })

	for i := 1; i < len(out); i++ {
		if out[i].Y-out[i-1].Y < minGap {
			out[i].Y = out[i-1].Y + minGap
		}
	}

	if n := len(out); n > 0 && out[n-1].Y > bottom {
		out[n-1].Y = bottom
		for i := n - 2; i >= 0; i-- {
			if out[i+1].Y-out[i].Y >= minGap {
				break
			}
			out[i].Y = math.Max(out[i+1].Y-minGap, top)
		}
	}
	return out
}

// Place runs candidate collection and overlap resolution, returning the
// labels in view form.
func Place(s *State, periods []string, w models.DateWindow, scale Scale, minGap float64) []models.CalloutLabel {
	resolved := Resolve(Candidates(s, periods, w, scale), scale.Top, scale.Bottom, minGap)

	labels := make([]models.CalloutLabel, len(resolved))
	for i, c := range resolved {
		labels[i] = models.CalloutLabel{
			Y:     c.Y,
			Color: ColorHex(c.Color),
			Text:  c.Text,
		}
	}
	return labels
}

func lastValue(values []*float64) (float64, bool) {
	for i := len(values) - 1; i >= 0; i-- {
		if values[i] != nil && !math.IsNaN(*values[i]) {
			return *values[i], true
		}
	}
	return 0, false
}

func calloutColor(style Style, v float64) drawing.Color {
	switch st := style.(type) {
	case LineStyle:
		return st.Color
	case BarStyle:
		if v < 0 {
			return st.Negative
		}
		return st.NonNegative
	default:
		return drawing.ColorBlack
	}
}

// FormatValue renders a value the way the display does: two decimals,
// comma as the decimal separator.
func FormatValue(v float64) string {
	return strings.Replace(fmt.Sprintf("%.2f", v), ".", ",", 1)
}

// ColorHex renders a color as a CSS hex string.
func ColorHex(c drawing.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
