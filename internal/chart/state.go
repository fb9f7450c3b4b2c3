package chart

import (
	"fmt"
	"sync"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Style tags how a series is drawn and, for callouts, how its label
// color is chosen. A line carries one stroke color; a bar series
// encodes sign per element instead, so its callout color depends on
// the value's sign.
type Style interface {
	isStyle()
}

type LineStyle struct {
	Color  drawing.Color
	Dashed bool
}

func (LineStyle) isStyle() {}

type BarStyle struct {
	NonNegative drawing.Color
	Negative    drawing.Color
}

func (BarStyle) isStyle() {}

// Series is one full-history series of a chart, aligned with the
// registry's period index.
type Series struct {
	Name    string
	Values  []*float64
	Style   Style
	Callout bool
}

// State is the mutable render state of one chart: its identity, its
// series and the reference width the export scale factor derives from.
type State struct {
	ID       string
	Title    string
	Unit     string
	RefWidth int
	Series   []Series
}

// Registry holds every chart state plus the shared period index. The
// scheduler writes recomputed series into it; exports read deep copies
// out of it.
type Registry struct {
	mu      sync.RWMutex
	periods []string
	charts  map[string]*State
	order   []string
}

// NewRegistry creates a registry over the dataset's period index.
func NewRegistry(periods []string) *Registry {
	return &Registry{
		periods: append([]string(nil), periods...),
		charts:  make(map[string]*State),
	}
}

// Periods returns a copy of the shared period index.
func (r *Registry) Periods() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.periods...)
}

// Register adds a chart state. Series value slices must match the
// period index length.
func (r *Registry) Register(s *State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.charts[s.ID]; exists {
		return fmt.Errorf("chart %q already registered", s.ID)
	}
	for _, series := range s.Series {
		if len(series.Values) != len(r.periods) {
			return fmt.Errorf("chart %q series %q: %d values for %d periods",
				s.ID, series.Name, len(series.Values), len(r.periods))
		}
	}
	r.charts[s.ID] = s
	r.order = append(r.order, s.ID)
	return nil
}

// SetSeriesValues replaces one series' full-history values.
func (r *Registry) SetSeriesValues(chartID, seriesName string, values []*float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.charts[chartID]
	if !ok {
		return fmt.Errorf("chart %q not registered", chartID)
	}
	if len(values) != len(r.periods) {
		return fmt.Errorf("chart %q series %q: %d values for %d periods",
			chartID, seriesName, len(values), len(r.periods))
	}
	for i := range s.Series {
		if s.Series[i].Name == seriesName {
			s.Series[i].Values = values
			return nil
		}
	}
	return fmt.Errorf("chart %q has no series %q", chartID, seriesName)
}

// Snapshot returns a deep copy of a chart state, safe to render from
// while the live state keeps changing.
func (r *Registry) Snapshot(chartID string) (*State, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.charts[chartID]
	if !ok {
		return nil, false
	}

	cp := &State{
		ID:       s.ID,
		Title:    s.Title,
		Unit:     s.Unit,
		RefWidth: s.RefWidth,
		Series:   make([]Series, len(s.Series)),
	}
	for i, series := range s.Series {
		values := make([]*float64, len(series.Values))
		for j, v := range series.Values {
			if v != nil {
				vv := *v
				values[j] = &vv
			}
		}
		cp.Series[i] = Series{
			Name:    series.Name,
			Values:  values,
			Style:   series.Style,
			Callout: series.Callout,
		}
	}
	return cp, true
}

// IDs returns chart ids in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}
