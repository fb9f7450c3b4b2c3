package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	recomputes     prometheus.Counter
	coalesced      prometheus.Counter
	fetchDuration  *prometheus.HistogramVec
	fetchErrors    *prometheus.CounterVec
	exportDuration *prometheus.HistogramVec
	exportsTotal   *prometheus.CounterVec
	connectedViews prometheus.Gauge
}

// New creates a recorder registered on the default registry.
func New() *Recorder {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates a recorder registered on the given registerer; tests
// pass a fresh registry so repeated construction does not collide.
func NewWith(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		recomputes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ratescope_recomputes_total",
				Help: "Total number of debounced rule recomputations",
			},
		),
		coalesced: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ratescope_coalesced_triggers_total",
				Help: "Total number of triggers discarded by debounce coalescing",
			},
		),
		fetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ratescope_fetch_duration_seconds",
				Help:    "Duration of upstream series fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		fetchErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ratescope_fetch_errors_total",
				Help: "Total number of upstream fetch failures",
			},
			[]string{"source"},
		),
		exportDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ratescope_export_duration_seconds",
				Help:    "Duration of export builds in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		),
		exportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ratescope_exports_total",
				Help: "Total number of export artifacts produced",
			},
			[]string{"chart", "format"},
		),
		connectedViews: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ratescope_connected_views",
				Help: "Number of live chart views currently connected",
			},
		),
	}
}

// RecordRecompute records one completed scheduler recomputation.
func (r *Recorder) RecordRecompute() {
	r.recomputes.Inc()
}

// RecordCoalesced records triggers discarded within the quiet period.
func (r *Recorder) RecordCoalesced(n int) {
	r.coalesced.Add(float64(n))
}

// RecordFetch records an upstream fetch duration in seconds.
func (r *Recorder) RecordFetch(source string, seconds float64) {
	r.fetchDuration.WithLabelValues(source).Observe(seconds)
}

// RecordFetchError records an upstream fetch failure.
func (r *Recorder) RecordFetchError(source string) {
	r.fetchErrors.WithLabelValues(source).Inc()
}

// RecordExport records a produced export artifact with its build duration.
func (r *Recorder) RecordExport(chart, format string, seconds float64) {
	r.exportsTotal.WithLabelValues(chart, format).Inc()
	r.exportDuration.WithLabelValues(format).Observe(seconds)
}

// SetConnectedViews sets the live view connection gauge.
func (r *Recorder) SetConnectedViews(n int) {
	r.connectedViews.Set(float64(n))
}
