package usecase

import (
	"sync"
	"time"

	"RateScope/internal/chart"
	"RateScope/internal/domain/models"
	"RateScope/internal/domain/repository"
	"RateScope/internal/rule"
	"RateScope/pkg/logger"
)

// Sink receives every finished snapshot; the live hub fans it out to
// connected views.
type Sink interface {
	Broadcast(snap *models.Snapshot)
}

// Scheduler debounces recompute triggers: every parameter or window
// change restarts a quiet-period timer, and only when the timer fires
// does one recompute run, against the session state as it stands at
// that moment. Triggers landing inside the quiet period collapse into
// that single run.
type Scheduler struct {
	dataset  *models.Dataset
	registry *chart.Registry
	session  *Session
	quiet    time.Duration
	sink     Sink
	metrics  repository.Metrics
	log      *logger.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending int

	snapMu sync.RWMutex
	latest *models.Snapshot
}

func NewScheduler(
	dataset *models.Dataset,
	registry *chart.Registry,
	session *Session,
	quiet time.Duration,
	sink Sink,
	metrics repository.Metrics,
	log *logger.Logger,
) *Scheduler {
	return &Scheduler{
		dataset:  dataset,
		registry: registry,
		session:  session,
		quiet:    quiet,
		sink:     sink,
		metrics:  metrics,
		log:      log.With("scheduler"),
	}
}

// SetSink wires the broadcast destination. The hub needs the scheduler
// to apply incoming view messages, so the sink is attached after both
// exist. Must be called before the first trigger.
func (s *Scheduler) SetSink(sink Sink) {
	s.mu.Lock()
	s.sink = sink
	s.mu.Unlock()
}

// Trigger schedules a recompute after the quiet period. A trigger
// arriving while one is already scheduled cancels the old timer and
// starts a fresh quiet period.
func (s *Scheduler) Trigger() {
	s.mu.Lock()
	s.pending++
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.quiet, s.fire)
	s.mu.Unlock()
}

// ApplyParams stores new coefficients and schedules a recompute.
func (s *Scheduler) ApplyParams(p models.RuleParameters) {
	s.session.SetParams(p)
	s.Trigger()
}

// ApplyWindow stores a new display window and schedules a recompute.
func (s *Scheduler) ApplyWindow(w models.DateWindow) {
	s.session.SetWindow(w)
	s.Trigger()
}

// Reset restores session defaults and schedules a recompute.
func (s *Scheduler) Reset() {
	s.session.Reset()
	s.Trigger()
}

// RunNow recomputes synchronously against the current session state,
// bypassing the debounce. Used at startup to populate the implied
// series before any trigger arrives.
func (s *Scheduler) RunNow() *models.Snapshot {
	p, w := s.session.Read()
	return s.recompute(p, w, 1)
}

// Latest returns the most recently published snapshot, or nil before
// the first recompute.
func (s *Scheduler) Latest() *models.Snapshot {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.latest
}

// Close cancels any scheduled recompute.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = 0
	s.mu.Unlock()
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	coalesced := s.pending
	s.pending = 0
	s.timer = nil
	s.mu.Unlock()

	if coalesced == 0 {
		return
	}
	if coalesced > 1 {
		s.metrics.RecordCoalesced(coalesced - 1)
	}

	p, w := s.session.Read()
	s.recompute(p, w, coalesced)
}

func (s *Scheduler) recompute(p models.RuleParameters, w models.DateWindow, coalesced int) *models.Snapshot {
	started := time.Now()

	implied := rule.ComputeImplied(s.dataset, p)
	if err := s.registry.SetSeriesValues(chart.ChartRate, chart.SeriesImplied, implied); err != nil {
		s.log.Error("update implied series", logger.Error(err))
		return nil
	}

	periods, series := rule.FilterWindow(s.dataset.Periods, w,
		s.dataset.ActualRate, implied, s.dataset.Inflation,
		s.dataset.InflationTarget, s.dataset.OutputGrowth)

	snap := &models.Snapshot{
		ComputedAt:      time.Now().UTC(),
		Params:          p,
		Window:          w,
		Periods:         periods,
		ActualRate:      series[0],
		ImpliedRate:     series[1],
		Inflation:       series[2],
		InflationTarget: series[3],
		OutputGrowth:    series[4],
		Stats:           rule.ComputeStats(series[0], series[1]),
		Callouts:        make(map[string][]models.CalloutLabel),
	}

	for _, id := range s.registry.IDs() {
		state, ok := s.registry.Snapshot(id)
		if !ok {
			continue
		}
		scale := chart.ReferenceScale(state, s.dataset.Periods, w)
		snap.Callouts[id] = chart.Place(state, s.dataset.Periods, w, scale, chart.DefaultMinGap)
	}

	s.snapMu.Lock()
	s.latest = snap
	s.snapMu.Unlock()

	s.metrics.RecordRecompute()
	s.mu.Lock()
	sink := s.sink
	s.mu.Unlock()
	if sink != nil {
		sink.Broadcast(snap)
	}
	s.log.Debug("recompute finished",
		logger.Int("coalesced", coalesced),
		logger.Int("periods", len(periods)),
		logger.Duration("took", time.Since(started)))
	return snap
}
