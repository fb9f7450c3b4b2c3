package usecase

import (
	"sync"

	"RateScope/internal/domain/models"
)

// Session holds the adjustable state of one exploration: the rule
// coefficients and the display window. Writers overwrite, readers get
// a consistent pair; the scheduler reads it once per debounced
// recompute, so rapid slider movement settles on the last value
// written.
type Session struct {
	mu sync.RWMutex

	params models.RuleParameters
	window models.DateWindow

	defaultParams models.RuleParameters
	defaultWindow models.DateWindow
}

// NewSession starts at the given defaults; Reset returns to them.
func NewSession(params models.RuleParameters, window models.DateWindow) *Session {
	return &Session{
		params:        params,
		window:        window,
		defaultParams: params,
		defaultWindow: window,
	}
}

func (s *Session) SetParams(p models.RuleParameters) {
	s.mu.Lock()
	s.params = p
	s.mu.Unlock()
}

func (s *Session) SetWindow(w models.DateWindow) {
	s.mu.Lock()
	s.window = w
	s.mu.Unlock()
}

// Reset restores the startup coefficients and the full-history window.
func (s *Session) Reset() {
	s.mu.Lock()
	s.params = s.defaultParams
	s.window = s.defaultWindow
	s.mu.Unlock()
}

// Read returns the current coefficient and window pair.
func (s *Session) Read() (models.RuleParameters, models.DateWindow) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params, s.window
}

// Defaults returns the startup coefficients and window.
func (s *Session) Defaults() (models.RuleParameters, models.DateWindow) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultParams, s.defaultWindow
}
