// Package timer provides the shared hold timer used by the gesture core.
// Software is a one-shot time.AfterFunc timer; Fake is a manually driven
// test double.
package timer

import (
	"sync"
	"time"

	"github.com/sweeney/button-sensor/internal/logic"
)

// Software is a one-shot hold timer. Once started it calls fire after the hold
// duration unless stopped first. Redundant Start and Stop calls are no-ops.
type Software struct {
	hold time.Duration
	fire func()
	now  func() time.Time

	mu      sync.Mutex
	t       *time.Timer
	gen     uint64
	running bool
	started time.Time
}

// NewSoftware creates a timer that calls fire hold after each Start.
func NewSoftware(hold time.Duration, fire func()) *Software {
	return &Software{hold: hold, fire: fire, now: time.Now}
}

// Start arms the timer if it is not already running.
func (s *Software) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.gen++
	gen := s.gen
	s.running = true
	s.started = s.now()
	s.t = time.AfterFunc(s.hold, func() { s.expire(gen) })
}

// Stop disarms the timer and resets its count.
func (s *Software) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.gen++
	s.running = false
	s.started = time.Time{}
	if s.t != nil {
		s.t.Stop()
		s.t = nil
	}
}

// Elapsed returns the time since Start, or zero when stopped.
func (s *Software) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return 0
	}
	return s.now().Sub(s.started)
}

// Running reports whether the timer is armed.
func (s *Software) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// SetHold changes the hold duration used by the next Start.
func (s *Software) SetHold(d time.Duration) {
	s.mu.Lock()
	s.hold = d
	s.mu.Unlock()
}

func (s *Software) expire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || !s.running {
		// stopped or re-armed since this fire was scheduled
		s.mu.Unlock()
		return
	}
	s.running = false
	s.t = nil
	s.mu.Unlock()

	// called without the lock: fire re-enters Stop via the bank
	if s.fire != nil {
		s.fire()
	}
}

// Funcs adapts the timer to the core's hold timer configuration.
func (s *Software) Funcs() logic.HoldTimer {
	return logic.HoldTimer{Start: s.Start, Stop: s.Stop, Elapsed: s.Elapsed}
}
