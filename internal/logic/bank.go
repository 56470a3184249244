package logic

import (
	"fmt"
	"sync"
	"time"
)

type button struct {
	cfg ButtonConfig

	current  State // pending event slot, cleared by Poll
	previous State // last real gesture, drives transitions
	lastEdge time.Time

	accelerationCounter   uint8
	accelerationThreshold uint8
	repeatPending         bool

	participating bool
}

func (b *button) transition(s State) {
	b.current = s
	b.previous = s
}

// Config wires a Bank to its platform collaborators.
type Config struct {
	Timing Timing
	// Clock returns the current monotonic time.
	Clock func() time.Time
	// Pins samples raw levels for non-emulated edges. May be nil when every
	// edge is emulated.
	Pins PinReader
	// Timer is the shared hold timer. A zero value disables hold detection.
	Timer HoldTimer
}

// Bank is a fixed-capacity set of buttons sharing one hold timer.
// OnEdge and HoldTimerElapsed may be called from any goroutine; Poll must
// only be called from the host loop.
type Bank struct {
	mu      sync.Mutex
	pollMu  sync.Mutex
	timing  Timing
	clock   func() time.Time
	pins    PinReader
	buttons []button
	n       int
	coord   coordinator
	stats   Stats
}

// NewBank allocates a bank with room for capacity buttons.
func NewBank(capacity int, cfg Config) (*Bank, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("capacity %d: %w", capacity, ErrParam)
	}
	if cfg.Clock == nil {
		return nil, fmt.Errorf("nil clock: %w", ErrParam)
	}
	if !cfg.Timer.empty() && !cfg.Timer.Configured() {
		return nil, fmt.Errorf("hold timer partially configured: %w", ErrResource)
	}

	b := &Bank{
		timing:  cfg.Timing,
		clock:   cfg.Clock,
		pins:    cfg.Pins,
		buttons: make([]button, capacity),
	}
	b.coord = coordinator{timer: cfg.Timer, stats: &b.stats}
	return b, nil
}

// Create binds the next free slot to cfg and returns its handle.
func (b *Bank) Create(cfg ButtonConfig) (Handle, error) {
	if cfg.Handler == nil {
		return -1, fmt.Errorf("button %q: nil handler: %w", cfg.Name, ErrParam)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.n == len(b.buttons) {
		return -1, fmt.Errorf("button %q: bank full (%d): %w", cfg.Name, len(b.buttons), ErrParam)
	}

	h := Handle(b.n)
	b.buttons[h] = button{
		cfg:                   cfg,
		current:               Cleared,
		previous:              Released,
		accelerationThreshold: b.timing.Acceleration.Threshold,
	}
	b.n++
	return h, nil
}

// Len returns the number of created buttons.
func (b *Bank) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.n
}

// SetTiming replaces the timing windows. Buttons keep their current
// acceleration threshold until they next leave Held.
func (b *Bank) SetTiming(t Timing) {
	b.mu.Lock()
	b.timing = t
	b.mu.Unlock()
}

// Timing returns the active timing windows.
func (b *Bank) Timing() Timing {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.timing
}

// OnEdge feeds a pin change or an emulated action for h. It is safe to call
// from an edge-event goroutine and never blocks on I/O other than the pin read.
// An invalid handle is a caller bug and is ignored.
func (b *Bank) OnEdge(h Handle, action Emulate) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.valid(h) {
		return
	}
	btn := &b.buttons[h]

	level := false
	if action == EmulateNone {
		if b.pins == nil {
			b.stats.ReadErrors++
			return
		}
		l, err := b.pins.Level(btn.cfg.Pin)
		if err != nil {
			b.stats.ReadErrors++
			return
		}
		level = l
	}
	edge := Classify(level, btn.cfg.Polarity, action)

	now := b.clock()
	if !b.accept(btn, edge, now) {
		b.stats.Debounced++
		return
	}

	if !b.step(btn, edge, now) {
		b.stats.Ignored++
	}
	btn.lastEdge = now
}

// accept is the debounce gate. The first edge of a button always passes.
func (b *Bank) accept(btn *button, edge Edge, now time.Time) bool {
	if btn.lastEdge.IsZero() {
		return true
	}
	window := b.timing.Debounce
	if edge == ReleaseEdge && b.timing.ReleaseDebounce > 0 {
		window = b.timing.ReleaseDebounce
	}
	return now.Sub(btn.lastEdge) > window
}

// step applies one accepted edge. It reports whether a transition happened.
func (b *Bank) step(btn *button, edge Edge, now time.Time) bool {
	if edge == PressEdge {
		switch btn.previous {
		case Released, DoublePressReleased, HeldReleased:
		default:
			// no release seen since the last press
			return false
		}
		if !btn.lastEdge.IsZero() && now.Sub(btn.lastEdge) < b.timing.DoublePress {
			btn.transition(DoublePressed)
		} else {
			btn.transition(Pressed)
		}
		b.coord.claim(btn, b.timing.MultipleButton)
		return true
	}

	switch btn.previous {
	case Pressed:
		btn.transition(Released)
		b.coord.release(btn)
	case DoublePressed:
		btn.transition(DoublePressReleased)
		b.coord.release(btn)
	case Held:
		btn.transition(HeldReleased)
		btn.accelerationCounter = 0
		btn.accelerationThreshold = b.timing.Acceleration.Threshold
	default:
		return false
	}
	return true
}

// HoldTimerElapsed is the shared timer's expiry callback.
func (b *Bank) HoldTimerElapsed() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.coord.expire(b.buttons[:b.n])
}

// TimerRunning reports whether the coordinator believes the hold timer runs.
func (b *Bank) TimerRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.coord.running
}

// SetState overrides the pending event slot of h.
func (b *Bank) SetState(h Handle, s State) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.valid(h) {
		return fmt.Errorf("handle %d: %w", h, ErrParam)
	}
	b.buttons[h].current = s
	return nil
}

// State returns the pending event slot of h, or Cleared for an invalid handle.
func (b *Bank) State(h Handle) State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.valid(h) {
		return Cleared
	}
	return b.buttons[h].current
}

// SetLastState overrides the transition source of h. HeldRepeat is rejected.
func (b *Bank) SetLastState(h Handle, s State) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.valid(h) || s == HeldRepeat {
		return fmt.Errorf("handle %d, state %s: %w", h, s, ErrParam)
	}
	b.buttons[h].previous = s
	return nil
}

// LastState returns the last real gesture of h.
func (b *Bank) LastState(h Handle) State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.valid(h) {
		return Cleared
	}
	return b.buttons[h].previous
}

// Button returns a view of h.
func (b *Bank) Button(h Handle) (Info, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.valid(h) {
		return Info{}, fmt.Errorf("handle %d: %w", h, ErrParam)
	}
	return b.info(h), nil
}

// Snapshot returns a view of every created button in index order.
func (b *Bank) Snapshot() []Info {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Info, b.n)
	for i := range out {
		out[i] = b.info(Handle(i))
	}
	return out
}

// Stats returns the anomaly counters.
func (b *Bank) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

func (b *Bank) info(h Handle) Info {
	btn := &b.buttons[h]
	return Info{
		Handle:                h,
		Name:                  btn.cfg.Name,
		Pin:                   btn.cfg.Pin,
		Mode:                  btn.cfg.Mode,
		Polarity:              btn.cfg.Polarity,
		State:                 btn.current,
		LastState:             btn.previous,
		LastEdge:              btn.lastEdge,
		Participating:         btn.participating,
		AccelerationCounter:   btn.accelerationCounter,
		AccelerationThreshold: btn.accelerationThreshold,
		RepeatPending:         btn.repeatPending,
	}
}

func (b *Bank) valid(h Handle) bool {
	return h >= 0 && int(h) < b.n
}
