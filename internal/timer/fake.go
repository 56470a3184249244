package timer

import (
	"time"

	"github.com/sweeney/button-sensor/internal/logic"
)

// Fake is a manually driven hold timer for tests. Advance moves its count and
// fires once the hold duration is reached. Not safe for concurrent use.
type Fake struct {
	Hold time.Duration
	// OnFire is called when the count reaches Hold.
	OnFire func()

	Starts  int
	Stops   int
	running bool
	elapsed time.Duration
}

// NewFake creates a Fake with the given hold duration.
func NewFake(hold time.Duration) *Fake {
	return &Fake{Hold: hold}
}

// Start arms the fake.
func (f *Fake) Start() {
	if f.running {
		return
	}
	f.Starts++
	f.running = true
	f.elapsed = 0
}

// Stop disarms the fake.
func (f *Fake) Stop() {
	if !f.running {
		return
	}
	f.Stops++
	f.running = false
	f.elapsed = 0
}

// Elapsed returns the current count.
func (f *Fake) Elapsed() time.Duration {
	return f.elapsed
}

// Running reports whether the fake is armed.
func (f *Fake) Running() bool {
	return f.running
}

// SetHold changes the duration used by the next Advance.
func (f *Fake) SetHold(d time.Duration) {
	f.Hold = d
}

// Advance moves the count forward by d and fires if Hold is reached.
// It reports whether the timer fired.
func (f *Fake) Advance(d time.Duration) bool {
	if !f.running {
		return false
	}
	f.elapsed += d
	if f.elapsed < f.Hold {
		return false
	}
	f.fire()
	return true
}

// Fire expires the timer immediately, whether or not it is armed. Firing a
// disarmed fake models a late expiry racing a Stop.
func (f *Fake) Fire() {
	f.fire()
}

func (f *Fake) fire() {
	f.running = false
	if f.OnFire != nil {
		f.OnFire()
	}
}

// Funcs adapts the fake to the core's hold timer configuration.
func (f *Fake) Funcs() logic.HoldTimer {
	return logic.HoldTimer{Start: f.Start, Stop: f.Stop, Elapsed: f.Elapsed}
}
