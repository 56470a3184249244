package logic

import "time"

// HoldTimer is the platform's single shared hold timer. The timer must call
// Bank.HoldTimerElapsed once the configured hold duration has passed since
// Start.
type HoldTimer struct {
	Start   func()
	Stop    func()
	Elapsed func() time.Duration
}

// Configured reports whether every timer callback is present.
func (t HoldTimer) Configured() bool {
	return t.Start != nil && t.Stop != nil && t.Elapsed != nil
}

func (t HoldTimer) empty() bool {
	return t.Start == nil && t.Stop == nil && t.Elapsed == nil
}

// coordinator multiplexes the hold timer across every button of a bank.
// All methods are called with the bank lock held.
type coordinator struct {
	timer        HoldTimer
	running      bool
	participants int
	stats        *Stats
}

func (c *coordinator) start() {
	if c.running {
		return
	}
	c.timer.Start()
	c.running = true
	c.stats.TimerStarts++
}

func (c *coordinator) stop() {
	if !c.running {
		return
	}
	c.timer.Stop()
	c.running = false
	c.stats.TimerStops++
}

// claim gives b a share of the hold timer on a press. The first claimant
// starts the timer; later claimants join only while the elapsed count is
// still within window, and never restart it.
func (c *coordinator) claim(b *button, window time.Duration) {
	if !c.timer.Configured() || b.participating {
		return
	}
	if c.participants == 0 {
		c.start()
		b.participating = true
		c.participants++
		return
	}
	if c.running && c.timer.Elapsed() <= window {
		b.participating = true
		c.participants++
	}
}

// release drops b's claim. The timer stops only when b was the last claimant.
func (c *coordinator) release(b *button) {
	if !b.participating {
		return
	}
	b.participating = false
	c.participants--
	if c.participants == 0 {
		c.stop()
	}
}

// expire promotes every participating Pressed or DoublePressed button to Held
// in one pass and clears all claims. A fire that arrives after the timer was
// cancelled is ignored.
func (c *coordinator) expire(buttons []button) {
	if !c.running {
		return
	}
	c.stop()
	c.stats.HoldSweeps++

	for i := range buttons {
		b := &buttons[i]
		if !b.participating {
			continue
		}
		b.participating = false
		if b.previous == Pressed || b.previous == DoublePressed {
			b.transition(Held)
		}
	}
	c.participants = 0
}
