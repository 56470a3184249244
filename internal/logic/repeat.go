package logic

// RepeatTick advances the hold-repeat acceleration of every held button by
// one tick. A button fires a repeat once its counter reaches its threshold;
// the threshold then shrinks by Acceleration.Step down to Acceleration.Cap, so
// repeats speed up the longer the button is held.
//
// The host calls RepeatTick at a fixed cadence. The repeat is delivered by the
// next Poll as a HeldRepeat call.
func (b *Bank) RepeatTick() {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc := b.timing.Acceleration
	for i := 0; i < b.n; i++ {
		btn := &b.buttons[i]
		if btn.previous != Held {
			continue
		}
		btn.accelerationCounter++
		if btn.accelerationCounter < btn.accelerationThreshold {
			continue
		}
		btn.accelerationCounter = 0
		btn.repeatPending = true
		if btn.accelerationThreshold >= acc.Cap+acc.Step {
			btn.accelerationThreshold -= acc.Step
		} else {
			btn.accelerationThreshold = acc.Cap
		}
	}
}
