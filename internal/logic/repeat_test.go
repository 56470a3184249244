package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepeatAcceleration(t *testing.T) {
	timing := DefaultTiming()
	timing.Acceleration = Acceleration{Threshold: 3, Step: 1, Cap: 1}
	f := newFixtureTiming(t, 1, timing)

	f.press(0, 0)
	f.bank.HoldTimerElapsed()
	f.bank.Poll()
	f.recs[0].got = nil

	// ticks needed per repeat: 3, 2, 1, 1
	for _, want := range []int{3, 2, 1, 1} {
		for i := 1; i < want; i++ {
			f.bank.RepeatTick()
			assert.Equal(t, 0, f.bank.Poll(), "no repeat before threshold %d", want)
		}
		f.bank.RepeatTick()
		assert.Equal(t, 1, f.bank.Poll(), "repeat at threshold %d", want)
	}

	assert.Equal(t, []State{HeldRepeat, HeldRepeat, HeldRepeat, HeldRepeat}, f.recs[0].got)
	info, _ := f.bank.Button(f.h[0])
	assert.Equal(t, uint8(1), info.AccelerationThreshold)
}

func TestRepeatOnlyWhileHeld(t *testing.T) {
	timing := DefaultTiming()
	timing.Acceleration = Acceleration{Threshold: 1, Step: 1, Cap: 1}
	f := newFixtureTiming(t, 2, timing)

	f.press(0, 0)
	f.bank.Poll()
	f.bank.RepeatTick()

	assert.Equal(t, 0, f.bank.Poll())
	info, _ := f.bank.Button(f.h[0])
	assert.Equal(t, uint8(0), info.AccelerationCounter)
}

func TestRepeatFlagSurvivesRelease(t *testing.T) {
	timing := DefaultTiming()
	timing.Acceleration = Acceleration{Threshold: 1, Step: 1, Cap: 1}
	f := newFixtureTiming(t, 1, timing)

	f.press(0, 0)
	f.bank.HoldTimerElapsed()
	f.bank.Poll()
	f.bank.RepeatTick()
	f.release(0, 1000)

	f.bank.Poll()
	assert.Equal(t, []State{Held, HeldReleased, HeldRepeat}, f.recs[0].got)
}
