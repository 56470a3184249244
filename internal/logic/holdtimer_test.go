package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoldSingleButton(t *testing.T) {
	f := newFixture(t, 1)
	h := f.h[0]

	f.press(0, 0)
	assert.True(t, f.bank.TimerRunning())
	assert.True(t, f.timer.running)
	f.bank.Poll()

	f.clk.at(500)
	f.bank.HoldTimerElapsed()

	info, _ := f.bank.Button(h)
	assert.Equal(t, Held, info.State)
	assert.Equal(t, Held, info.LastState)
	assert.False(t, info.Participating)
	assert.False(t, f.bank.TimerRunning())
	assert.Equal(t, 1, f.timer.stops)

	f.bank.Poll()
	assert.Equal(t, []State{Pressed, Held}, f.recs[0].got)

	f.release(0, 800)
	f.bank.Poll()
	assert.Equal(t, []State{Pressed, Held, HeldReleased}, f.recs[0].got)
	assert.Equal(t, 1, f.timer.stops, "held release does not touch the timer")
}

// Scenario: A presses at 0, B at 30ms, the timer expires at 500ms.
func TestHoldTwoButtonsWithinWindow(t *testing.T) {
	f := newFixture(t, 2)

	f.press(0, 0)
	f.press(1, 30)
	assert.Equal(t, 1, f.timer.starts, "second claimant must not restart the timer")

	snap := f.bank.Snapshot()
	assert.True(t, snap[0].Participating)
	assert.True(t, snap[1].Participating)

	f.clk.at(500)
	f.bank.HoldTimerElapsed()

	assert.Equal(t, Held, f.bank.LastState(f.h[0]))
	assert.Equal(t, Held, f.bank.LastState(f.h[1]))
	assert.Equal(t, 1, f.bank.Stats().HoldSweeps)

	f.bank.Poll()
	assert.Equal(t, []State{Held}, f.recs[0].got)
	assert.Equal(t, []State{Held}, f.recs[1].got)
}

func TestHoldJoinWindowBoundary(t *testing.T) {
	f := newFixture(t, 2)

	f.press(0, 0)
	f.press(1, 100)

	assert.True(t, f.bank.Snapshot()[1].Participating, "elapsed == window joins")
}

func TestHoldLateJoinerExcluded(t *testing.T) {
	f := newFixture(t, 2)

	f.press(0, 0)
	f.press(1, 150)
	assert.False(t, f.bank.Snapshot()[1].Participating)

	f.clk.at(500)
	f.bank.HoldTimerElapsed()

	assert.Equal(t, Held, f.bank.LastState(f.h[0]))
	assert.Equal(t, Pressed, f.bank.LastState(f.h[1]))
}

// A button that joins late in the window is held on the first button's
// interval, not its own.
func TestHoldJoinerSharesFirstInterval(t *testing.T) {
	f := newFixture(t, 2)

	f.press(0, 0)
	f.press(1, 90)
	f.clk.at(500)
	f.bank.HoldTimerElapsed()

	assert.Equal(t, Held, f.bank.LastState(f.h[1]))
}

func TestReleaseOneOfTwoKeepsTimer(t *testing.T) {
	f := newFixture(t, 2)

	f.press(0, 0)
	f.press(1, 30)
	f.release(1, 100)

	assert.True(t, f.bank.TimerRunning())
	assert.Equal(t, 0, f.timer.stops)

	f.clk.at(500)
	f.bank.HoldTimerElapsed()
	assert.Equal(t, Held, f.bank.LastState(f.h[0]))
	assert.Equal(t, Released, f.bank.LastState(f.h[1]))
}

func TestReleaseSoleParticipantStopsTimer(t *testing.T) {
	f := newFixture(t, 1)

	f.press(0, 0)
	f.release(0, 100)

	assert.False(t, f.bank.TimerRunning())
	assert.False(t, f.timer.running)
	assert.Equal(t, 1, f.timer.stops)

	// late fire after cancellation
	f.clk.at(500)
	f.bank.HoldTimerElapsed()
	assert.Equal(t, Released, f.bank.LastState(f.h[0]))
	assert.Equal(t, 0, f.bank.Stats().HoldSweeps)
	assert.Equal(t, 1, f.timer.stops, "redundant stop must be a no-op")
}

func TestDoublePressedCanBeHeld(t *testing.T) {
	f := newFixture(t, 1)

	f.press(0, 0)
	f.release(0, 100)
	f.press(0, 200)
	require.Equal(t, DoublePressed, f.bank.LastState(f.h[0]))

	f.clk.at(700)
	f.bank.HoldTimerElapsed()
	assert.Equal(t, Held, f.bank.LastState(f.h[0]))
}

func TestTimerRestartsAfterExpiry(t *testing.T) {
	f := newFixture(t, 2)

	f.press(0, 0)
	f.clk.at(500)
	f.bank.HoldTimerElapsed()

	// timer is free again: B starts a fresh interval
	f.press(1, 1000)
	assert.Equal(t, 2, f.timer.starts)
	assert.True(t, f.bank.Snapshot()[1].Participating)
	assert.False(t, f.bank.Snapshot()[0].Participating)
}

func TestHoldDisabledWithoutTimer(t *testing.T) {
	clk := &testClock{now: epoch}
	b, err := NewBank(1, Config{Clock: clk.Now, Timing: DefaultTiming()})
	require.NoError(t, err)

	rec := &recorder{}
	h, err := b.Create(ButtonConfig{Handler: rec.handle})
	require.NoError(t, err)

	b.OnEdge(h, EmulatePress)
	b.HoldTimerElapsed()

	info, _ := b.Button(h)
	assert.Equal(t, Pressed, info.LastState)
	assert.False(t, info.Participating)
	assert.False(t, b.TimerRunning())
}
