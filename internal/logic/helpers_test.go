package logic

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// testClock is a manually advanced clock.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

// at moves the clock to ms milliseconds after epoch.
func (c *testClock) at(ms int) {
	c.now = epoch.Add(time.Duration(ms) * time.Millisecond)
}

// testTimer measures elapsed time against testClock and records calls.
type testTimer struct {
	clk     *testClock
	running bool
	started time.Time
	starts  int
	stops   int
}

func (f *testTimer) funcs() HoldTimer {
	return HoldTimer{
		Start: func() {
			f.starts++
			f.running = true
			f.started = f.clk.now
		},
		Stop: func() {
			f.stops++
			f.running = false
		},
		Elapsed: func() time.Duration {
			return f.clk.now.Sub(f.started)
		},
	}
}

type testPins map[int]bool

func (p testPins) Level(pin int) (bool, error) {
	l, ok := p[pin]
	if !ok {
		return false, errors.New("no such pin")
	}
	return l, nil
}

// recorder collects handler calls for one button.
type recorder struct {
	got []State
}

func (r *recorder) handle(s State) {
	r.got = append(r.got, s)
}

type fixture struct {
	bank  *Bank
	clk   *testClock
	timer *testTimer
	pins  testPins
	recs  []*recorder
	h     []Handle
}

// newFixture creates a bank of n active-low buttons on pins 0..n-1 with a
// test hold timer and default timing.
func newFixture(t *testing.T, n int) *fixture {
	t.Helper()
	return newFixtureTiming(t, n, DefaultTiming())
}

func newFixtureTiming(t *testing.T, n int, timing Timing) *fixture {
	t.Helper()
	clk := &testClock{now: epoch}
	tm := &testTimer{clk: clk}
	pins := testPins{}

	bank, err := NewBank(n, Config{
		Timing: timing,
		Clock:  clk.Now,
		Pins:   pins,
		Timer:  tm.funcs(),
	})
	require.NoError(t, err)

	f := &fixture{bank: bank, clk: clk, timer: tm, pins: pins}
	for i := 0; i < n; i++ {
		rec := &recorder{}
		pins[i] = true // idle high
		h, err := bank.Create(ButtonConfig{
			Name:     string(rune('A' + i)),
			Pin:      i,
			Polarity: ActiveLow,
			Handler:  rec.handle,
		})
		require.NoError(t, err)
		f.recs = append(f.recs, rec)
		f.h = append(f.h, h)
	}
	return f
}

func (f *fixture) press(i, ms int) {
	f.clk.at(ms)
	f.bank.OnEdge(f.h[i], EmulatePress)
}

func (f *fixture) release(i, ms int) {
	f.clk.at(ms)
	f.bank.OnEdge(f.h[i], EmulateRelease)
}
