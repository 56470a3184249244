// Package status provides a thread-safe status tracker for the button-sensor daemon.
// It is read by the HTTP handlers and by the MQTT heartbeat.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/button-sensor/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs           int64
	RepeatMs         int64
	HoldMs           int64
	DebounceMs       int64
	DoublePressMs    int64
	MultipleButtonMs int64
	HeartbeatMs      int64
	Driver           string
	Broker           string
	HTTPPort         string
}

// Counts is the number of dispatched gestures of each kind.
type Counts struct {
	Pressed             int
	DoublePressed       int
	Released            int
	DoublePressReleased int
	Held                int
	HeldReleased        int
	HeldRepeat          int
}

// Add counts one dispatched state. Cleared is never dispatched and is ignored.
func (c *Counts) Add(s logic.State) {
	switch s {
	case logic.Pressed:
		c.Pressed++
	case logic.DoublePressed:
		c.DoublePressed++
	case logic.Released:
		c.Released++
	case logic.DoublePressReleased:
		c.DoublePressReleased++
	case logic.Held:
		c.Held++
	case logic.HeldReleased:
		c.HeldReleased++
	case logic.HeldRepeat:
		c.HeldRepeat++
	}
}

// Total is the sum of all counts.
func (c Counts) Total() int {
	return c.Pressed + c.DoublePressed + c.Released + c.DoublePressReleased +
		c.Held + c.HeldReleased + c.HeldRepeat
}

// Button is one button's state and history.
type Button struct {
	logic.Info
	Counts   Counts
	LastSeen logic.State // most recently dispatched gesture
	LastAt   time.Time
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Buttons       []Button
	Stats         logic.Stats
	TimerRunning  bool
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Totals sums the gesture counts of every button.
func (s Snapshot) Totals() Counts {
	var c Counts
	for _, b := range s.Buttons {
		c.Pressed += b.Counts.Pressed
		c.DoublePressed += b.Counts.DoublePressed
		c.Released += b.Counts.Released
		c.DoublePressReleased += b.Counts.DoublePressReleased
		c.Held += b.Counts.Held
		c.HeldReleased += b.Counts.HeldReleased
		c.HeldRepeat += b.Counts.HeldRepeat
	}
	return c
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update replaces the per-button views and core counters.
// Called from runLoop after each poll.
func (t *Tracker) Update(infos []logic.Info, stats logic.Stats, timerRunning bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for len(t.snap.Buttons) < len(infos) {
		t.snap.Buttons = append(t.snap.Buttons, Button{})
	}
	for i, info := range infos {
		t.snap.Buttons[i].Info = info
	}
	t.snap.Stats = stats
	t.snap.TimerRunning = timerRunning
}

// Record counts a dispatched gesture for the button at index.
func (t *Tracker) Record(index int, state logic.State, at time.Time) {
	if index < 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for len(t.snap.Buttons) <= index {
		t.snap.Buttons = append(t.snap.Buttons, Button{})
	}
	b := &t.snap.Buttons[index]
	b.Counts.Add(state)
	b.LastSeen = state
	b.LastAt = at
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// SetTiming updates the displayed timing after a config reload.
func (t *Tracker) SetTiming(debounceMs, doublePressMs, multipleButtonMs, holdMs int64) {
	t.mu.Lock()
	t.snap.Config.DebounceMs = debounceMs
	t.snap.Config.DoublePressMs = doublePressMs
	t.snap.Config.MultipleButtonMs = multipleButtonMs
	t.snap.Config.HoldMs = holdMs
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Buttons = append([]Button(nil), t.snap.Buttons...)
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
