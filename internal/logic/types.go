// Package logic contains the pure gesture recognition core for button inputs.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via a clock function, and the pin reader and hold
// timer are supplied by the platform.
package logic

import (
	"errors"
	"time"
)

// State is a button's gesture state. It doubles as the event delivered to
// handlers.
type State uint8

const (
	Cleared State = iota
	Pressed
	DoublePressed
	Released
	DoublePressReleased
	Held
	HeldReleased
	HeldRepeat
)

var stateNames = [...]string{
	Cleared:             "CLEARED",
	Pressed:             "PRESSED",
	DoublePressed:       "DOUBLE_PRESSED",
	Released:            "RELEASED",
	DoublePressReleased: "DOUBLE_PRESS_RELEASED",
	Held:                "HELD",
	HeldReleased:        "HELD_RELEASED",
	HeldRepeat:          "HELD_REPEAT",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "UNKNOWN"
}

// Polarity maps a raw pin level to pressed/released.
type Polarity uint8

const (
	ActiveLow Polarity = iota
	ActiveHigh
)

func (p Polarity) String() string {
	if p == ActiveHigh {
		return "active-high"
	}
	return "active-low"
}

// Mode is the physical switch type. Informational only.
type Mode uint8

const (
	Momentary Mode = iota
	Latching
)

func (m Mode) String() string {
	if m == Latching {
		return "latching"
	}
	return "momentary"
}

// Edge is a logical transition derived from a pin sample.
type Edge uint8

const (
	PressEdge Edge = iota
	ReleaseEdge
)

// Emulate selects whether OnEdge samples the pin or injects an edge directly.
type Emulate uint8

const (
	EmulateNone Emulate = iota
	EmulatePress
	EmulateRelease
)

// Handler receives one call per resolved gesture.
type Handler func(State)

// Handle identifies a button slot in a Bank.
type Handle int

var (
	// ErrParam reports an invalid argument: bad handle, nil handler, full bank.
	ErrParam = errors.New("button parameter error")
	// ErrResource reports a missing or misconfigured hold timer.
	ErrResource = errors.New("button resource error")
)

// PinReader samples a raw pin level (true = electrically high).
type PinReader interface {
	Level(pin int) (bool, error)
}

// Acceleration governs the hold-repeat cadence in RepeatTick units.
type Acceleration struct {
	// Counter value a held button must reach before a repeat fires.
	Threshold uint8
	// Amount the threshold shrinks after each repeat.
	Step uint8
	// Lowest threshold reachable.
	Cap uint8
}

// Timing holds the tunable windows of the gesture machine.
type Timing struct {
	// Debounce rejects edges arriving within this window of the last accepted edge.
	Debounce time.Duration
	// ReleaseDebounce, if non-zero, replaces Debounce for release edges.
	ReleaseDebounce time.Duration
	// DoublePress is the window from the last edge in which a press counts as a double press.
	DoublePress time.Duration
	// MultipleButton is how far into a running hold interval another button may still join it.
	MultipleButton time.Duration
	Acceleration   Acceleration
}

// Default timing constants.
const (
	DefaultDebounce       = 20 * time.Millisecond
	DefaultDoublePress    = 300 * time.Millisecond
	DefaultMultipleButton = 100 * time.Millisecond

	DefaultAccelerationThreshold = 18
	DefaultAccelerationStep      = 1
	DefaultAccelerationCap       = 6
)

// DefaultTiming returns the default windows.
func DefaultTiming() Timing {
	return Timing{
		Debounce:       DefaultDebounce,
		DoublePress:    DefaultDoublePress,
		MultipleButton: DefaultMultipleButton,
		Acceleration: Acceleration{
			Threshold: DefaultAccelerationThreshold,
			Step:      DefaultAccelerationStep,
			Cap:       DefaultAccelerationCap,
		},
	}
}

// ButtonConfig describes a button at creation.
type ButtonConfig struct {
	Name     string
	Pin      int
	Mode     Mode
	Polarity Polarity
	Handler  Handler
}

// Info is a read-only view of one button.
type Info struct {
	Handle                Handle
	Name                  string
	Pin                   int
	Mode                  Mode
	Polarity              Polarity
	State                 State
	LastState             State
	LastEdge              time.Time
	Participating         bool
	AccelerationCounter   uint8
	AccelerationThreshold uint8
	RepeatPending         bool
}

// Stats counts core-level anomalies.
type Stats struct {
	Debounced   int // edges rejected by the debounce gate
	Ignored     int // edges that passed debounce but had no valid transition
	ReadErrors  int // pin samples that failed
	TimerStarts int
	TimerStops  int
	HoldSweeps  int
}

// Event is a dispatched gesture, used by publishers and status consumers.
type Event struct {
	Timestamp time.Time
	Button    string
	Index     int
	State     State
}
