// Package config loads the YAML button and timing configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/button-sensor/internal/logic"
)

// Defaults for fields left out of the file.
const (
	DefaultHoldMs           = 500
	DefaultRepeatIntervalMs = 25
)

type Config struct {
	Buttons []Button     `yaml:"buttons"`
	Timing  TimingConfig `yaml:"timing"`
}

type Button struct {
	Name     string `yaml:"name"`
	Pin      int    `yaml:"pin"`
	Polarity string `yaml:"polarity,omitempty"`
	Mode     string `yaml:"mode,omitempty"`
}

type TimingConfig struct {
	DebounceMs        int                `yaml:"debounce_ms"`
	ReleaseDebounceMs int                `yaml:"release_debounce_ms,omitempty"`
	DoublePressMs     int                `yaml:"double_press_ms"`
	MultipleButtonMs  int                `yaml:"multiple_button_ms"`
	HoldMs            int                `yaml:"hold_ms"`
	RepeatIntervalMs  int                `yaml:"repeat_interval_ms"`
	Acceleration      AccelerationConfig `yaml:"acceleration"`
}

type AccelerationConfig struct {
	Threshold uint8 `yaml:"threshold"`
	Step      uint8 `yaml:"step"`
	Cap       uint8 `yaml:"cap"`
}

// Load reads, validates and defaults the config at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a config document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.applyDefaults()

	if a := cfg.Timing.Acceleration; a.Cap > a.Threshold {
		return nil, fmt.Errorf("config validation failed: timing.acceleration.cap (%d) exceeds threshold (%d)", a.Cap, a.Threshold)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Buttons) == 0 {
		return fmt.Errorf("at least one button is required")
	}

	names := make(map[string]bool)
	pins := make(map[int]bool)
	for i, b := range c.Buttons {
		if b.Name == "" {
			return fmt.Errorf("button %d: name is required", i)
		}
		if names[b.Name] {
			return fmt.Errorf("duplicate button name: %s", b.Name)
		}
		names[b.Name] = true

		if b.Pin < 0 {
			return fmt.Errorf("button %s: invalid pin %d", b.Name, b.Pin)
		}
		if pins[b.Pin] {
			return fmt.Errorf("duplicate button pin: %d", b.Pin)
		}
		pins[b.Pin] = true

		if _, err := parsePolarity(b.Polarity); err != nil {
			return fmt.Errorf("button %s: %w", b.Name, err)
		}
		if _, err := parseMode(b.Mode); err != nil {
			return fmt.Errorf("button %s: %w", b.Name, err)
		}
	}

	t := c.Timing
	for name, v := range map[string]int{
		"debounce_ms":         t.DebounceMs,
		"release_debounce_ms": t.ReleaseDebounceMs,
		"double_press_ms":     t.DoublePressMs,
		"multiple_button_ms":  t.MultipleButtonMs,
		"hold_ms":             t.HoldMs,
		"repeat_interval_ms":  t.RepeatIntervalMs,
	} {
		if v < 0 {
			return fmt.Errorf("timing.%s must not be negative", name)
		}
	}

	return nil
}

func (c *Config) applyDefaults() {
	def := logic.DefaultTiming()

	if c.Timing.DebounceMs == 0 {
		c.Timing.DebounceMs = int(def.Debounce / time.Millisecond)
	}
	if c.Timing.DoublePressMs == 0 {
		c.Timing.DoublePressMs = int(def.DoublePress / time.Millisecond)
	}
	if c.Timing.MultipleButtonMs == 0 {
		c.Timing.MultipleButtonMs = int(def.MultipleButton / time.Millisecond)
	}
	if c.Timing.HoldMs == 0 {
		c.Timing.HoldMs = DefaultHoldMs
	}
	if c.Timing.RepeatIntervalMs == 0 {
		c.Timing.RepeatIntervalMs = DefaultRepeatIntervalMs
	}
	if c.Timing.Acceleration.Threshold == 0 {
		c.Timing.Acceleration.Threshold = def.Acceleration.Threshold
	}
	if c.Timing.Acceleration.Step == 0 {
		c.Timing.Acceleration.Step = def.Acceleration.Step
	}
	if c.Timing.Acceleration.Cap == 0 {
		c.Timing.Acceleration.Cap = def.Acceleration.Cap
	}
	for i := range c.Buttons {
		if c.Buttons[i].Polarity == "" {
			c.Buttons[i].Polarity = logic.ActiveLow.String()
		}
		if c.Buttons[i].Mode == "" {
			c.Buttons[i].Mode = logic.Momentary.String()
		}
	}
}

// LogicTiming converts the timing section for the gesture bank.
func (c *Config) LogicTiming() logic.Timing {
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }
	return logic.Timing{
		Debounce:        ms(c.Timing.DebounceMs),
		ReleaseDebounce: ms(c.Timing.ReleaseDebounceMs),
		DoublePress:     ms(c.Timing.DoublePressMs),
		MultipleButton:  ms(c.Timing.MultipleButtonMs),
		Acceleration: logic.Acceleration{
			Threshold: c.Timing.Acceleration.Threshold,
			Step:      c.Timing.Acceleration.Step,
			Cap:       c.Timing.Acceleration.Cap,
		},
	}
}

// HoldDuration is how long a press must last to become a hold.
func (c *Config) HoldDuration() time.Duration {
	return time.Duration(c.Timing.HoldMs) * time.Millisecond
}

// RepeatInterval is the period of the hold-repeat tick.
func (c *Config) RepeatInterval() time.Duration {
	return time.Duration(c.Timing.RepeatIntervalMs) * time.Millisecond
}

// ButtonConfig builds the bank registration for button i. Polarity and mode
// were checked by Load.
func (c *Config) ButtonConfig(i int, handler logic.Handler) logic.ButtonConfig {
	b := c.Buttons[i]
	polarity, _ := parsePolarity(b.Polarity)
	mode, _ := parseMode(b.Mode)
	return logic.ButtonConfig{
		Name:     b.Name,
		Pin:      b.Pin,
		Mode:     mode,
		Polarity: polarity,
		Handler:  handler,
	}
}

// SameButtons reports whether two configs declare identical button sets.
func (c *Config) SameButtons(other *Config) bool {
	if len(c.Buttons) != len(other.Buttons) {
		return false
	}
	for i := range c.Buttons {
		if c.Buttons[i] != other.Buttons[i] {
			return false
		}
	}
	return true
}

func parsePolarity(s string) (logic.Polarity, error) {
	switch s {
	case "", "active-low":
		return logic.ActiveLow, nil
	case "active-high":
		return logic.ActiveHigh, nil
	}
	return 0, fmt.Errorf("unknown polarity %q", s)
}

func parseMode(s string) (logic.Mode, error) {
	switch s {
	case "", "momentary":
		return logic.Momentary, nil
	case "latching":
		return logic.Latching, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}
