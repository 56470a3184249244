package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/button-sensor/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	HoldTimer     string       `json:"hold_timer"`
	Buttons       []ButtonJSON `json:"buttons"`
	Totals        CountsJSON   `json:"event_counts"`
	Core          CoreJSON     `json:"core"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// ButtonJSON is one button row.
type ButtonJSON struct {
	Index         int        `json:"index"`
	Name          string     `json:"name"`
	Pin           int        `json:"pin"`
	Polarity      string     `json:"polarity"`
	Mode          string     `json:"mode"`
	State         string     `json:"state"`
	Pending       string     `json:"pending,omitempty"` // not yet dispatched
	LastEvent     string     `json:"last_event,omitempty"`
	LastEventAt   string     `json:"last_event_at,omitempty"`
	Participating bool       `json:"participating"`
	Counts        CountsJSON `json:"event_counts"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of gesture counts.
type CountsJSON struct {
	Pressed             int `json:"pressed"`
	DoublePressed       int `json:"double_pressed"`
	Released            int `json:"released"`
	DoublePressReleased int `json:"double_press_released"`
	Held                int `json:"held"`
	HeldReleased        int `json:"held_released"`
	HeldRepeat          int `json:"held_repeat"`
}

// CoreJSON reports gesture-core counters.
type CoreJSON struct {
	Debounced   int `json:"debounced"`
	Ignored     int `json:"ignored"`
	ReadErrors  int `json:"read_errors"`
	TimerStarts int `json:"timer_starts"`
	HoldSweeps  int `json:"hold_sweeps"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs           int64  `json:"poll_ms"`
	RepeatMs         int64  `json:"repeat_ms"`
	HoldMs           int64  `json:"hold_ms"`
	DebounceMs       int64  `json:"debounce_ms"`
	DoublePressMs    int64  `json:"double_press_ms"`
	MultipleButtonMs int64  `json:"multiple_button_ms"`
	HeartbeatMs      int64  `json:"heartbeat_ms"`
	Driver           string `json:"driver"`
	Broker           string `json:"broker"`
	HTTPPort         string `json:"http_port"`
}

func countsJSON(c Counts) CountsJSON {
	return CountsJSON{
		Pressed:             c.Pressed,
		DoublePressed:       c.DoublePressed,
		Released:            c.Released,
		DoublePressReleased: c.DoublePressReleased,
		Held:                c.Held,
		HeldReleased:        c.HeldReleased,
		HeldRepeat:          c.HeldRepeat,
	}
}

func buildInner(snap Snapshot) StatusInner {
	timer := "idle"
	if snap.TimerRunning {
		timer = "running"
	}

	buttons := make([]ButtonJSON, 0, len(snap.Buttons))
	for i, b := range snap.Buttons {
		row := ButtonJSON{
			Index:         i,
			Name:          b.Name,
			Pin:           b.Pin,
			Polarity:      b.Polarity.String(),
			Mode:          b.Mode.String(),
			State:         b.LastState.String(),
			Participating: b.Participating,
			Counts:        countsJSON(b.Counts),
		}
		if b.State != logic.Cleared {
			row.Pending = b.State.String()
		}
		if !b.LastAt.IsZero() {
			row.LastEvent = b.LastSeen.String()
			row.LastEventAt = b.LastAt.UTC().Format(time.RFC3339)
		}
		buttons = append(buttons, row)
	}

	return StatusInner{
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		HoldTimer:     timer,
		Buttons:       buttons,
		Totals:        countsJSON(snap.Totals()),
		Core: CoreJSON{
			Debounced:   snap.Stats.Debounced,
			Ignored:     snap.Stats.Ignored,
			ReadErrors:  snap.Stats.ReadErrors,
			TimerStarts: snap.Stats.TimerStarts,
			HoldSweeps:  snap.Stats.HoldSweeps,
		},
		MQTT: MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			PollMs:           snap.Config.PollMs,
			RepeatMs:         snap.Config.RepeatMs,
			HoldMs:           snap.Config.HoldMs,
			DebounceMs:       snap.Config.DebounceMs,
			DoublePressMs:    snap.Config.DoublePressMs,
			MultipleButtonMs: snap.Config.MultipleButtonMs,
			HeartbeatMs:      snap.Config.HeartbeatMs,
			Driver:           snap.Config.Driver,
			Broker:           snap.Config.Broker,
			HTTPPort:         snap.Config.HTTPPort,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}

// FormatButtonJSON returns the status row of the named button, or false when
// no button has that name.
func FormatButtonJSON(snap Snapshot, name string) ([]byte, bool) {
	for _, b := range buildInner(snap).Buttons {
		if b.Name == name {
			data, _ := json.MarshalIndent(b, "", "  ")
			return data, true
		}
	}
	return nil, false
}
