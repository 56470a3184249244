package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/button-sensor/internal/logic"
)

func TestFormatPayload(t *testing.T) {
	event := logic.Event{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Button:    "mode",
		Index:     2,
		State:     logic.DoublePressed,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Button.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("unexpected timestamp: %s", parsed.Button.Timestamp)
	}
	if parsed.Button.Event != "DOUBLE_PRESSED" {
		t.Errorf("unexpected event: %s", parsed.Button.Event)
	}
	if parsed.Button.Name != "mode" {
		t.Errorf("unexpected name: %s", parsed.Button.Name)
	}
	if parsed.Button.Index != 2 {
		t.Errorf("unexpected index: %d", parsed.Button.Index)
	}
}

func TestFormatPayloadExactJSON(t *testing.T) {
	event := logic.Event{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 500_000_000, time.UTC),
		Button:    "select",
		Index:     0,
		State:     logic.HeldRepeat,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"button":{"timestamp":"2026-02-02T22:18:12.5Z","name":"select","index":0,"event":"HELD_REPEAT"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", payload, expected)
	}
}

func TestFormatPayloadAllStates(t *testing.T) {
	tests := []struct {
		state logic.State
		want  string
	}{
		{logic.Pressed, "PRESSED"},
		{logic.DoublePressed, "DOUBLE_PRESSED"},
		{logic.Released, "RELEASED"},
		{logic.DoublePressReleased, "DOUBLE_PRESS_RELEASED"},
		{logic.Held, "HELD"},
		{logic.HeldReleased, "HELD_RELEASED"},
		{logic.HeldRepeat, "HELD_REPEAT"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			payload, err := FormatPayload(logic.Event{Timestamp: time.Now(), Button: "b", State: tt.state})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var parsed Payload
			if err := json.Unmarshal(payload, &parsed); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if parsed.Button.Event != tt.want {
				t.Errorf("event: got %s, want %s", parsed.Button.Event, tt.want)
			}
		})
	}
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	event := logic.Event{
		Timestamp: time.Date(2026, 2, 4, 1, 30, 0, 0, loc),
		Button:    "b",
		State:     logic.Pressed,
	}

	payload, _ := FormatPayload(event)
	var parsed Payload
	json.Unmarshal(payload, &parsed)

	if parsed.Button.Timestamp != "2026-02-03T15:30:00Z" {
		t.Errorf("expected UTC timestamp 2026-02-03T15:30:00Z, got %s", parsed.Button.Timestamp)
	}
}

func TestEventTopic(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"mode", "buttons/mode/events"},
		{"foot switch", "buttons/foot_switch/events"},
		{"a/b", "buttons/a_b/events"},
		{"#+", "buttons/__/events"},
		{"", "buttons/unnamed/events"},
	}
	for _, tt := range tests {
		if got := EventTopic(tt.name); got != tt.want {
			t.Errorf("EventTopic(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestTopicSystem(t *testing.T) {
	expected := "buttons/system"
	if TopicSystem != expected {
		t.Errorf("unexpected system topic: got %s, want %s", TopicSystem, expected)
	}
}

func TestFormatSystemPayloadExactJSON(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 3, 10, 30, 45, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-03T10:30:45Z","event":"SHUTDOWN","reason":"SIGTERM"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestFormatSystemPayloadOmitsEmptyReason(t *testing.T) {
	payload, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Date(2026, 2, 3, 10, 30, 45, 0, time.UTC),
		Event:     "RECONNECTED",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-03T10:30:45Z","event":"RECONNECTED"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: "HEARTBEAT", RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("raw payload not passed through: %s", payload)
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()

	err := f.Publish(logic.Event{Timestamp: time.Now(), Button: "mode", State: logic.Held})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(f.Events))
	}
	if f.Events[0].State != logic.Held {
		t.Errorf("unexpected state: %s", f.Events[0].State)
	}
	if len(f.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(f.Messages))
	}
	m := f.Messages[0]
	if m.Topic != "buttons/mode/events" || m.QoS != 0 || m.Retained {
		t.Errorf("unexpected message: %+v", m)
	}
	if got := f.Payloads("buttons/mode/events"); len(got) != 1 {
		t.Errorf("Payloads: got %d, want 1", len(got))
	}
}

func TestFakePublisherError(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("simulated error")

	if err := f.Publish(logic.Event{Button: "b", State: logic.Pressed}); err == nil {
		t.Error("expected error")
	}
	if len(f.Events) != 0 {
		t.Errorf("expected no events recorded on error, got %d", len(f.Events))
	}
}

func TestFakePublisherPublishSystem(t *testing.T) {
	f := NewFakePublisher()

	if err := f.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "STARTUP", Retained: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.SystemEvents) != 1 || f.SystemEvents[0].Event != "STARTUP" {
		t.Fatalf("unexpected system events: %+v", f.SystemEvents)
	}
	if m := f.Messages[0]; m.Topic != TopicSystem || m.QoS != 1 || !m.Retained {
		t.Errorf("unexpected message: %+v", m)
	}

	f.PublishSystemError = errors.New("down")
	if err := f.PublishSystem(SystemEvent{Event: "HEARTBEAT"}); err == nil {
		t.Error("expected error")
	}
	if len(f.SystemEvents) != 1 {
		t.Errorf("failed publish should not be recorded, got %d", len(f.SystemEvents))
	}
}

func TestFakePublisherReset(t *testing.T) {
	f := NewFakePublisher()
	f.Publish(logic.Event{Button: "b", State: logic.Pressed})
	f.PublishSystem(SystemEvent{Event: "STARTUP"})
	f.Close()
	f.Connected = true

	f.Reset()

	if len(f.Events) != 0 || len(f.SystemEvents) != 0 || len(f.Messages) != 0 {
		t.Error("records not cleared")
	}
	if f.Closed || f.Connected {
		t.Error("flags not cleared")
	}
}

func TestFakePublisherPreservesEventOrder(t *testing.T) {
	f := NewFakePublisher()
	states := []logic.State{logic.Pressed, logic.Held, logic.HeldRepeat, logic.HeldReleased}
	for _, s := range states {
		f.Publish(logic.Event{Button: "b", State: s})
	}

	f.PublishSystem(SystemEvent{Event: "HEARTBEAT"})

	for i, s := range states {
		if f.Events[i].State != s {
			t.Errorf("event %d: got %s, want %s", i, f.Events[i].State, s)
		}
	}
	if len(f.Messages) != 5 || f.Messages[4].Topic != TopicSystem {
		t.Errorf("messages out of order: %d recorded", len(f.Messages))
	}
	if got := f.Payloads(EventTopic("b")); len(got) != 4 {
		t.Errorf("gesture payloads: got %d, want 4", len(got))
	}
}
