package mqtt

import (
	"testing"
)

func msg(i int) bufferedMsg {
	return bufferedMsg{topic: EventTopic("b"), payload: []byte{byte(i)}}
}

func TestRingBufferEmptyDrain(t *testing.T) {
	rb := newRingBuffer(4)
	if got := rb.drainAll(); got != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(got))
	}
}

func TestRingBufferKeepsOrder(t *testing.T) {
	rb := newRingBuffer(8)
	for i := 0; i < 5; i++ {
		rb.push(msg(i))
	}
	if rb.len() != 5 {
		t.Fatalf("len: got %d, want 5", rb.len())
	}

	got := rb.drainAll()
	for i, m := range got {
		if m.payload[0] != byte(i) {
			t.Errorf("item %d: got payload %d", i, m.payload[0])
		}
		if m.topic != "buttons/b/events" {
			t.Errorf("item %d: unexpected topic %s", i, m.topic)
		}
	}
	if rb.len() != 0 {
		t.Errorf("buffer not empty after drain: %d", rb.len())
	}
}

func TestRingBufferOverflowDropsOldest(t *testing.T) {
	rb := newRingBuffer(3)
	for i := 0; i < 7; i++ {
		rb.push(msg(i))
	}
	if rb.dropped != 4 {
		t.Errorf("dropped: got %d, want 4", rb.dropped)
	}

	got := rb.drainAll()
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}
	for i, m := range got {
		if want := byte(i + 4); m.payload[0] != want {
			t.Errorf("item %d: got %d, want %d", i, m.payload[0], want)
		}
	}
	if rb.dropped != 0 {
		t.Errorf("dropped counter not reset: %d", rb.dropped)
	}
}

func TestRingBufferReuseAfterDrain(t *testing.T) {
	rb := newRingBuffer(4)
	for cycle := 0; cycle < 3; cycle++ {
		for i := 0; i < 3; i++ {
			rb.push(msg(cycle*10 + i))
		}
		got := rb.drainAll()
		if len(got) != 3 {
			t.Fatalf("cycle %d: expected 3 items, got %d", cycle, len(got))
		}
		if got[0].payload[0] != byte(cycle*10) {
			t.Errorf("cycle %d: first item %d", cycle, got[0].payload[0])
		}
	}
}

func TestRingBufferPreservesQoSAndRetain(t *testing.T) {
	rb := newRingBuffer(2)
	rb.push(bufferedMsg{topic: TopicSystem, payload: []byte("x"), qos: 1, retained: true})

	got := rb.drainAll()
	if len(got) != 1 || got[0].qos != 1 || !got[0].retained || got[0].topic != TopicSystem {
		t.Errorf("unexpected message: %+v", got)
	}
}
