package gpio

import (
	"errors"
	"testing"
)

func TestFakeReaderLevel(t *testing.T) {
	f := NewFakeReader(map[int]bool{17: true, 27: false})

	l, err := f.Level(17)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !l {
		t.Error("pin 17: expected high")
	}

	l, err = f.Level(27)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l {
		t.Error("pin 27: expected low")
	}

	if _, err := f.Level(5); err == nil {
		t.Error("expected error for unconfigured pin")
	}
}

func TestFakeReaderSetFiresEdge(t *testing.T) {
	f := NewFakeReader(map[int]bool{17: true})

	var edges []int
	var levels []bool
	if err := f.Watch(func(pin int) {
		edges = append(edges, pin)
		l, _ := f.Level(pin)
		levels = append(levels, l)
	}); err != nil {
		t.Fatalf("watch: %v", err)
	}

	f.Set(17, false)
	f.Trigger(17)

	if len(edges) != 2 || edges[0] != 17 || edges[1] != 17 {
		t.Fatalf("edges: got %v, want [17 17]", edges)
	}
	if levels[0] || levels[1] {
		t.Errorf("callback should observe the new level, got %v", levels)
	}
}

func TestFakeReaderError(t *testing.T) {
	f := NewFakeReader(map[int]bool{17: true})
	f.ReadError = errors.New("simulated error")

	_, err := f.Level(17)
	if err == nil {
		t.Error("expected error to be returned")
	}
	if err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakeReaderClose(t *testing.T) {
	f := NewFakeReader(map[int]bool{17: true})
	called := false
	f.Watch(func(int) { called = true })

	if f.Closed {
		t.Error("should not be closed initially")
	}

	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}

	f.Set(17, false)
	if called {
		t.Error("no edges should be delivered after Close()")
	}
}

func TestFakeReaderCopiesLevels(t *testing.T) {
	levels := map[int]bool{17: true}
	f := NewFakeReader(levels)
	levels[17] = false

	l, _ := f.Level(17)
	if !l {
		t.Error("reader should not alias the caller's map")
	}
}
