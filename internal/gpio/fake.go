package gpio

import (
	"fmt"
	"sync"
)

// FakeReader is a test double holding scripted pin levels. Set changes a
// level and delivers an edge to the watcher, as a real line would.
type FakeReader struct {
	mu     sync.Mutex
	levels map[int]bool
	onEdge func(pin int)

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Level()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given initial levels.
func NewFakeReader(levels map[int]bool) *FakeReader {
	f := &FakeReader{levels: make(map[int]bool, len(levels))}
	for pin, l := range levels {
		f.levels[pin] = l
	}
	return f
}

// Level returns the scripted level of pin.
func (f *FakeReader) Level(pin int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ReadError != nil {
		return false, f.ReadError
	}
	l, ok := f.levels[pin]
	if !ok {
		return false, fmt.Errorf("pin %d not configured", pin)
	}
	return l, nil
}

// Watch records the edge callback.
func (f *FakeReader) Watch(onEdge func(pin int)) error {
	f.mu.Lock()
	f.onEdge = onEdge
	f.mu.Unlock()
	return nil
}

// Set changes the level of pin and fires an edge.
func (f *FakeReader) Set(pin int, level bool) {
	f.mu.Lock()
	f.levels[pin] = level
	fn := f.onEdge
	f.mu.Unlock()

	if fn != nil {
		fn(pin)
	}
}

// Trigger fires an edge on pin without changing its level (contact bounce).
func (f *FakeReader) Trigger(pin int) {
	f.mu.Lock()
	fn := f.onEdge
	f.mu.Unlock()

	if fn != nil {
		fn(pin)
	}
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.onEdge = nil
	f.mu.Unlock()
	return nil
}
