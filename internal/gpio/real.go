//go:build linux

package gpio

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads button pins from actual hardware using the Linux GPIO
// character device. Edges are delivered by gpiocdev's event handler.
type RealReader struct {
	chip  *gpiocdev.Chip
	lines map[int]*gpiocdev.Line

	mu     sync.RWMutex
	onEdge func(pin int)
}

// NewRealReader requests every line as an input with both-edge detection.
func NewRealReader(chipName string, lines []Line) (*RealReader, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	r := &RealReader{
		chip:  chip,
		lines: make(map[int]*gpiocdev.Line, len(lines)),
	}

	for _, l := range lines {
		bias := gpiocdev.WithPullDown
		if l.PullUp {
			bias = gpiocdev.WithPullUp
		}
		line, err := chip.RequestLine(l.Pin,
			gpiocdev.AsInput,
			bias,
			gpiocdev.WithBothEdges,
			gpiocdev.WithEventHandler(r.handleEvent))
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request pin %d: %w", l.Pin, err)
		}
		r.lines[l.Pin] = line
	}

	return r, nil
}

func (r *RealReader) handleEvent(evt gpiocdev.LineEvent) {
	r.mu.RLock()
	fn := r.onEdge
	r.mu.RUnlock()
	if fn != nil {
		fn(evt.Offset)
	}
}

// Level returns the raw level of pin.
func (r *RealReader) Level(pin int) (bool, error) {
	line, ok := r.lines[pin]
	if !ok {
		return false, fmt.Errorf("pin %d not requested", pin)
	}
	v, err := line.Value()
	if err != nil {
		return false, fmt.Errorf("read pin %d: %w", pin, err)
	}
	return v != 0, nil
}

// Watch routes line events to onEdge.
func (r *RealReader) Watch(onEdge func(pin int)) error {
	r.mu.Lock()
	r.onEdge = onEdge
	r.mu.Unlock()
	return nil
}

// Close releases GPIO resources.
// Reconfigures pins to input with pull-down (matching Pi boot defaults) before
// closing to ensure clean state for system shutdown/reboot.
func (r *RealReader) Close() error {
	var errs []error

	r.mu.Lock()
	r.onEdge = nil
	r.mu.Unlock()

	for pin, line := range r.lines {
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", pin, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", pin, err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
