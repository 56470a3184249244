package gpio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// edgePoll bounds WaitForEdge so watcher goroutines notice Close.
const edgePoll = 200 * time.Millisecond

// PeriphReader reads button pins through periph.io host drivers. Pins are
// looked up by their GPIO<n> name. Each watched pin gets one goroutine
// blocked in WaitForEdge.
type PeriphReader struct {
	pins map[int]gpio.PinIO

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewPeriphReader initializes the host drivers and configures every line as
// an input with both-edge detection.
func NewPeriphReader(lines []Line) (*PeriphReader, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	r := &PeriphReader{
		pins: make(map[int]gpio.PinIO, len(lines)),
		done: make(chan struct{}),
	}
	for _, l := range lines {
		name := fmt.Sprintf("GPIO%d", l.Pin)
		p := gpioreg.ByName(name)
		if p == nil {
			r.Close()
			return nil, fmt.Errorf("pin %s not found", name)
		}
		pull := gpio.PullDown
		if l.PullUp {
			pull = gpio.PullUp
		}
		if err := p.In(pull, gpio.BothEdges); err != nil {
			r.Close()
			return nil, fmt.Errorf("configure %s: %w", name, err)
		}
		r.pins[l.Pin] = p
	}
	return r, nil
}

// Level returns the raw level of pin.
func (r *PeriphReader) Level(pin int) (bool, error) {
	p, ok := r.pins[pin]
	if !ok {
		return false, fmt.Errorf("pin %d not configured", pin)
	}
	return p.Read() == gpio.High, nil
}

// Watch starts one edge goroutine per pin. It may only be called once.
func (r *PeriphReader) Watch(onEdge func(pin int)) error {
	if onEdge == nil {
		return errors.New("periph: nil edge callback")
	}
	for pin, p := range r.pins {
		r.wg.Add(1)
		go r.watch(pin, p, onEdge)
	}
	return nil
}

func (r *PeriphReader) watch(pin int, p gpio.PinIO, onEdge func(pin int)) {
	defer r.wg.Done()
	for {
		select {
		case <-r.done:
			return
		default:
		}
		if p.WaitForEdge(edgePoll) {
			onEdge(pin)
		}
	}
}

// Close stops the watchers and halts every pin.
func (r *PeriphReader) Close() error {
	r.once.Do(func() { close(r.done) })
	r.wg.Wait()

	var errs []error
	for pin, p := range r.pins {
		if err := p.Halt(); err != nil {
			errs = append(errs, fmt.Errorf("halt pin %d: %w", pin, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
