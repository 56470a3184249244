// Package gpio provides button pin access with hardware abstraction.
// The real implementation uses the Linux GPIO character device; the periph
// implementation covers boards supported by periph.io. The fake
// implementation allows testing without hardware.
package gpio

// Reader samples and watches button pins.
type Reader interface {
	// Level returns the raw level of pin (true = high).
	Level(pin int) (bool, error)

	// Watch registers onEdge to be called with the pin number whenever a
	// watched pin changes level. Calls arrive on driver goroutines.
	Watch(onEdge func(pin int)) error

	// Close releases GPIO resources.
	Close() error
}

// Line describes one button input to request.
type Line struct {
	Pin int
	// PullUp biases the line high (active-low buttons); otherwise it is
	// pulled down.
	PullUp bool
}

// DefaultChip is the GPIO character device used when none is configured.
const DefaultChip = "gpiochip0"
