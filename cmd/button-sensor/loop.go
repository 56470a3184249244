package main

import (
	"log"
	"os"
	"syscall"
	"time"

	"github.com/sweeney/button-sensor/internal/config"
	"github.com/sweeney/button-sensor/internal/logic"
	"github.com/sweeney/button-sensor/internal/mqtt"
	"github.com/sweeney/button-sensor/internal/status"
)

// holdSetter is implemented by hold timers whose duration can change at runtime.
type holdSetter interface {
	SetHold(d time.Duration)
}

// ticks are the periodic inputs of the run loop. A nil channel disables
// that input.
type ticks struct {
	poll      <-chan time.Time
	repeat    <-chan time.Time
	heartbeat <-chan time.Time
}

// loop owns the bank's dispatch side. All handler calls happen on the
// goroutine running loop.run.
type loop struct {
	bank       *logic.Bank
	hold       holdSetter
	config     *config.Config
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	now        func() time.Time
}

func (l *loop) run(t ticks, reloads <-chan *config.Config, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			// Deliver anything still pending before the final status.
			l.bank.Poll()
			l.shutdown(signalName(s))
			return nil

		case <-t.poll:
			l.bank.Poll()
			l.refresh()

		case <-t.repeat:
			l.bank.RepeatTick()

		case <-t.heartbeat:
			l.heartbeat()

		case c := <-reloads:
			l.reload(c)
		}
	}
}

func (l *loop) refresh() {
	if l.tracker == nil {
		return
	}
	l.tracker.Update(l.bank.Snapshot(), l.bank.Stats(), l.bank.TimerRunning())
	if l.mqttStatus != nil {
		l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
	}
}

func (l *loop) heartbeat() {
	event := mqtt.SystemEvent{
		Timestamp: l.now(),
		Event:     "HEARTBEAT",
	}
	if l.tracker != nil {
		l.refresh()
		// Refresh network info for heartbeat
		if net := readNetworkInfo(); net != nil {
			l.tracker.SetNetwork(net)
		}
		snap := l.tracker.Snapshot()
		totals := snap.Totals()
		log.Printf("heartbeat: uptime=%v gestures=%d held=%d debounced=%d",
			snap.Uptime().Truncate(time.Second), totals.Total(), totals.Held, snap.Stats.Debounced)
		event.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
	}
	if err := l.publisher.PublishSystem(event); err != nil {
		log.Printf("heartbeat publish error: %v", err)
	}
}

func (l *loop) shutdown(reason string) {
	event := mqtt.SystemEvent{
		Timestamp: l.now(),
		Event:     "SHUTDOWN",
		Reason:    reason,
		Retained:  true,
	}
	if l.tracker != nil {
		l.refresh()
		snap := l.tracker.Snapshot()
		event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", reason)
	}
	if err := l.publisher.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	} else {
		log.Printf("published shutdown event")
	}
}

// reload applies timing changes. The button set is fixed for the life of
// the bank, and the repeat ticker keeps its period until restart.
func (l *loop) reload(c *config.Config) {
	if l.config != nil {
		if !l.config.SameButtons(c) {
			log.Printf("config: button changes ignored until restart")
		}
		if l.config.RepeatInterval() != c.RepeatInterval() {
			log.Printf("config: repeat interval change applies after restart")
		}
	}

	l.bank.SetTiming(c.LogicTiming())
	if l.hold != nil {
		l.hold.SetHold(c.HoldDuration())
	}
	if l.tracker != nil {
		l.tracker.SetTiming(int64(c.Timing.DebounceMs), int64(c.Timing.DoublePressMs),
			int64(c.Timing.MultipleButtonMs), c.HoldDuration().Milliseconds())
	}
	l.config = c
	log.Printf("config: timing applied: debounce=%dms double=%dms multi=%dms hold=%v",
		c.Timing.DebounceMs, c.Timing.DoublePressMs, c.Timing.MultipleButtonMs, c.HoldDuration())
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
