// Command button-sensor watches GPIO buttons, recognises gestures and
// publishes them to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/button-sensor/internal/config"
	"github.com/sweeney/button-sensor/internal/gpio"
	"github.com/sweeney/button-sensor/internal/logic"
	"github.com/sweeney/button-sensor/internal/mqtt"
	"github.com/sweeney/button-sensor/internal/status"
	"github.com/sweeney/button-sensor/internal/timer"
	"github.com/sweeney/button-sensor/internal/web"
)

// Supported -driver values.
const (
	driverGPIOCDev = "gpiocdev"
	driverPeriph   = "periph"
)

type options struct {
	configPath string
	poll       time.Duration
	broker     string
	heartbeat  time.Duration
	httpAddr   string
	driver     string
	chip       string
	printState bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "/etc/button-sensor/config.yaml", "Button and timing configuration file")
	flag.DurationVar(&opts.poll, "poll", 10*time.Millisecond, "Gesture dispatch interval")
	flag.StringVar(&opts.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	flag.DurationVar(&opts.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&opts.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.StringVar(&opts.driver, "driver", driverGPIOCDev, `GPIO driver ("gpiocdev" or "periph")`)
	flag.StringVar(&opts.chip, "chip", gpio.DefaultChip, "GPIO character device (gpiocdev driver only)")
	flag.BoolVar(&opts.printState, "print-state", false, "Print current pin levels and exit")

	flag.Parse()

	if err := run(opts); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(opts options) error {
	watcher, err := config.NewWatcher(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	defer watcher.Stop()
	cfg := watcher.Get()

	reader, err := openReader(opts.driver, opts.chip, lines(cfg))
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer reader.Close()

	if opts.printState {
		return printState(os.Stdout, cfg, reader)
	}

	hostname, _ := os.Hostname()
	publisher, err := mqtt.NewRealPublisher(opts.broker, "button-sensor-"+hostname, mqtt.DefaultBufferSize)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:           opts.poll.Milliseconds(),
		RepeatMs:         cfg.RepeatInterval().Milliseconds(),
		HoldMs:           cfg.HoldDuration().Milliseconds(),
		DebounceMs:       int64(cfg.Timing.DebounceMs),
		DoublePressMs:    int64(cfg.Timing.DoublePressMs),
		MultipleButtonMs: int64(cfg.Timing.MultipleButtonMs),
		HeartbeatMs:      opts.heartbeat.Milliseconds(),
		Driver:           opts.driver,
		Broker:           opts.broker,
		HTTPPort:         opts.httpAddr,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// The timer fires only after the bank starts it, so bank is set by then.
	var bank *logic.Bank
	hold := timer.NewSoftware(cfg.HoldDuration(), func() { bank.HoldTimerElapsed() })
	bank, handles, err := newBank(cfg, reader, hold.Funcs(), time.Now, publisher, tracker)
	if err != nil {
		return fmt.Errorf("init buttons: %w", err)
	}

	if err := reader.Watch(edgeHandler(bank, handles)); err != nil {
		return fmt.Errorf("watch gpio: %w", err)
	}

	// Publish startup event with full status snapshot
	tracker.Update(bank.Snapshot(), bank.Stats(), bank.TimerRunning())
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	if opts.httpAddr != "" {
		srv := web.New(opts.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", opts.httpAddr)
	}

	reloads := make(chan *config.Config, 1)
	watcher.OnReload(func(c *config.Config) {
		select {
		case reloads <- c:
		default:
			// a newer reload is already queued
		}
	})
	watcher.Start()

	log.Printf("started: buttons=%d driver=%s poll=%v hold=%v broker=%s heartbeat=%v",
		bank.Len(), opts.driver, opts.poll, cfg.HoldDuration(), opts.broker, opts.heartbeat)

	pollTicker := time.NewTicker(opts.poll)
	defer pollTicker.Stop()
	repeatTicker := time.NewTicker(cfg.RepeatInterval())
	defer repeatTicker.Stop()

	var heartbeatC <-chan time.Time
	if opts.heartbeat > 0 {
		hb := time.NewTicker(opts.heartbeat)
		defer hb.Stop()
		heartbeatC = hb.C
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	l := &loop{
		bank:       bank,
		hold:       hold,
		config:     cfg,
		publisher:  publisher,
		mqttStatus: publisher,
		tracker:    tracker,
		now:        time.Now,
	}
	return l.run(ticks{poll: pollTicker.C, repeat: repeatTicker.C, heartbeat: heartbeatC}, reloads, sigCh)
}

func openReader(driver, chip string, lines []gpio.Line) (gpio.Reader, error) {
	switch driver {
	case driverGPIOCDev:
		return gpio.NewRealReader(chip, lines)
	case driverPeriph:
		return gpio.NewPeriphReader(lines)
	}
	return nil, fmt.Errorf("unknown driver %q", driver)
}

// lines derives the GPIO requests from the configured buttons. Active-low
// buttons idle high and need a pull-up.
func lines(cfg *config.Config) []gpio.Line {
	out := make([]gpio.Line, 0, len(cfg.Buttons))
	for i := range cfg.Buttons {
		bc := cfg.ButtonConfig(i, nil)
		out = append(out, gpio.Line{Pin: bc.Pin, PullUp: bc.Polarity == logic.ActiveLow})
	}
	return out
}

// newBank creates the gesture bank and registers one publishing handler per
// configured button. It returns the pin to handle mapping for edge routing.
func newBank(cfg *config.Config, pins logic.PinReader, hold logic.HoldTimer, now func() time.Time, publisher mqtt.Publisher, tracker *status.Tracker) (*logic.Bank, map[int]logic.Handle, error) {
	bank, err := logic.NewBank(len(cfg.Buttons), logic.Config{
		Timing: cfg.LogicTiming(),
		Clock:  now,
		Pins:   pins,
		Timer:  hold,
	})
	if err != nil {
		return nil, nil, err
	}

	handles := make(map[int]logic.Handle, len(cfg.Buttons))
	for i, b := range cfg.Buttons {
		h, err := bank.Create(cfg.ButtonConfig(i, gestureHandler(i, b.Name, now, publisher, tracker)))
		if err != nil {
			return nil, nil, err
		}
		handles[b.Pin] = h
	}
	return bank, handles, nil
}

// gestureHandler returns the callback for one button. It runs on the loop
// goroutine from Poll.
func gestureHandler(index int, name string, now func() time.Time, publisher mqtt.Publisher, tracker *status.Tracker) logic.Handler {
	return func(s logic.State) {
		event := logic.Event{Timestamp: now(), Button: name, Index: index, State: s}
		log.Printf("gesture: %s %s", name, s)
		if tracker != nil {
			tracker.Record(index, s, event.Timestamp)
		}
		if err := publisher.Publish(event); err != nil {
			log.Printf("publish error: %v", err)
			// Don't crash on publish failure
		}
	}
}

// edgeHandler routes driver edge callbacks to the bank.
func edgeHandler(bank *logic.Bank, handles map[int]logic.Handle) func(pin int) {
	return func(pin int) {
		h, ok := handles[pin]
		if !ok {
			return
		}
		bank.OnEdge(h, logic.EmulateNone)
	}
}

func printState(w io.Writer, cfg *config.Config, reader gpio.Reader) error {
	for i, b := range cfg.Buttons {
		level, err := reader.Level(b.Pin)
		if err != nil {
			return fmt.Errorf("read pin %d: %w", b.Pin, err)
		}
		bc := cfg.ButtonConfig(i, nil)
		edge := logic.Classify(level, bc.Polarity, logic.EmulateNone)
		fmt.Fprintf(w, "%s (pin %d, %s): level=%s %s\n", b.Name, b.Pin, bc.Polarity, levelString(level), edgeString(edge))
	}
	return nil
}

func levelString(high bool) string {
	if high {
		return "HIGH"
	}
	return "LOW"
}

func edgeString(e logic.Edge) string {
	if e == logic.PressEdge {
		return "PRESSED"
	}
	return "RELEASED"
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
