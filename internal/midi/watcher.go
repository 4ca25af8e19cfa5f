package midi

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/chase3718/djpad/internal/control"
)

// -------------------- Hot-swap config --------------------

// DefaultPreferred matches the Hercules DJControl family.
var DefaultPreferred = []string{"DJControl", "Hercules"}

// DefaultExcluded lists virtual and system ports that are never auto-connected.
var DefaultExcluded = []string{"Midi Through", "Through Port", "Dummy"}

const DefaultRescan = time.Second

// ErrDeviceGone is passed to the disconnect callback when the active input
// disappears from the port list.
var ErrDeviceGone = errors.New("midi: device disappeared")

// Options configures a Watcher. Zero fields take the defaults above.
type Options struct {
	Preferred []string
	Excluded  []string
	Rescan    time.Duration
	Logger    *slog.Logger

	// OnEvent is called from the listener goroutine for every decoded message.
	OnEvent func(control.Event)
	// OnConnect is called once a device is open and listening.
	OnConnect func(name string)
	// OnDisconnect is called once per lost connection, from its own goroutine.
	OnDisconnect func(err error)
}

// driver is the part of the rtmidi driver the watcher uses.
type driver interface {
	Ins() ([]drivers.In, error)
	Close() error
}

var newDriver = func() (driver, error) {
	return rtmididrv.New()
}

// -------------------- Watcher --------------------

// Watcher monitors the available MIDI inputs and keeps a connection to the
// preferred device. It handles hot-plug (device appears) and hot-unplug
// (device disappears or the listener fails).
type Watcher struct {
	mu           sync.Mutex
	drv          driver
	inPort       drivers.In
	stopFn       func()
	connected    bool
	selectedName string
	lastRescanAt time.Time

	opts   Options
	logger *slog.Logger
}

// NewWatcher initialises the rtmidi driver. Call Close when done.
func NewWatcher(opts Options) (*Watcher, error) {
	drv, err := newDriver()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	if opts.Preferred == nil {
		opts.Preferred = DefaultPreferred
	}
	if opts.Excluded == nil {
		opts.Excluded = DefaultExcluded
	}
	if opts.Rescan <= 0 {
		opts.Rescan = DefaultRescan
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{drv: drv, opts: opts, logger: logger}, nil
}

// Close shuts down the active connection and the driver.
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closeConn()
	if err := w.drv.Close(); err != nil {
		w.logger.Warn("midi: driver close failed", "err", err)
	}
}

// Connected returns the name of the open device, if any.
func (w *Watcher) Connected() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selectedName, w.connected
}

// Ports lists the input ports that are candidates for auto-connect.
func (w *Watcher) Ports() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.listInputs()
}

// PortInfo describes one input port found by Scan.
type PortInfo struct {
	Name      string `json:"name"`
	Preferred bool   `json:"preferred"`
}

// Scan lists the candidate inputs and flags the ones matching a preferred
// pattern. The next Tick rescans immediately.
func (w *Watcher) Scan() []PortInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	names := w.listInputs()
	out := make([]PortInfo, 0, len(names))
	for _, n := range names {
		out = append(out, PortInfo{Name: n, Preferred: matchesAny(n, w.opts.Preferred)})
	}
	w.lastRescanAt = time.Time{}
	return out
}

// Tick should be called regularly from the main loop. It scans for devices at
// most once per rescan interval, connects to a preferred one, and detects
// disappearance of the active device.
func (w *Watcher) Tick() {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	if !w.lastRescanAt.IsZero() && now.Sub(w.lastRescanAt) < w.opts.Rescan {
		return
	}
	w.lastRescanAt = now

	inputs := w.listInputs()

	if w.connected {
		for _, n := range inputs {
			if n == w.selectedName {
				return
			}
		}
		w.logger.Warn("midi: device disappeared", "device", w.selectedName)
		w.dropConn(fmt.Errorf("%w: %s", ErrDeviceGone, w.selectedName))
		return
	}

	if len(inputs) == 0 {
		return
	}
	cand, ok := pickPreferred(inputs, w.opts.Preferred)
	if !ok {
		w.logger.Debug("midi: no preferred input", "devices", strings.Join(inputs, ", "))
		return
	}
	if err := w.openByName(cand); err != nil {
		w.logger.Error("midi: connect failed", "device", cand, "err", err)
	}
}

// -------------------- internal --------------------

func (w *Watcher) listInputs() []string {
	ins, err := w.drv.Ins()
	if err != nil {
		w.logger.Error("midi: list inputs failed", "err", err)
		return nil
	}
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	names = filterExcluded(names, w.opts.Excluded)
	w.logger.Debug("midi: inputs found", "count", len(names), "devices", strings.Join(names, ", "))
	return names
}

func filterExcluded(names, excluded []string) []string {
	out := names[:0:0]
	for _, name := range names {
		if matchesAny(name, excluded) {
			continue
		}
		out = append(out, name)
	}
	return out
}

// pickPreferred returns the first input matching a preferred pattern, in
// pattern order, or the only input when there is exactly one.
func pickPreferred(inputs, preferred []string) (string, bool) {
	for _, pat := range preferred {
		for _, name := range inputs {
			if containsCI(name, pat) {
				return name, true
			}
		}
	}
	if len(inputs) == 1 {
		return inputs[0], true
	}
	return "", false
}

func (w *Watcher) closeConn() {
	if w.stopFn != nil {
		w.stopFn()
		w.stopFn = nil
	}
	if w.inPort != nil {
		_ = w.inPort.Close()
		w.inPort = nil
	}
	w.connected = false
	w.selectedName = ""
}

// dropConn closes the connection, forces an immediate rescan and reports
// the loss. Callers hold w.mu.
func (w *Watcher) dropConn(err error) {
	w.closeConn()
	w.lastRescanAt = time.Time{}
	if w.opts.OnDisconnect != nil {
		go w.opts.OnDisconnect(err)
	}
}

func (w *Watcher) openByName(name string) error {
	ins, err := w.drv.Ins()
	if err != nil {
		return err
	}
	var found drivers.In
	for _, in := range ins {
		if in.String() == name {
			found = in
			break
		}
	}
	if found == nil {
		return fmt.Errorf("input %q not found", name)
	}
	if err := found.Open(); err != nil {
		return fmt.Errorf("open %q: %w", name, err)
	}

	stop, err := gomidi.ListenTo(found, func(msg gomidi.Message, _ int32) {
		ev, ok := Decode(msg)
		if !ok {
			w.logger.Debug("midi: unhandled message", "msg", msg.String())
			return
		}
		if w.opts.OnEvent != nil {
			w.opts.OnEvent(ev)
		}
	}, gomidi.HandleError(func(listenErr error) {
		w.logger.Warn("midi: listener error", "device", name, "err", listenErr)
		// closeConn must not run on the listener goroutine
		go func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			if w.connected && w.selectedName == name {
				w.dropConn(fmt.Errorf("listen %q: %w", name, listenErr))
			}
		}()
	}))
	if err != nil {
		_ = found.Close()
		return fmt.Errorf("listen %q: %w", name, err)
	}

	w.inPort = found
	w.stopFn = stop
	w.connected = true
	w.selectedName = name
	w.logger.Info("midi: connected", "device", name)
	if w.opts.OnConnect != nil {
		w.opts.OnConnect(name)
	}
	return nil
}

// -------------------- utility --------------------

func matchesAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if containsCI(s, p) {
			return true
		}
	}
	return false
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
