// Package engine runs the single consumer loop that owns the control-state
// model. Input events and operator commands are posted onto channels from
// any goroutine; the loop reduces them in order, drives the gamepad
// emulator, and publishes snapshots for the view.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chase3718/djpad/internal/control"
	"github.com/chase3718/djpad/internal/emulate"
	"github.com/chase3718/djpad/internal/inputmap"
	"github.com/chase3718/djpad/internal/pad"
)

const (
	DefaultQueue   = 1024
	DefaultRefresh = 32 * time.Millisecond

	commandQueue = 16
)

// Status messages shown in the snapshot.
const (
	StatusWaiting      = "Waiting for DJControl device"
	StatusDisconnected = "Disconnected"
)

// Snapshot is a read-only copy of everything the view renders.
type Snapshot struct {
	Seq       uint64                `json:"seq"`
	State     control.State         `json:"state"`
	Connected bool                  `json:"connected"`
	Device    string                `json:"device"`
	Status    string                `json:"status"`
	Emulation bool                  `json:"emulation"`
	Output    string                `json:"output"`
	Pad       pad.Report            `json:"pad"`
	Sticks    [2]emulate.StickState `json:"sticks"`
	Log       []string              `json:"log"`
}

// Options configures an Engine. Zero fields take defaults.
type Options struct {
	Queue   int
	Refresh time.Duration
	Logger  *slog.Logger
	// Publish receives a snapshot from the loop goroutine whenever something
	// changed, at most once per refresh interval. It must not block.
	Publish func(Snapshot)
}

type commandKind uint8

const (
	cmdConnected commandKind = iota
	cmdDisconnected
	cmdReset
	cmdSetEmulation
	cmdToggleEmulation
	cmdScanned
)

type command struct {
	kind commandKind
	name string
	err  error
	on   bool
	n    int
}

// item is one entry of the input FIFO. Connection changes travel with the
// events of that connection so they are applied in arrival order.
type item struct {
	ev   control.Event
	conn *command
}

// Engine owns the model, the activity log and the emulator.
type Engine struct {
	events chan item
	cmds   chan command
	quit   chan struct{}
	once   sync.Once

	refresh time.Duration
	logger  *slog.Logger
	publish func(Snapshot)

	state   control.State
	log     *control.ActivityLog
	reducer *control.Reducer
	gamepad *pad.Gamepad
	emu     *emulate.Emulator

	connected bool
	device    string
	status    string
	dirty     bool
	seq       uint64

	mu     sync.RWMutex
	latest Snapshot
}

// New returns an engine that drives gp. gp may wrap a nil backend, in which
// case emulation can never be enabled.
func New(registry *inputmap.Registry, gp *pad.Gamepad, opts Options) *Engine {
	if opts.Queue <= 0 {
		opts.Queue = DefaultQueue
	}
	if opts.Refresh <= 0 {
		opts.Refresh = DefaultRefresh
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		events:  make(chan item, opts.Queue),
		cmds:    make(chan command, commandQueue),
		quit:    make(chan struct{}),
		refresh: opts.Refresh,
		logger:  logger,
		publish: opts.Publish,
		state:   control.NewState(),
		log:     control.NewActivityLog(control.ActivityLogSize),
		gamepad: gp,
		emu:     emulate.New(gp, logger),
		status:  StatusWaiting,
	}
	e.reducer = control.NewReducer(registry, &e.state, e.log)
	e.latest = e.snapshot()
	return e
}

// -------------------- Producers --------------------

// Enqueue hands one decoded event to the loop. It blocks while the queue is
// full and reports false once the loop has stopped.
func (e *Engine) Enqueue(ev control.Event) bool {
	return e.push(item{ev: ev})
}

func (e *Engine) push(it item) bool {
	select {
	case <-e.quit:
		return false
	default:
	}
	select {
	case e.events <- it:
		return true
	case <-e.quit:
		return false
	}
}

func (e *Engine) post(c command) {
	select {
	case <-e.quit:
		return
	default:
	}
	select {
	case e.cmds <- c:
	case <-e.quit:
	}
}

// Connected records that the input device name is open. It is queued
// behind any events already enqueued.
func (e *Engine) Connected(name string) {
	e.push(item{conn: &command{kind: cmdConnected, name: name}})
}

// Disconnected records the loss of the input device, after any events
// already enqueued.
func (e *Engine) Disconnected(err error) {
	e.push(item{conn: &command{kind: cmdDisconnected, err: err}})
}

// Reset restores every control to its default.
func (e *Engine) Reset() { e.post(command{kind: cmdReset}) }

// SetEmulation starts or stops gamepad emulation.
func (e *Engine) SetEmulation(on bool) { e.post(command{kind: cmdSetEmulation, on: on}) }

// ToggleEmulation flips gamepad emulation.
func (e *Engine) ToggleEmulation() { e.post(command{kind: cmdToggleEmulation}) }

// Scanned records the result of a port scan.
func (e *Engine) Scanned(n int) { e.post(command{kind: cmdScanned, n: n}) }

// Latest returns the most recently published snapshot.
func (e *Engine) Latest() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.latest
}

// -------------------- Loop --------------------

// Run consumes events and commands until ctx is cancelled. The model keeps
// whatever state it reached; emulation is stopped with a neutral flush.
func (e *Engine) Run(ctx context.Context) error {
	defer e.once.Do(func() { close(e.quit) })

	ticker := time.NewTicker(e.refresh)
	defer ticker.Stop()

	e.logger.Info("engine: running", "queue", cap(e.events), "refresh", e.refresh)
	e.flushSnapshot()
	for {
		select {
		case <-ctx.Done():
			e.stopEmulation()
			e.flushSnapshot()
			e.logger.Info("engine: stopped", "pending", len(e.events))
			return nil
		case it := <-e.events:
			if it.conn != nil {
				e.handle(*it.conn)
			} else {
				e.apply(it.ev)
			}
		case c := <-e.cmds:
			e.handle(c)
		case <-ticker.C:
			if e.dirty {
				e.flushSnapshot()
			}
		}
	}
}

func (e *Engine) apply(ev control.Event) {
	eff := e.reducer.Apply(ev)
	e.dirty = true
	if eff.Mapped {
		e.logger.Debug("engine: event", "control", eff.Descriptor.Name, "value", ev.Value)
	} else {
		e.logger.Debug("engine: unmapped event", "event", ev.String())
	}
	if !e.emu.Enabled() {
		return
	}
	if err := e.emu.Update(&e.state); err != nil {
		e.logger.Error("engine: emulation update failed", "err", err)
		e.failEmulation(err)
	}
}

func (e *Engine) handle(c command) {
	e.dirty = true
	switch c.kind {
	case cmdConnected:
		e.connected = true
		e.device = c.name
		e.status = "Connected to " + c.name
		e.log.Add("Connected: " + c.name)
		e.logger.Info("engine: input connected", "device", c.name)

	case cmdDisconnected:
		e.logger.Warn("engine: input lost, releasing pad", "device", e.device, "err", c.err)
		e.connected = false
		e.device = ""
		e.status = StatusDisconnected
		if c.err != nil {
			e.log.Add("Error: " + c.err.Error())
		}
		if err := e.emu.Release(); err != nil {
			e.failEmulation(err)
		}

	case cmdReset:
		e.state.Reset()
		e.log.Add("Controls reset")
		if e.emu.Enabled() {
			if err := e.emu.Update(&e.state); err != nil {
				e.failEmulation(err)
			}
		}

	case cmdSetEmulation:
		e.setEmulation(c.on)

	case cmdToggleEmulation:
		e.setEmulation(!e.emu.Enabled())

	case cmdScanned:
		e.status = fmt.Sprintf("Found %d MIDI device(s)", c.n)
	}
}

func (e *Engine) setEmulation(on bool) {
	if on == e.emu.Enabled() {
		return
	}
	if !on {
		e.stopEmulation()
		return
	}
	err := e.emu.Start()
	switch {
	case errors.Is(err, pad.ErrUnavailable):
		e.log.Add("Gamepad output driver not available (" + e.gamepad.Name() + ")")
		e.logger.Warn("engine: output driver not available", "output", e.gamepad.Name())
		return
	case err != nil:
		e.log.Add("Failed to start gamepad emulator")
		e.logger.Error("engine: emulator start failed", "output", e.gamepad.Name(), "err", err)
		return
	}
	e.log.Add("Gamepad emulator enabled")
	if err := e.emu.Update(&e.state); err != nil {
		e.failEmulation(err)
	}
}

func (e *Engine) stopEmulation() {
	if !e.emu.Enabled() {
		return
	}
	if err := e.emu.Stop(); err != nil {
		e.logger.Error("engine: emulator stop failed", "err", err)
	}
	e.log.Add("Gamepad emulator disabled")
	e.dirty = true
}

// failEmulation turns an output error into a disabled emulator.
func (e *Engine) failEmulation(err error) {
	e.log.Add("Error: " + err.Error())
	e.stopEmulation()
}

// -------------------- Snapshots --------------------

func (e *Engine) snapshot() Snapshot {
	return Snapshot{
		Seq:       e.seq,
		State:     e.state,
		Connected: e.connected,
		Device:    e.device,
		Status:    e.status,
		Emulation: e.emu.Enabled(),
		Output:    e.gamepad.Name(),
		Pad:       e.gamepad.Committed(),
		Sticks:    e.emu.Sticks(),
		Log:       e.log.Entries(),
	}
}

func (e *Engine) flushSnapshot() {
	e.seq++
	s := e.snapshot()
	e.mu.Lock()
	e.latest = s
	e.mu.Unlock()
	e.dirty = false
	if e.publish != nil {
		e.publish(s)
	}
}
