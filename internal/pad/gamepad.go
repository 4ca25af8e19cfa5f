package pad

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrUnavailable is returned by Open when the backend's driver is missing.
	ErrUnavailable = errors.New("pad: output driver not available")
	// ErrNotOpen is returned by backends written to before Open.
	ErrNotOpen = errors.New("pad: device not open")
)

// Backend commits whole reports to a concrete output device.
type Backend interface {
	Name() string
	// Available is the capability query: false when the driver or device is
	// not installed. It must be cheap and side-effect free.
	Available() bool
	Open() error
	Write(r Report) error
	Close() error
}

// Gamepad buffers primitive calls and commits them on Flush. Every call made
// while the gamepad is not open is a silent no-op. It is not safe for
// concurrent use.
type Gamepad struct {
	backend Backend
	logger  *slog.Logger

	open      bool
	pending   Report
	committed Report
	flushes   uint64
}

// New returns a closed gamepad on top of b. A nil backend is never available.
func New(b Backend, logger *slog.Logger) *Gamepad {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gamepad{backend: b, logger: logger}
}

// Name returns the backend name.
func (g *Gamepad) Name() string {
	if g.backend == nil {
		return "none"
	}
	return g.backend.Name()
}

// Available reports whether the backend can be opened.
func (g *Gamepad) Available() bool {
	return g.backend != nil && g.backend.Available()
}

// Open creates the output device with a neutral report pending.
func (g *Gamepad) Open() error {
	if g.open {
		return nil
	}
	if !g.Available() {
		return ErrUnavailable
	}
	if err := g.backend.Open(); err != nil {
		return fmt.Errorf("open %s: %w", g.backend.Name(), err)
	}
	g.open = true
	g.pending = Report{}
	g.committed = Report{}
	g.logger.Info("pad: device opened", "backend", g.backend.Name())
	return nil
}

// Close destroys the output device.
func (g *Gamepad) Close() error {
	if !g.open {
		return nil
	}
	g.open = false
	g.pending = Report{}
	g.committed = Report{}
	g.logger.Info("pad: closing device", "backend", g.backend.Name(), "flushes", g.flushes)
	if err := g.backend.Close(); err != nil {
		return fmt.Errorf("close %s: %w", g.backend.Name(), err)
	}
	return nil
}

// Reset returns every pending input to neutral.
func (g *Gamepad) Reset() {
	if !g.open {
		return
	}
	g.pending = Report{}
}

func (g *Gamepad) SetLeftTrigger(v uint8) {
	if g.open {
		g.pending.LeftTrigger = v
	}
}

func (g *Gamepad) SetRightTrigger(v uint8) {
	if g.open {
		g.pending.RightTrigger = v
	}
}

func (g *Gamepad) SetLeftStick(x, y float64) {
	if g.open {
		g.pending.LeftStick = Vector{X: clampUnit(x), Y: clampUnit(y)}
	}
}

func (g *Gamepad) SetRightStick(x, y float64) {
	if g.open {
		g.pending.RightStick = Vector{X: clampUnit(x), Y: clampUnit(y)}
	}
}

func (g *Gamepad) Press(b Button) {
	if g.open {
		g.pending.Buttons |= b
	}
}

func (g *Gamepad) Release(b Button) {
	if g.open {
		g.pending.Buttons &^= b
	}
}

// Flush commits the pending report in one backend write.
func (g *Gamepad) Flush() error {
	if !g.open {
		return nil
	}
	if err := g.backend.Write(g.pending); err != nil {
		return fmt.Errorf("write %s: %w", g.backend.Name(), err)
	}
	g.committed = g.pending
	g.flushes++
	return nil
}

// Committed returns the last report written to the backend.
func (g *Gamepad) Committed() Report { return g.committed }
