// Package emulate turns the DJ control-state model into virtual gamepad
// output: pitch sliders drive the triggers, spinning a touched jogwheel
// drives a stick around the unit circle, and pads and buttons map onto the
// d-pad and face buttons.
package emulate

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/chase3718/djpad/internal/control"
	"github.com/chase3718/djpad/internal/pad"
)

const (
	// jog ticks per half turn of the emulated stick
	jogTicksPerPi = 160
	// jog ticks needed to ramp the stick to full deflection
	jogTicksFullScale = 100
	// the raw jog value is treated as cyclic over this many steps
	jogRawSpan = 256
)

// Device is the output contract the emulator drives. *pad.Gamepad
// implements it.
type Device interface {
	Available() bool
	Open() error
	Close() error
	Reset()
	SetLeftTrigger(v uint8)
	SetRightTrigger(v uint8)
	SetLeftStick(x, y float64)
	SetRightStick(x, y float64)
	Press(b pad.Button)
	Release(b pad.Button)
	Flush() error
}

// StickState is the derived motion state of one jogwheel-driven stick.
type StickState struct {
	Angle     float64 `json:"angle"`
	LastRaw   int     `json:"last_raw"`
	Touched   bool    `json:"touched"`
	Intensity float64 `json:"intensity"`

	seeded bool
}

// Vector returns the stick position for the current angle and intensity.
func (s StickState) Vector() (x, y float64) {
	return math.Cos(s.Angle) * s.Intensity, math.Sin(s.Angle) * s.Intensity
}

// Emulator applies Bindings to a Device. It is owned by a single goroutine.
type Emulator struct {
	dev    Device
	logger *slog.Logger

	enabled bool
	sticks  [2]StickState
}

// New returns a disabled emulator for dev. A nil dev is never available.
func New(dev Device, logger *slog.Logger) *Emulator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emulator{dev: dev, logger: logger}
}

// Enabled reports whether Start succeeded and Stop has not been called.
func (e *Emulator) Enabled() bool { return e.enabled }

// Available reports whether the output device can be started.
func (e *Emulator) Available() bool { return e.dev != nil && e.dev.Available() }

// Sticks returns a copy of the derived state of both sticks.
func (e *Emulator) Sticks() [2]StickState { return e.sticks }

// Start opens the device and commits a neutral report. It returns
// pad.ErrUnavailable when the output driver is missing.
func (e *Emulator) Start() error {
	if e.enabled {
		return nil
	}
	if !e.Available() {
		return pad.ErrUnavailable
	}
	if err := e.dev.Open(); err != nil {
		return fmt.Errorf("start emulation: %w", err)
	}
	e.resetDerived()
	e.dev.Reset()
	if err := e.dev.Flush(); err != nil {
		_ = e.dev.Close()
		return fmt.Errorf("start emulation: %w", err)
	}
	e.enabled = true
	e.logger.Info("emulate: started")
	return nil
}

// Stop returns every output to neutral with one flush and closes the device.
func (e *Emulator) Stop() error {
	if !e.enabled {
		return nil
	}
	e.enabled = false
	e.resetDerived()
	e.dev.Reset()
	flushErr := e.dev.Flush()
	closeErr := e.dev.Close()
	e.logger.Info("emulate: stopped")
	if flushErr != nil {
		return fmt.Errorf("stop emulation: %w", flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("stop emulation: %w", closeErr)
	}
	return nil
}

// Release drops every output to neutral while staying enabled. The next
// Update re-applies whatever the model still holds.
func (e *Emulator) Release() error {
	if !e.enabled {
		return nil
	}
	e.resetDerived()
	e.dev.Reset()
	if err := e.dev.Flush(); err != nil {
		return fmt.Errorf("release: %w", err)
	}
	return nil
}

func (e *Emulator) resetDerived() {
	e.sticks = [2]StickState{}
}

// Update runs one pass of every binding against st and commits the result
// with a single flush. It does nothing while the emulator is disabled.
func (e *Emulator) Update(st *control.State) error {
	if !e.enabled || st == nil {
		return nil
	}
	dpadCleared := false
	for _, b := range Bindings {
		switch b.Kind {
		case Trigger:
			v, _ := st.Int(b.Source)
			m := TriggerMagnitude(v)
			if b.Side == Left {
				e.dev.SetLeftTrigger(m)
			} else {
				e.dev.SetRightTrigger(m)
			}
		case JogStick:
			v, _ := st.Int(b.Source)
			if e.rotate(&e.sticks[b.Side], v) {
				e.setStick(b.Side)
			}
		case JogTouch:
			on, _ := st.Bool(b.Source)
			if e.touch(&e.sticks[b.Side], on) {
				e.setStick(b.Side)
			}
		case DPadDirection:
			if !dpadCleared {
				for _, d := range dpadButtons {
					e.dev.Release(d)
				}
				dpadCleared = true
			}
			if on, _ := st.Bool(b.Source); on {
				e.dev.Press(b.Button)
			}
		case FaceButton:
			if on, _ := st.Bool(b.Source); on {
				e.dev.Press(b.Button)
			} else {
				e.dev.Release(b.Button)
			}
		}
	}
	if err := e.dev.Flush(); err != nil {
		return fmt.Errorf("emulation pass: %w", err)
	}
	return nil
}

func (e *Emulator) setStick(side Side) {
	x, y := e.sticks[side].Vector()
	if side == Left {
		e.dev.SetLeftStick(x, y)
	} else {
		e.dev.SetRightStick(x, y)
	}
}

// rotate advances s for a new raw jog value and reports whether the stick
// moved.
func (e *Emulator) rotate(s *StickState, raw int) bool {
	if !s.seeded {
		s.LastRaw = raw
		s.seeded = true
		return false
	}
	delta := JogDelta(s.LastRaw, raw)
	s.LastRaw = raw
	if delta == 0 || !s.Touched {
		return false
	}
	s.Angle = math.Mod(s.Angle+float64(delta)/jogTicksPerPi*math.Pi, 2*math.Pi)
	if s.Angle < 0 {
		s.Angle += 2 * math.Pi
	}
	s.Intensity = math.Min(1, s.Intensity+math.Abs(float64(delta))/jogTicksFullScale)
	return true
}

// touch applies the jog push state and reports whether the stick must be
// rewritten. While released the stick is held at the origin.
func (e *Emulator) touch(s *StickState, on bool) bool {
	was := s.Touched
	s.Touched = on
	switch {
	case on && !was:
		s.Intensity = 0
		return false
	case !on:
		s.Intensity = 0
		return true
	}
	return false
}

// JogDelta returns the signed step between two raw jog values, wrapping
// once over a 256-wide cyclic range.
func JogDelta(last, raw int) int {
	d := raw - last
	if d > jogRawSpan/2 {
		d -= jogRawSpan
	} else if d < -jogRawSpan/2 {
		d += jogRawSpan
	}
	return d
}

// TriggerMagnitude maps a pitch slider value to a trigger magnitude: the top
// of the slider (127) is released and each step down adds 2. The bottom of
// the slider is fully pulled.
func TriggerMagnitude(v int) uint8 {
	if v <= 0 {
		return 255
	}
	m := (127 - v) * 2
	return uint8(max(0, min(255, m)))
}
