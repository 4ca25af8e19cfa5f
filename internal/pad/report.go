// Package pad is the virtual output gamepad.
//
// A Gamepad accumulates primitive calls (trigger magnitudes, stick vectors,
// button presses) into a pending Report and commits the whole report to its
// Backend in a single Flush. Backends drive a Linux uinput device or a USB
// HID bridge on a serial port.
package pad

import (
	"math"
	"strings"
)

// Button is a bit in the report's button mask.
type Button uint16

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonX
	ButtonY
	ButtonLB
	ButtonRB
	ButtonBack
	ButtonStart
	ButtonGuide
	ButtonLeftThumb
	ButtonRightThumb
	ButtonDpadUp
	ButtonDpadDown
	ButtonDpadLeft
	ButtonDpadRight
)

// Buttons lists every button in bit order.
var Buttons = []Button{
	ButtonA, ButtonB, ButtonX, ButtonY, ButtonLB, ButtonRB,
	ButtonBack, ButtonStart, ButtonGuide, ButtonLeftThumb, ButtonRightThumb,
	ButtonDpadUp, ButtonDpadDown, ButtonDpadLeft, ButtonDpadRight,
}

var buttonNames = map[Button]string{
	ButtonA:          "a",
	ButtonB:          "b",
	ButtonX:          "x",
	ButtonY:          "y",
	ButtonLB:         "lb",
	ButtonRB:         "rb",
	ButtonBack:       "back",
	ButtonStart:      "start",
	ButtonGuide:      "guide",
	ButtonLeftThumb:  "left_thumb",
	ButtonRightThumb: "right_thumb",
	ButtonDpadUp:     "dpad_up",
	ButtonDpadDown:   "dpad_down",
	ButtonDpadLeft:   "dpad_left",
	ButtonDpadRight:  "dpad_right",
}

func (b Button) String() string {
	if n, ok := buttonNames[b]; ok {
		return n
	}
	var names []string
	for _, bit := range Buttons {
		if b&bit != 0 {
			names = append(names, buttonNames[bit])
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "+")
}

// Vector is a stick position; both components are in [-1, 1].
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}

// Report is the complete state of the virtual gamepad.
type Report struct {
	LeftTrigger  uint8  `json:"left_trigger"`
	RightTrigger uint8  `json:"right_trigger"`
	LeftStick    Vector `json:"left_stick"`
	RightStick   Vector `json:"right_stick"`
	Buttons      Button `json:"buttons"`
}

// Pressed reports whether b is held in r.
func (r Report) Pressed(b Button) bool { return r.Buttons&b != 0 }

// Neutral reports whether r has no input applied.
func (r Report) Neutral() bool { return r == Report{} }
