// Package midi connects to the DJ controller's MIDI input, follows it across
// hot-plug and unplug, and decodes its messages into control events.
package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/chase3718/djpad/internal/control"
)

// Decode converts a MIDI message into a control event. Messages the engine
// has no use for (clock, sysex, aftertouch, ...) report false.
func Decode(msg gomidi.Message) (control.Event, bool) {
	var ch, key, val uint8
	var rel int16
	var abs uint16

	switch {
	case msg.GetNoteOn(&ch, &key, &val):
		return control.Event{Family: control.NoteOn, Channel: ch, Code: key, Value: int(val)}, true
	case msg.GetNoteOff(&ch, &key, &val):
		return control.Event{Family: control.NoteOff, Channel: ch, Code: key, Value: int(val)}, true
	case msg.GetControlChange(&ch, &key, &val):
		return control.Event{Family: control.ControlChange, Channel: ch, Code: key, Value: int(val)}, true
	case msg.GetPitchBend(&ch, &rel, &abs):
		return control.Event{Family: control.PitchBend, Channel: ch, Value: int(rel)}, true
	}
	return control.Event{}, false
}
