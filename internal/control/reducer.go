package control

import (
	"fmt"

	"github.com/chase3718/djpad/internal/inputmap"
)

// -------------------- Events --------------------

// Family is the message family of a decoded input event.
type Family uint8

const (
	ControlChange Family = iota
	NoteOn
	NoteOff
	PitchBend
)

func (f Family) String() string {
	switch f {
	case ControlChange:
		return "CC"
	case NoteOn:
		return "NOTE_ON"
	case NoteOff:
		return "NOTE_OFF"
	case PitchBend:
		return "PITCH"
	}
	return "UNKNOWN"
}

// Event is one decoded input message. Code is the controller number for
// ControlChange and the note number for NoteOn/NoteOff. Value carries the
// controller value, the note velocity, or the pitch bend amount.
type Event struct {
	Family  Family
	Channel uint8
	Code    uint8
	Value   int
}

func (e Event) String() string {
	switch e.Family {
	case ControlChange:
		return fmt.Sprintf("CC ch=%d ctrl=%d val=%d", e.Channel, e.Code, e.Value)
	case NoteOn, NoteOff:
		return fmt.Sprintf("%s ch=%d note=%d vel=%d", e.Family, e.Channel, e.Code, e.Value)
	case PitchBend:
		return fmt.Sprintf("PITCH ch=%d val=%d", e.Channel, e.Value)
	}
	return fmt.Sprintf("%s ch=%d code=%d val=%d", e.Family, e.Channel, e.Code, e.Value)
}

// addressFamily maps an event onto the registry's address space.
func (e Event) addressFamily() (inputmap.Family, bool) {
	switch e.Family {
	case ControlChange:
		return inputmap.FamilyCC, true
	case NoteOn, NoteOff:
		return inputmap.FamilyNote, true
	}
	return 0, false
}

// pressed reports the button state carried by e. NoteOff and NoteOn with
// velocity 0 both release.
func (e Event) pressed() bool {
	return e.Family != NoteOff && e.Value > 0
}

// EncoderDelta decodes a relative-mode encoder value: values above 64 are
// negative steps (v-128), everything else is a non-negative step.
func EncoderDelta(v int) int {
	if v > 64 {
		return v - 128
	}
	return v
}

// -------------------- Reducer --------------------

// Effect describes what Apply did with an event.
type Effect struct {
	Event      Event
	Descriptor inputmap.Descriptor
	Mapped     bool
	Entry      string
}

// Reducer applies events to a State and records them in an ActivityLog. It
// must only be driven from one goroutine.
type Reducer struct {
	registry *inputmap.Registry
	state    *State
	log      *ActivityLog
}

func NewReducer(registry *inputmap.Registry, state *State, log *ActivityLog) *Reducer {
	return &Reducer{registry: registry, state: state, log: log}
}

// Apply reduces one event. It never fails: unmapped or malformed input only
// produces a log entry. Exactly one entry is appended per call.
func (r *Reducer) Apply(ev Event) Effect {
	eff := r.reduce(ev)
	r.log.Add(eff.Entry)
	return eff
}

func (r *Reducer) reduce(ev Event) Effect {
	eff := Effect{Event: ev, Entry: ev.String()}

	fam, ok := ev.addressFamily()
	if !ok {
		return eff
	}
	d, ok := r.registry.Lookup(fam, ev.Channel, ev.Code)
	if !ok {
		return eff
	}

	switch d.Kind {
	case inputmap.Absolute:
		p := r.state.intSlot(d.Ref())
		if p == nil {
			return eff
		}
		*p = ev.Value
		eff.Entry = fmt.Sprintf("CC %s: %d", d.Name, ev.Value)

	case inputmap.RelativeEncoder:
		p := r.state.intSlot(d.Ref())
		if p == nil {
			return eff
		}
		*p += EncoderDelta(ev.Value)
		eff.Entry = fmt.Sprintf("CC %s: %d", d.Name, ev.Value)

	case inputmap.MomentaryButton:
		p := r.state.boolSlot(d.Ref())
		if p == nil {
			return eff
		}
		*p = ev.pressed()
		eff.Entry = fmt.Sprintf("BTN %s: %s", d.Name, onOff(*p))

	case inputmap.IndexedPad:
		p := r.state.boolSlot(d.Ref())
		if p == nil {
			return eff
		}
		*p = ev.pressed()
		eff.Entry = fmt.Sprintf("PAD %s: %s", d.Name, onOff(*p))

	default:
		return eff
	}

	eff.Descriptor = d
	eff.Mapped = true
	return eff
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}
