package midi

import (
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/chase3718/djpad/internal/control"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		msg  gomidi.Message
		want control.Event
	}{
		{
			name: "control change",
			msg:  gomidi.ControlChange(1, 0x00, 100),
			want: control.Event{Family: control.ControlChange, Channel: 1, Code: 0x00, Value: 100},
		},
		{
			name: "note on",
			msg:  gomidi.NoteOn(6, 0x02, 127),
			want: control.Event{Family: control.NoteOn, Channel: 6, Code: 0x02, Value: 127},
		},
		{
			name: "note on with zero velocity stays note on",
			msg:  gomidi.NoteOn(1, 0x07, 0),
			want: control.Event{Family: control.NoteOn, Channel: 1, Code: 0x07, Value: 0},
		},
		{
			name: "note off",
			msg:  gomidi.NoteOff(2, 0x08),
			want: control.Event{Family: control.NoteOff, Channel: 2, Code: 0x08, Value: 0},
		},
		{
			name: "pitch bend",
			msg:  gomidi.Pitchbend(3, -200),
			want: control.Event{Family: control.PitchBend, Channel: 3, Value: -200},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Decode(tt.msg)
			if !ok {
				t.Fatalf("Decode(%v) not decoded", tt.msg)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodeIgnoresOtherMessages(t *testing.T) {
	for _, msg := range []gomidi.Message{
		gomidi.ProgramChange(0, 3),
		gomidi.AfterTouch(0, 10),
	} {
		if ev, ok := Decode(msg); ok {
			t.Errorf("Decode(%v) = %+v", msg, ev)
		}
	}
}
