package control

import (
	"fmt"
	"testing"

	"github.com/chase3718/djpad/internal/inputmap"
)

func newReducer() (*Reducer, *State, *ActivityLog) {
	s := NewState()
	log := NewActivityLog(ActivityLogSize)
	return NewReducer(inputmap.New(), &s, log), &s, log
}

func cc(ch, ctrl uint8, v int) Event { return Event{Family: ControlChange, Channel: ch, Code: ctrl, Value: v} }
func on(ch, note uint8, v int) Event { return Event{Family: NoteOn, Channel: ch, Code: note, Value: v} }
func off(ch, note uint8) Event       { return Event{Family: NoteOff, Channel: ch, Code: note} }

func TestDefaults(t *testing.T) {
	s := NewState()
	for _, d := range []Deck{s.DeckA, s.DeckB} {
		for name, got := range map[string]int{
			"volume": d.Volume, "filter": d.Filter, "eq_low": d.EQLow,
			"eq_mid": d.EQMid, "eq_high": d.EQHigh, "pitch": d.Pitch,
		} {
			if got != 64 {
				t.Errorf("%s = %d, want 64", name, got)
			}
		}
		if d.Jogwheel != 0 {
			t.Errorf("jogwheel = %d, want 0", d.Jogwheel)
		}
		if d.Play || d.Cue || d.Sync || d.Shift || d.JogPush || d.Load || d.Headphone {
			t.Errorf("buttons not released: %+v", d)
		}
		if d.Pads != [8]bool{} || d.ShiftPads != [8]bool{} {
			t.Errorf("pads not released: %v %v", d.Pads, d.ShiftPads)
		}
	}
	if s.Mixer.Crossfader != 64 || s.Mixer.MasterVolume != 100 || s.Mixer.BrowseEncoder != 0 || s.Mixer.BrowsePush {
		t.Errorf("mixer = %+v", s.Mixer)
	}
}

func TestAbsoluteDeckAVolume(t *testing.T) {
	r, s, _ := newReducer()
	eff := r.Apply(cc(1, 0x00, 100))
	if !eff.Mapped {
		t.Fatal("deck A volume not mapped")
	}
	if s.DeckA.Volume != 100 {
		t.Errorf("DeckA.Volume = %d, want 100", s.DeckA.Volume)
	}
}

func TestAbsoluteIsVerbatim(t *testing.T) {
	r, s, _ := newReducer()
	for v := 0; v <= 127; v++ {
		r.Apply(cc(2, 0x08, v))
		if s.DeckB.Pitch != v {
			t.Fatalf("DeckB.Pitch = %d after value %d", s.DeckB.Pitch, v)
		}
	}
}

func TestEncoderDelta(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 0}, {1, 1}, {63, 63}, {64, 64}, {65, -63}, {70, -58}, {127, -1},
	}
	for _, tc := range tests {
		if got := EncoderDelta(tc.in); got != tc.want {
			t.Errorf("EncoderDelta(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestRelativeEncoder(t *testing.T) {
	t.Run("70 then 2", func(t *testing.T) {
		r, s, _ := newReducer()
		r.Apply(cc(1, 0x0A, 70))
		r.Apply(cc(1, 0x0A, 2))
		if s.DeckA.Jogwheel != -56 {
			t.Errorf("DeckA.Jogwheel = %d, want -56", s.DeckA.Jogwheel)
		}
	})

	t.Run("additive", func(t *testing.T) {
		r, s, _ := newReducer()
		for i := 0; i < 3; i++ {
			r.Apply(cc(0, 0x01, 1))
		}
		if s.Mixer.BrowseEncoder != 3 {
			t.Errorf("BrowseEncoder = %d, want 3", s.Mixer.BrowseEncoder)
		}
	})

	t.Run("unclamped", func(t *testing.T) {
		r, s, _ := newReducer()
		for i := 0; i < 10; i++ {
			r.Apply(cc(2, 0x0A, 60))
		}
		if s.DeckB.Jogwheel != 600 {
			t.Errorf("DeckB.Jogwheel = %d, want 600", s.DeckB.Jogwheel)
		}
		for i := 0; i < 20; i++ {
			r.Apply(cc(2, 0x0A, 68))
		}
		if s.DeckB.Jogwheel != 600-20*60 {
			t.Errorf("DeckB.Jogwheel = %d, want %d", s.DeckB.Jogwheel, 600-20*60)
		}
	})
}

func TestButtons(t *testing.T) {
	r, s, _ := newReducer()

	r.Apply(on(1, 0x07, 127))
	if !s.DeckA.Play {
		t.Fatal("play not pressed")
	}
	r.Apply(on(1, 0x07, 0))
	if s.DeckA.Play {
		t.Error("note on with velocity 0 did not release")
	}

	r.Apply(on(2, 0x08, 1))
	if !s.DeckB.JogPush {
		t.Fatal("jog push not pressed")
	}
	r.Apply(off(2, 0x08))
	if s.DeckB.JogPush {
		t.Error("note off did not release")
	}

	r.Apply(on(0, 0x00, 100))
	if !s.Mixer.BrowsePush {
		t.Error("browse push not pressed")
	}
}

func TestNoteOffWithVelocityReleases(t *testing.T) {
	r, s, _ := newReducer()
	r.Apply(on(1, 0x06, 127))
	r.Apply(Event{Family: NoteOff, Channel: 1, Code: 0x06, Value: 64})
	if s.DeckA.Cue {
		t.Error("note off with release velocity left cue pressed")
	}
}

func TestPadsTouchOnlyTheirSlot(t *testing.T) {
	for k := 1; k <= 8; k++ {
		t.Run(fmt.Sprintf("pad %d", k), func(t *testing.T) {
			r, s, _ := newReducer()
			s.DeckA.Pads = [8]bool{true, false, true, false, true, false, true, false}
			before := s.DeckA.Pads

			r.Apply(on(6, uint8(k-1), 127))
			for i, got := range s.DeckA.Pads {
				want := before[i]
				if i == k-1 {
					want = true
				}
				if got != want {
					t.Errorf("pads[%d] = %v, want %v", i, got, want)
				}
			}
			if s.DeckA.ShiftPads != [8]bool{} || s.DeckB.Pads != [8]bool{} {
				t.Error("other banks changed")
			}
		})
	}
}

func TestShiftedPads(t *testing.T) {
	r, s, log := newReducer()
	r.Apply(on(7, 0x0B, 127))
	if !s.DeckB.ShiftPads[3] {
		t.Errorf("shift pads = %v, want slot 3 set", s.DeckB.ShiftPads)
	}
	if s.DeckB.Pads != [8]bool{} {
		t.Errorf("normal pads changed: %v", s.DeckB.Pads)
	}
	if got, _ := log.Last(); got != "PAD deck_b_sh_pads_4: ON" {
		t.Errorf("entry = %q", got)
	}
}

func TestUnmappedAndPitchBendOnlyLog(t *testing.T) {
	r, s, log := newReducer()
	want := NewState()

	events := []Event{
		cc(1, 0x30, 5),
		on(9, 0x01, 100),
		off(3, 0x02),
		{Family: PitchBend, Channel: 1, Value: -512},
	}
	entries := []string{
		"CC ch=1 ctrl=48 val=5",
		"NOTE_ON ch=9 note=1 vel=100",
		"NOTE_OFF ch=3 note=2 vel=0",
		"PITCH ch=1 val=-512",
	}
	for _, ev := range events {
		if eff := r.Apply(ev); eff.Mapped {
			t.Errorf("%v: mapped to %s", ev, eff.Descriptor.Name)
		}
	}
	if *s != want {
		t.Errorf("state changed: %+v", *s)
	}
	got := log.Entries()
	if len(got) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(got), len(entries))
	}
	for i := range entries {
		if got[i] != entries[i] {
			t.Errorf("entry %d = %q, want %q", i, got[i], entries[i])
		}
	}
}

func TestOneEntryPerEvent(t *testing.T) {
	r, _, log := newReducer()
	events := []Event{
		cc(1, 0x00, 10),
		cc(2, 0x0A, 127),
		on(1, 0x05, 127),
		on(6, 0x02, 127),
		cc(5, 0x05, 1),
	}
	want := []string{
		"CC deck_a_volume: 10",
		"CC deck_b_jogwheel: 127",
		"BTN deck_a_sync: ON",
		"PAD deck_a_pads_3: ON",
		"CC ch=5 ctrl=5 val=1",
	}
	for i, ev := range events {
		r.Apply(ev)
		if log.Len() != i+1 {
			t.Fatalf("after %d events log has %d entries", i+1, log.Len())
		}
		if got, _ := log.Last(); got != want[i] {
			t.Errorf("entry %d = %q, want %q", i, got, want[i])
		}
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	r, s, _ := newReducer()
	r.Apply(cc(1, 0x00, 3))
	r.Apply(cc(0, 0x03, 7))
	r.Apply(on(7, 0x01, 127))
	s.Reset()
	if *s != NewState() {
		t.Errorf("state after reset = %+v", *s)
	}
}

func TestStateRefs(t *testing.T) {
	s := NewState()
	if _, ok := s.Bool(inputmap.Ref{Group: inputmap.GroupDeckA, Slot: inputmap.SlotPads, Index: 0}); ok {
		t.Error("pad index 0 resolved")
	}
	if _, ok := s.Bool(inputmap.Ref{Group: inputmap.GroupDeckA, Slot: inputmap.SlotPads, Index: 9}); ok {
		t.Error("pad index 9 resolved")
	}
	if _, ok := s.Int(inputmap.Ref{Group: inputmap.GroupMixer, Slot: inputmap.SlotVolume}); ok {
		t.Error("mixer volume resolved")
	}
	if v, ok := s.Int(inputmap.Ref{Group: inputmap.GroupMixer, Slot: inputmap.SlotMasterVolume}); !ok || v != 100 {
		t.Errorf("master volume = %d, %v", v, ok)
	}
}
