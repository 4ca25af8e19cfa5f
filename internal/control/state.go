// Package control holds the canonical control-state model of the DJ surface,
// the reducer that applies decoded input events to it, and the bounded
// activity log that records what every event did.
package control

import "github.com/chase3718/djpad/internal/inputmap"

// Default values applied at start and by Reset.
const (
	CenterValue        = 64
	DefaultMasterLevel = 100
)

// Deck is the state of one deck section.
type Deck struct {
	Volume   int `json:"volume"`
	Filter   int `json:"filter"`
	EQLow    int `json:"eq_low"`
	EQMid    int `json:"eq_mid"`
	EQHigh   int `json:"eq_high"`
	Pitch    int `json:"pitch"`
	Jogwheel int `json:"jogwheel"`

	Play      bool `json:"play"`
	Cue       bool `json:"cue"`
	Sync      bool `json:"sync"`
	Shift     bool `json:"shift"`
	JogPush   bool `json:"jog_push"`
	Load      bool `json:"load"`
	Headphone bool `json:"headphone"`

	Pads      [inputmap.PadsPerBank]bool `json:"pads"`
	ShiftPads [inputmap.PadsPerBank]bool `json:"shift_pads"`
}

// Mixer is the state of the shared mixer section.
type Mixer struct {
	Crossfader    int  `json:"crossfader"`
	MasterVolume  int  `json:"master_volume"`
	BrowseEncoder int  `json:"browse_encoder"`
	BrowsePush    bool `json:"browse_push"`
}

// State is a plain value; copying it yields an independent snapshot.
type State struct {
	DeckA Deck  `json:"deck_a"`
	DeckB Deck  `json:"deck_b"`
	Mixer Mixer `json:"mixer"`
}

func defaultDeck() Deck {
	return Deck{
		Volume: CenterValue,
		Filter: CenterValue,
		EQLow:  CenterValue,
		EQMid:  CenterValue,
		EQHigh: CenterValue,
		Pitch:  CenterValue,
	}
}

// NewState returns the model with every control at its default.
func NewState() State {
	return State{
		DeckA: defaultDeck(),
		DeckB: defaultDeck(),
		Mixer: Mixer{
			Crossfader:   CenterValue,
			MasterVolume: DefaultMasterLevel,
		},
	}
}

// Reset restores every control to its default.
func (s *State) Reset() { *s = NewState() }

// Deck returns the deck section for g, or nil for the mixer.
func (s *State) Deck(g inputmap.Group) *Deck {
	switch g {
	case inputmap.GroupDeckA:
		return &s.DeckA
	case inputmap.GroupDeckB:
		return &s.DeckB
	}
	return nil
}

// intSlot resolves ref to a slider or encoder field.
func (s *State) intSlot(ref inputmap.Ref) *int {
	if ref.Group == inputmap.GroupMixer {
		switch ref.Slot {
		case inputmap.SlotCrossfader:
			return &s.Mixer.Crossfader
		case inputmap.SlotMasterVolume:
			return &s.Mixer.MasterVolume
		case inputmap.SlotBrowseEncoder:
			return &s.Mixer.BrowseEncoder
		}
		return nil
	}
	d := s.Deck(ref.Group)
	if d == nil {
		return nil
	}
	switch ref.Slot {
	case inputmap.SlotVolume:
		return &d.Volume
	case inputmap.SlotFilter:
		return &d.Filter
	case inputmap.SlotEQLow:
		return &d.EQLow
	case inputmap.SlotEQMid:
		return &d.EQMid
	case inputmap.SlotEQHigh:
		return &d.EQHigh
	case inputmap.SlotPitch:
		return &d.Pitch
	case inputmap.SlotJogwheel:
		return &d.Jogwheel
	}
	return nil
}

// boolSlot resolves ref to a button field or a single pad. Pad indexes are
// 1-based; anything outside the bank resolves to nil.
func (s *State) boolSlot(ref inputmap.Ref) *bool {
	if ref.Group == inputmap.GroupMixer {
		if ref.Slot == inputmap.SlotBrowsePush {
			return &s.Mixer.BrowsePush
		}
		return nil
	}
	d := s.Deck(ref.Group)
	if d == nil {
		return nil
	}
	switch ref.Slot {
	case inputmap.SlotPlay:
		return &d.Play
	case inputmap.SlotCue:
		return &d.Cue
	case inputmap.SlotSync:
		return &d.Sync
	case inputmap.SlotShift:
		return &d.Shift
	case inputmap.SlotJogPush:
		return &d.JogPush
	case inputmap.SlotLoad:
		return &d.Load
	case inputmap.SlotHeadphone:
		return &d.Headphone
	case inputmap.SlotPads:
		return padAt(&d.Pads, ref.Index)
	case inputmap.SlotShiftPads:
		return padAt(&d.ShiftPads, ref.Index)
	}
	return nil
}

func padAt(bank *[inputmap.PadsPerBank]bool, index int) *bool {
	if index < 1 || index > len(bank) {
		return nil
	}
	return &bank[index-1]
}

// Int reads a slider or encoder value.
func (s *State) Int(ref inputmap.Ref) (int, bool) {
	p := s.intSlot(ref)
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Bool reads a button or pad value.
func (s *State) Bool(ref inputmap.Ref) (bool, bool) {
	p := s.boolSlot(ref)
	if p == nil {
		return false, false
	}
	return *p, true
}
