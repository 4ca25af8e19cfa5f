package inputmap

import "fmt"

// -------------------- Device layout --------------------

// Channels used by the DJControl Mix Ultra.
const (
	MixerChannel    uint8 = 0
	DeckAChannel    uint8 = 1
	DeckBChannel    uint8 = 2
	DeckAPadChannel uint8 = 6
	DeckBPadChannel uint8 = 7
)

// shiftPadOffset is added to a pad note when the deck's shift is held.
const shiftPadOffset = 0x08

type deckLayout struct {
	group      Group
	prefix     string
	label      string
	channel    uint8
	padChannel uint8
}

var decks = []deckLayout{
	{group: GroupDeckA, prefix: "deck_a", label: "deck A", channel: DeckAChannel, padChannel: DeckAPadChannel},
	{group: GroupDeckB, prefix: "deck_b", label: "deck B", channel: DeckBChannel, padChannel: DeckBPadChannel},
}

type controlTemplate struct {
	code uint8
	name string
	kind Kind
	slot Slot
}

// deckCC is shared by both decks.
var deckCC = []controlTemplate{
	{0x00, "volume", Absolute, SlotVolume},
	{0x01, "filter", Absolute, SlotFilter},
	{0x02, "eq_low", Absolute, SlotEQLow},
	{0x03, "eq_mid", Absolute, SlotEQMid},
	{0x04, "eq_high", Absolute, SlotEQHigh},
	{0x08, "pitch", Absolute, SlotPitch},
	{0x0A, "jogwheel", RelativeEncoder, SlotJogwheel},
}

var deckNotes = []controlTemplate{
	{0x07, "play", MomentaryButton, SlotPlay},
	{0x06, "cue", MomentaryButton, SlotCue},
	{0x05, "sync", MomentaryButton, SlotSync},
	{0x04, "shift", MomentaryButton, SlotShift},
	{0x08, "jog_push", MomentaryButton, SlotJogPush},
	{0x0D, "load", MomentaryButton, SlotLoad},
	{0x0C, "headphone", MomentaryButton, SlotHeadphone},
}

var mixerCC = []controlTemplate{
	{0x00, "crossfader", Absolute, SlotCrossfader},
	{0x01, "browse_encoder", RelativeEncoder, SlotBrowseEncoder},
	{0x03, "master_volume", Absolute, SlotMasterVolume},
}

var mixerNotes = []controlTemplate{
	{0x00, "browse_push", MomentaryButton, SlotBrowsePush},
}

// -------------------- Registry --------------------

// Registry resolves addresses to descriptors. It is read-only after New.
type Registry struct {
	byAddr map[Address]Descriptor
}

// New builds the registry for the DJControl surface.
func New() *Registry {
	r := &Registry{byAddr: make(map[Address]Descriptor)}

	for _, d := range decks {
		for _, t := range deckCC {
			r.add(Address{FamilyCC, d.channel, t.code}, Descriptor{
				Name:  d.prefix + "_" + t.name,
				Kind:  t.kind,
				Group: d.group,
				Slot:  t.slot,
			})
		}
		for _, t := range deckNotes {
			r.add(Address{FamilyNote, d.channel, t.code}, Descriptor{
				Name:  d.prefix + "_" + t.name,
				Kind:  t.kind,
				Group: d.group,
				Slot:  t.slot,
			})
		}
		for i := 0; i < PadsPerBank; i++ {
			r.add(Address{FamilyNote, d.padChannel, uint8(i)}, Descriptor{
				Name:     fmt.Sprintf("%s_pads_%d", d.prefix, i+1),
				Kind:     IndexedPad,
				Group:    d.group,
				Slot:     SlotPads,
				PadGroup: d.label + " pads",
				Index:    i + 1,
			})
			r.add(Address{FamilyNote, d.padChannel, uint8(i + shiftPadOffset)}, Descriptor{
				Name:     fmt.Sprintf("%s_sh_pads_%d", d.prefix, i+1),
				Kind:     IndexedPad,
				Group:    d.group,
				Slot:     SlotShiftPads,
				PadGroup: d.label + " shifted pads",
				Index:    i + 1,
			})
		}
	}

	for _, t := range mixerCC {
		r.add(Address{FamilyCC, MixerChannel, t.code}, Descriptor{Name: t.name, Kind: t.kind, Group: GroupMixer, Slot: t.slot})
	}
	for _, t := range mixerNotes {
		r.add(Address{FamilyNote, MixerChannel, t.code}, Descriptor{Name: t.name, Kind: t.kind, Group: GroupMixer, Slot: t.slot})
	}
	return r
}

func (r *Registry) add(a Address, d Descriptor) {
	if prev, dup := r.byAddr[a]; dup {
		panic(fmt.Sprintf("inputmap: %s mapped twice (%s, %s)", a, prev.Name, d.Name))
	}
	r.byAddr[a] = d
}

// Lookup returns the descriptor at (family, channel, code).
func (r *Registry) Lookup(f Family, channel, code uint8) (Descriptor, bool) {
	d, ok := r.byAddr[Address{Family: f, Channel: channel, Code: code}]
	return d, ok
}

// Len reports the number of mapped addresses.
func (r *Registry) Len() int { return len(r.byAddr) }

// find returns the address and descriptor whose logical name is name.
func (r *Registry) find(name string) (Address, Descriptor, bool) {
	for a, d := range r.byAddr {
		if d.Name == name {
			return a, d, true
		}
	}
	return Address{}, Descriptor{}, false
}
