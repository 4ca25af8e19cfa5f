// Package inputmap holds the fixed address tables of the DJControl surface.
//
// Every controller-change or note address the device can emit resolves to at
// most one Descriptor. The descriptor names its logical control, how values
// must be applied (Kind) and a typed reference to the slot it drives in the
// control state model. Tables are generated once from per-deck templates and
// never change afterwards.
package inputmap

import "fmt"

// Family separates the controller-change and note address spaces.
type Family uint8

const (
	FamilyCC Family = iota
	FamilyNote
)

func (f Family) String() string {
	switch f {
	case FamilyCC:
		return "cc"
	case FamilyNote:
		return "note"
	}
	return "unknown"
}

// Kind selects the value semantics used by the reducer.
type Kind uint8

const (
	Absolute Kind = iota
	RelativeEncoder
	MomentaryButton
	IndexedPad
)

func (k Kind) String() string {
	switch k {
	case Absolute:
		return "absolute"
	case RelativeEncoder:
		return "encoder"
	case MomentaryButton:
		return "button"
	case IndexedPad:
		return "pad"
	}
	return "unknown"
}

// Group is the section of the control state model a slot lives in.
type Group uint8

const (
	GroupDeckA Group = iota
	GroupDeckB
	GroupMixer
)

func (g Group) String() string {
	switch g {
	case GroupDeckA:
		return "deck A"
	case GroupDeckB:
		return "deck B"
	case GroupMixer:
		return "mixer"
	}
	return "unknown"
}

// Slot identifies one field inside a Group.
type Slot uint8

const (
	SlotNone Slot = iota

	// deck sliders and encoders
	SlotVolume
	SlotFilter
	SlotEQLow
	SlotEQMid
	SlotEQHigh
	SlotPitch
	SlotJogwheel

	// deck buttons
	SlotPlay
	SlotCue
	SlotSync
	SlotShift
	SlotJogPush
	SlotLoad
	SlotHeadphone

	// deck pad banks
	SlotPads
	SlotShiftPads

	// mixer
	SlotCrossfader
	SlotMasterVolume
	SlotBrowseEncoder
	SlotBrowsePush
)

// Ref is a typed reference to a value in the control state model. Index is
// the 1-based pad number for pad banks and zero otherwise.
type Ref struct {
	Group Group
	Slot  Slot
	Index int
}

// Descriptor describes one logical control.
type Descriptor struct {
	Name  string
	Kind  Kind
	Group Group
	Slot  Slot

	// IndexedPad only.
	PadGroup string
	Index    int
}

// Ref returns the state reference driven by d.
func (d Descriptor) Ref() Ref {
	return Ref{Group: d.Group, Slot: d.Slot, Index: d.Index}
}

// Address is the lookup key of a descriptor.
type Address struct {
	Family  Family
	Channel uint8
	Code    uint8
}

func (a Address) String() string {
	return fmt.Sprintf("%s ch=%d code=0x%02X", a.Family, a.Channel, a.Code)
}

// PadsPerBank is the number of pads in one bank.
const PadsPerBank = 8
