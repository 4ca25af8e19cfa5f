package emulate

import (
	"github.com/chase3718/djpad/internal/inputmap"
	"github.com/chase3718/djpad/internal/pad"
)

// HandlerKind selects how a binding turns control state into pad output.
type HandlerKind uint8

const (
	Trigger HandlerKind = iota
	JogStick
	JogTouch
	DPadDirection
	FaceButton
)

func (k HandlerKind) String() string {
	switch k {
	case Trigger:
		return "trigger"
	case JogStick:
		return "jog_stick"
	case JogTouch:
		return "jog_touch"
	case DPadDirection:
		return "dpad"
	case FaceButton:
		return "face_button"
	}
	return "unknown"
}

// Side picks the left or right trigger and stick.
type Side uint8

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// Binding connects one control to one output. Side is used by the trigger
// and jog kinds, Button by the d-pad and face-button kinds.
type Binding struct {
	Kind   HandlerKind
	Source inputmap.Ref
	Side   Side
	Button pad.Button
}

func deckRef(g inputmap.Group, s inputmap.Slot) inputmap.Ref {
	return inputmap.Ref{Group: g, Slot: s}
}

func padRef(g inputmap.Group, index int) inputmap.Ref {
	return inputmap.Ref{Group: g, Slot: inputmap.SlotPads, Index: index}
}

// Bindings is the fixed output table, in the order one pass applies it.
var Bindings = []Binding{
	{Kind: Trigger, Source: deckRef(inputmap.GroupDeckA, inputmap.SlotPitch), Side: Left},
	{Kind: Trigger, Source: deckRef(inputmap.GroupDeckB, inputmap.SlotPitch), Side: Right},

	{Kind: JogStick, Source: deckRef(inputmap.GroupDeckA, inputmap.SlotJogwheel), Side: Left},
	{Kind: JogStick, Source: deckRef(inputmap.GroupDeckB, inputmap.SlotJogwheel), Side: Right},

	{Kind: JogTouch, Source: deckRef(inputmap.GroupDeckA, inputmap.SlotJogPush), Side: Left},
	{Kind: JogTouch, Source: deckRef(inputmap.GroupDeckB, inputmap.SlotJogPush), Side: Right},

	{Kind: DPadDirection, Source: padRef(inputmap.GroupDeckA, 2), Button: pad.ButtonDpadUp},
	{Kind: DPadDirection, Source: padRef(inputmap.GroupDeckA, 5), Button: pad.ButtonDpadLeft},
	{Kind: DPadDirection, Source: padRef(inputmap.GroupDeckA, 6), Button: pad.ButtonDpadDown},
	{Kind: DPadDirection, Source: padRef(inputmap.GroupDeckA, 7), Button: pad.ButtonDpadRight},

	{Kind: FaceButton, Source: padRef(inputmap.GroupDeckB, 1), Button: pad.ButtonA},
	{Kind: FaceButton, Source: padRef(inputmap.GroupDeckB, 2), Button: pad.ButtonB},
	{Kind: FaceButton, Source: padRef(inputmap.GroupDeckB, 5), Button: pad.ButtonX},
	{Kind: FaceButton, Source: padRef(inputmap.GroupDeckB, 6), Button: pad.ButtonY},
	{Kind: FaceButton, Source: deckRef(inputmap.GroupMixer, inputmap.SlotBrowsePush), Button: pad.ButtonGuide},
	{Kind: FaceButton, Source: deckRef(inputmap.GroupDeckA, inputmap.SlotLoad), Button: pad.ButtonBack},
	{Kind: FaceButton, Source: deckRef(inputmap.GroupDeckB, inputmap.SlotLoad), Button: pad.ButtonStart},
}

var dpadButtons = []pad.Button{
	pad.ButtonDpadUp, pad.ButtonDpadDown, pad.ButtonDpadLeft, pad.ButtonDpadRight,
}
