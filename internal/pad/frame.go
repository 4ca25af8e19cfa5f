package pad

import (
	"errors"
	"math"
)

const (
	SOF0         = 0xAA
	SOF1         = 0x55
	CmdPadReport = 0x20

	framePayloadLen = 9
	frameLen        = 4 + framePayloadLen + 1
)

var errBadFrame = errors.New("pad: malformed frame")

// Frame is a full gamepad report sent to the USB HID bridge in one bulk
// transfer. Every field is serialised into the 9-byte payload.
type Frame struct {
	LeftTrigger  byte
	RightTrigger byte
	Stick        [4]int8 // LX LY RX RY, scaled to -127..127
	Buttons      uint16
	Seq          byte
}

func stickByte(v float64) int8 {
	return int8(math.Round(clampUnit(v) * 127))
}

// FrameFromReport converts r into a frame tagged with seq.
func FrameFromReport(r Report, seq byte) Frame {
	return Frame{
		LeftTrigger:  r.LeftTrigger,
		RightTrigger: r.RightTrigger,
		Stick: [4]int8{
			stickByte(r.LeftStick.X), stickByte(r.LeftStick.Y),
			stickByte(r.RightStick.X), stickByte(r.RightStick.Y),
		},
		Buttons: uint16(r.Buttons),
		Seq:     seq,
	}
}

// Encode builds the on-wire representation:
//
//	[SOF0][SOF1][LEN][CMD][LT][RT][LX][LY][RX][RY][BTN lo][BTN hi][Seq][CKS]
//
// CKS is the XOR of LEN, CMD and the payload.
func (f *Frame) Encode() []byte {
	payload := make([]byte, 0, framePayloadLen)
	payload = append(payload, f.LeftTrigger, f.RightTrigger)
	for _, s := range f.Stick {
		payload = append(payload, byte(s))
	}
	payload = append(payload, byte(f.Buttons), byte(f.Buttons>>8), f.Seq)

	length := byte(len(payload) + 1) // +1 for CMD byte
	cks := length ^ CmdPadReport
	for _, b := range payload {
		cks ^= b
	}

	out := []byte{SOF0, SOF1, length, CmdPadReport}
	out = append(out, payload...)
	out = append(out, cks)
	return out
}

// decodeFrame parses one encoded frame.
func decodeFrame(b []byte) (Frame, error) {
	if len(b) != frameLen || b[0] != SOF0 || b[1] != SOF1 || b[3] != CmdPadReport {
		return Frame{}, errBadFrame
	}
	if int(b[2]) != framePayloadLen+1 {
		return Frame{}, errBadFrame
	}
	var cks byte
	for _, c := range b[2 : frameLen-1] {
		cks ^= c
	}
	if cks != b[frameLen-1] {
		return Frame{}, errBadFrame
	}
	p := b[4 : 4+framePayloadLen]
	return Frame{
		LeftTrigger:  p[0],
		RightTrigger: p[1],
		Stick:        [4]int8{int8(p[2]), int8(p[3]), int8(p[4]), int8(p[5])},
		Buttons:      uint16(p[6]) | uint16(p[7])<<8,
		Seq:          p[8],
	}, nil
}
