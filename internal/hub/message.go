package hub

import (
	"time"

	"github.com/chase3718/djpad/internal/engine"
	"github.com/chase3718/djpad/internal/midi"
)

// Message types.
const (
	TypeWelcome  = "welcome"
	TypeSnapshot = "snapshot"
	TypePorts    = "ports"

	TypeReset           = "reset"
	TypeToggleEmulation = "toggle_emulation"
	TypeScan            = "scan"
)

// WSMessage is a message sent from the server to a client.
type WSMessage struct {
	Type      string           `json:"type"`
	Seq       uint64           `json:"seq"`
	Timestamp int64            `json:"timestamp"`
	Client    string           `json:"client,omitempty"`
	Data      *engine.Snapshot `json:"data,omitempty"`
	Ports     []midi.PortInfo  `json:"ports,omitempty"`
}

// NewSnapshotMessage wraps a full engine snapshot.
func NewSnapshotMessage(s *engine.Snapshot) *WSMessage {
	return &WSMessage{
		Type:      TypeSnapshot,
		Seq:       s.Seq,
		Timestamp: time.Now().UnixMilli(),
		Data:      s,
	}
}

// NewPortsMessage answers a scan request.
func NewPortsMessage(ports []midi.PortInfo) *WSMessage {
	if ports == nil {
		ports = []midi.PortInfo{}
	}
	return &WSMessage{
		Type:      TypePorts,
		Timestamp: time.Now().UnixMilli(),
		Ports:     ports,
	}
}

// NewWelcomeMessage tells a new client its id.
func NewWelcomeMessage(id string) *WSMessage {
	return &WSMessage{
		Type:      TypeWelcome,
		Timestamp: time.Now().UnixMilli(),
		Client:    id,
	}
}

// ClientMessage is a command sent from a client.
type ClientMessage struct {
	Type string `json:"type"`
}
