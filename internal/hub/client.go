package hub

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	sendBuffer = 256
	writeWait  = 5 * time.Second
)

// Client is one connected websocket peer.
type Client struct {
	id     uuid.UUID
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger *slog.Logger
}

// NewClient creates a client attached to the hub.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	id := uuid.New()
	return &Client{
		id:     id,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		logger: hub.logger.With("client", id.String()),
	}
}

// ID returns the client's identifier.
func (c *Client) ID() string { return c.id.String() }

// queue sends msg to this client only. It never blocks.
func (c *Client) queue(msg *WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("hub: marshal failed", "type", msg.Type, "err", err)
		return
	}
	if !c.hub.sendTo(c, data) {
		c.logger.Warn("hub: message dropped", "type", msg.Type)
	}
}

// WritePump writes queued messages to the connection until the send queue
// is closed.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.logger.Debug("hub: write failed", "err", err)
			break
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// ReadPump reads client commands and forwards them to cmd until the
// connection closes.
func (c *Client) ReadPump(cmd Commander) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn("hub: read failed", "err", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.logger.Warn("hub: bad client message", "err", err)
			continue
		}

		switch msg.Type {
		case TypeReset:
			c.logger.Info("hub: reset requested")
			cmd.Reset()
		case TypeToggleEmulation:
			c.logger.Info("hub: emulation toggle requested")
			cmd.ToggleEmulation()
		case TypeScan:
			ports := cmd.Scan()
			c.logger.Info("hub: scan requested", "ports", len(ports))
			c.queue(NewPortsMessage(ports))
		default:
			c.logger.Debug("hub: unknown message type", "type", msg.Type)
		}
	}
}
