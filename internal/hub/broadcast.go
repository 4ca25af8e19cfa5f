package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/chase3718/djpad/internal/engine"
)

const fullSyncInterval = 5 * time.Second

// Broadcaster receives engine snapshots and sends them to every client.
type Broadcaster struct {
	hub     *Hub
	changes chan engine.Snapshot
	logger  *slog.Logger

	mu   sync.Mutex
	last *engine.Snapshot
}

func NewBroadcaster(h *Hub, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		hub:     h,
		changes: make(chan engine.Snapshot, 1),
		logger:  logger,
	}
}

// Publish hands a snapshot to the broadcaster without blocking. When the
// broadcaster is behind, the pending snapshot is replaced by s.
func (b *Broadcaster) Publish(s engine.Snapshot) {
	for {
		select {
		case b.changes <- s:
			return
		default:
		}
		select {
		case <-b.changes:
		default:
		}
	}
}

// Last returns the most recent snapshot, if any.
func (b *Broadcaster) Last() (engine.Snapshot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.last == nil {
		return engine.Snapshot{}, false
	}
	return *b.last, true
}

// Run broadcasts snapshots until ctx is cancelled. The latest snapshot is
// resent periodically so clients recover from dropped messages.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(fullSyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case s := <-b.changes:
			b.mu.Lock()
			b.last = &s
			b.mu.Unlock()
			b.broadcast(&s)
		case <-ticker.C:
			if s, ok := b.Last(); ok {
				b.broadcast(&s)
			}
		}
	}
}

// SendInitialState sends the current snapshot to a newly connected client.
func (b *Broadcaster) SendInitialState(c *Client) {
	c.queue(NewWelcomeMessage(c.ID()))
	if s, ok := b.Last(); ok {
		c.queue(NewSnapshotMessage(&s))
	}
}

func (b *Broadcaster) broadcast(s *engine.Snapshot) {
	data, err := json.Marshal(NewSnapshotMessage(s))
	if err != nil {
		b.logger.Error("hub: marshal snapshot failed", "seq", s.Seq, "err", err)
		return
	}
	b.hub.Broadcast(data)
}
