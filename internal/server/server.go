// Package server exposes the engine over HTTP: a websocket feed of snapshots
// with a small command channel, and a JSON endpoint for the current state.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/chase3718/djpad/internal/engine"
	"github.com/chase3718/djpad/internal/hub"
)

// StateSource returns the current snapshot.
type StateSource interface {
	Latest() engine.Snapshot
}

type Server struct {
	hub         *hub.Hub
	broadcaster *hub.Broadcaster
	commander   hub.Commander
	state       StateSource
	addr        string
	logger      *slog.Logger
	httpServer  *http.Server
}

func New(h *hub.Hub, b *hub.Broadcaster, cmd hub.Commander, state StateSource, addr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		hub:         h,
		broadcaster: b,
		commander:   cmd,
		state:       state,
		addr:        addr,
		logger:      logger,
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/state", s.handleState)
	return mux
}

// ListenAndServe serves until Shutdown. It returns nil after a clean
// shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("server: listening", "addr", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server. A later ListenAndServe returns
// immediately.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	return s.httpServer.Shutdown(ctx)
}
