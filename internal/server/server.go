// Package server exposes a running monitor over HTTP/JSON and
// server-sent events.
package server

import (
	"context"
	"log/slog"

	"github.com/alfredjeanlab/gatewatch/internal/model"
)

// Monitor is the read/clear surface of a monitor the API needs.
type Monitor interface {
	Snapshot() model.Snapshot
	Logs() []model.LogEntry
	LogCap() int
	ClearLogs(ctx context.Context)
	Transitions(ctx context.Context, filter model.TransitionFilter) ([]*model.Transition, error)
}

// GateServer serves the monitor API.
type GateServer struct {
	monitor Monitor
	hub     *Hub
	logger  *slog.Logger
}

// NewGateServer returns a server for m. Events published to hub are
// streamed to SSE clients; a nil hub gets a private one.
func NewGateServer(m Monitor, hub *Hub, logger *slog.Logger) *GateServer {
	if hub == nil {
		hub = NewHub()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GateServer{monitor: m, hub: hub, logger: logger}
}

// Hub returns the SSE hub backing /v1/events/stream.
func (s *GateServer) Hub() *Hub { return s.hub }
