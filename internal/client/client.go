// Package client provides the interface the gw CLI uses to talk to a
// running monitor, and an HTTP/JSON implementation of it.
package client

import (
	"context"
	"time"

	"github.com/alfredjeanlab/gatewatch/internal/model"
)

// GateClient is the interface that all gw API commands use to communicate
// with the monitor daemon.
type GateClient interface {
	Health(ctx context.Context) (string, error)
	Status(ctx context.Context) (*model.Snapshot, error)

	// Activity log
	Logs(ctx context.Context) (*LogsResponse, error)
	ClearLogs(ctx context.Context) error

	// Journal
	Transitions(ctx context.Context, req *TransitionsRequest) ([]*model.Transition, error)

	// Stream calls fn for every event until ctx is done, the server ends the
	// stream, or fn returns an error.
	Stream(ctx context.Context, req *StreamRequest, fn func(Event) error) error

	// Lifecycle
	Close() error
}

// LogsResponse is the activity log as returned by the API.
type LogsResponse struct {
	Entries []model.LogEntry `json:"entries"`
	Cap     int              `json:"cap"`
}

// TransitionsRequest holds the optional journal filters.
type TransitionsRequest struct {
	Limit int
	Since time.Time
	To    model.GateState
}

// StreamRequest holds the event stream parameters.
type StreamRequest struct {
	Topics      []string
	LastEventID string
}

// Event is one server-sent event.
type Event struct {
	ID    string
	Topic string
	Data  []byte
}
