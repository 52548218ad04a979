package store

import (
	"context"

	"github.com/alfredjeanlab/gatewatch/internal/model"
)

// Store defines the persistence interface for the gate transition journal.
// The activity log itself is never persisted; the journal is an optional
// audit trail kept alongside it.
type Store interface {
	RecordTransition(ctx context.Context, t *model.Transition) error
	// ListTransitions returns transitions newest first, ordered by (at, id).
	// A single call returns at most a store-defined number of rows; page
	// with filter.Before to read further back.
	ListTransitions(ctx context.Context, filter model.TransitionFilter) ([]*model.Transition, error)

	// Lifecycle
	Close() error
}
