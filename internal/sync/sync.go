package sync

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alfredjeanlab/gatewatch/internal/model"
)

// Destination is the interface for a sync target (S3, git, etc.).
type Destination interface {
	// Write sends the JSONL payload, described by sum, to the destination.
	Write(ctx context.Context, data []byte, sum Summary) error
}

// Source is the journal the scheduler exports from. ListTransitions must
// honour filter.Limit up to exportPageSize and filter.Before.
type Source interface {
	ListTransitions(ctx context.Context, filter model.TransitionFilter) ([]*model.Transition, error)
}

// Scheduler runs periodic syncs to one or more destinations.
type Scheduler struct {
	store        Source
	destinations []Destination
	interval     time.Duration
	logger       *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler that exports the transition journal to the
// given destinations at the specified interval.
func NewScheduler(s Source, destinations []Destination, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		store:        s,
		destinations: destinations,
		interval:     interval,
		logger:       logger,
	}
}

// SyncOnce exports and writes to every destination once, returning the
// first destination error.
func (s *Scheduler) SyncOnce(ctx context.Context) error {
	return s.syncOnce(ctx)
}

// Start begins periodic sync. It runs an initial sync immediately, then
// on each tick.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop cancels the scheduler and waits for the current sync (if any) to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	// Run once immediately at startup.
	_ = s.syncOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.syncOnce(ctx)
		}
	}
}

func (s *Scheduler) syncOnce(ctx context.Context) error {
	var buf bytes.Buffer
	sum, err := ExportJSONL(ctx, s.store, &buf)
	if err != nil {
		s.logger.Error("sync export failed", "err", err)
		return err
	}
	data := buf.Bytes()

	var first error
	for i, dest := range s.destinations {
		if err := dest.Write(ctx, data, sum); err != nil {
			s.logger.Error("sync destination write failed", "destination", fmt.Sprintf("%d", i), "err", err)
			if first == nil {
				first = err
			}
		}
	}

	s.logger.Info("sync completed",
		"destinations", len(s.destinations),
		"transitions", sum.Transitions,
		"bytes", len(data),
	)
	return first
}
