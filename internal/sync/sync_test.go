package sync

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alfredjeanlab/gatewatch/internal/model"
)

// mockDestination records calls to Write.
type mockDestination struct {
	writes  atomic.Int64
	last    atomic.Value // []byte
	lastSum atomic.Value // Summary
}

func (d *mockDestination) Write(_ context.Context, data []byte, sum Summary) error {
	d.writes.Add(1)
	cp := make([]byte, len(data))
	copy(cp, data)
	d.last.Store(cp)
	d.lastSum.Store(sum)
	return nil
}

func TestSchedulerStartStop(t *testing.T) {
	ms := newMockStore()
	now := time.Now().UTC()
	ms.transitions = []*model.Transition{
		{ID: "gt-1", From: model.GateClosed, To: model.GateOpen, At: now.Add(-time.Minute)},
		{ID: "gt-2", From: model.GateOpen, To: model.GateClosed, At: now},
	}

	dest := &mockDestination{}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	sched := NewScheduler(ms, []Destination{dest}, 50*time.Millisecond, logger)
	sched.Start()

	// Wait for at least the initial sync + one tick.
	time.Sleep(120 * time.Millisecond)
	sched.Stop()

	if writes := dest.writes.Load(); writes < 2 {
		t.Fatalf("expected at least 2 writes, got %d", writes)
	}

	// Verify last written data is valid JSONL.
	data, ok := dest.last.Load().([]byte)
	if !ok || len(data) == 0 {
		t.Fatal("expected non-empty data")
	}

	lines := nonEmptyLines(string(data))
	// 1 header + 2 transitions = 3
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if sum, _ := dest.lastSum.Load().(Summary); sum.Transitions != 2 || !sum.Last.Equal(now) {
		t.Fatalf("unexpected summary passed to destination: %+v", sum)
	}
}

func TestSchedulerStop_NoStart(t *testing.T) {
	ms := newMockStore()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	sched := NewScheduler(ms, nil, time.Minute, logger)
	// Stop without Start should not panic.
	sched.Stop()
}

func TestSchedulerMultipleDestinations(t *testing.T) {
	ms := newMockStore()
	dest1 := &mockDestination{}
	dest2 := &mockDestination{}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	sched := NewScheduler(ms, []Destination{dest1, dest2}, time.Second, logger)
	sched.Start()

	// Wait for the initial sync.
	time.Sleep(50 * time.Millisecond)
	sched.Stop()

	if dest1.writes.Load() < 1 {
		t.Fatal("dest1 expected at least 1 write")
	}
	if dest2.writes.Load() < 1 {
		t.Fatal("dest2 expected at least 1 write")
	}
}

// failingDestination always fails.
type failingDestination struct{ err error }

func (d *failingDestination) Write(context.Context, []byte, Summary) error { return d.err }

func TestSchedulerSyncOnce_ReportsDestinationError(t *testing.T) {
	ms := newMockStore()
	ok := &mockDestination{}
	boom := errors.New("bucket missing")
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	sched := NewScheduler(ms, []Destination{&failingDestination{err: boom}, ok}, time.Minute, logger)
	if err := sched.SyncOnce(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected destination error, got %v", err)
	}
	if ok.writes.Load() != 1 {
		t.Fatal("a failing destination must not stop the others")
	}
}
