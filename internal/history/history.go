// Package history keeps the bounded activity log shown to the operator.
//
// Entries are held most-recent-first and the log never grows past its
// capacity. Nothing is persisted: the log starts empty on every run.
package history

import (
	"sync"
	"time"

	"github.com/alfredjeanlab/gatewatch/internal/idgen"
	"github.com/alfredjeanlab/gatewatch/internal/model"
)

// DefaultCapacity is the number of entries kept when no capacity is given.
const DefaultCapacity = 50

// Status lines that are not gate transitions.
const (
	MessageWaiting = "Waiting for activity..."
	MessageCleared = "History cleared"
)

// Log is a capped, most-recent-first list of log entries plus the status
// line derived from the latest one. It is safe for concurrent use.
type Log struct {
	mu         sync.RWMutex
	capacity   int
	entries    []model.LogEntry
	statusMsg  string
	statusTime time.Time
}

// New returns an empty log holding at most capacity entries.
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		capacity:  capacity,
		entries:   make([]model.LogEntry, 0, capacity),
		statusMsg: MessageWaiting,
	}
}

// Add prepends a new entry, drops the oldest one if the log is full and
// makes msg the current status line.
func (l *Log) Add(msg string, state model.GateState, at time.Time) model.LogEntry {
	entry := model.LogEntry{
		ID:      idgen.LogID(),
		Time:    at,
		Message: msg,
		State:   state,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) == l.capacity {
		l.entries = l.entries[:l.capacity-1]
	}
	l.entries = append(l.entries, model.LogEntry{})
	copy(l.entries[1:], l.entries[:len(l.entries)-1])
	l.entries[0] = entry

	l.statusMsg = msg
	l.statusTime = at
	return entry
}

// Entries returns a copy of the log, most recent first.
func (l *Log) Entries() []model.LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Clear empties the log. The status line reads MessageCleared with no time.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
	l.statusMsg = MessageCleared
	l.statusTime = time.Time{}
}

// Status returns the current status line and its time. The time is zero
// before the first entry and after Clear.
func (l *Log) Status() (string, time.Time) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.statusMsg, l.statusTime
}

// Len returns the number of entries currently held.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Cap returns the maximum number of entries.
func (l *Log) Cap() int {
	return l.capacity
}
