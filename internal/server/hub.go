package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/alfredjeanlab/gatewatch/internal/events"
)

// replaySize bounds the backlog kept for Last-Event-ID resumption. Readings
// arrive once a second, so this covers a few minutes of disconnection.
const replaySize = 512

// streamEvent is one published event as sent on the wire.
type streamEvent struct {
	ID    uint64
	Topic string
	Data  []byte
}

// stream is one connected SSE consumer.
type stream struct {
	patterns []string // empty matches every topic
	ch       chan *streamEvent
}

func (s *stream) wants(topic string) bool {
	if len(s.patterns) == 0 {
		return true
	}
	for _, p := range s.patterns {
		if matchTopicPattern(p, topic) {
			return true
		}
	}
	return false
}

// Hub fans monitor events out to SSE streams and keeps a short backlog for
// reconnecting clients. It is an events.Publisher, so the monitor publishes
// to it the same way it publishes to NATS.
type Hub struct {
	mu      sync.Mutex
	seq     uint64
	backlog []streamEvent // oldest first
	streams map[*stream]struct{}
	closed  bool
}

var _ events.Publisher = (*Hub)(nil)

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{streams: make(map[*stream]struct{})}
}

// Publish encodes event as JSON and broadcasts it under topic.
func (h *Hub) Publish(_ context.Context, topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event for %s: %w", topic, err)
	}
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		return fmt.Errorf("publish %s: hub closed", topic)
	}
	h.broadcast(topic, payload)
	return nil
}

// Close stops accepting events. Open streams end with their requests.
func (h *Hub) Close() error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	return nil
}

func (h *Hub) broadcast(topic string, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	evt := streamEvent{ID: h.seq, Topic: topic, Data: payload}
	if len(h.backlog) == replaySize {
		h.backlog = append(h.backlog[:0], h.backlog[1:]...)
	}
	h.backlog = append(h.backlog, evt)

	for s := range h.streams {
		if !s.wants(topic) {
			continue
		}
		select {
		case s.ch <- &evt:
		default:
			// Slow consumer; never block the poll loop.
		}
	}
}

func (h *Hub) subscribe(patterns []string) *stream {
	s := &stream{patterns: patterns, ch: make(chan *streamEvent, 64)}
	h.mu.Lock()
	h.streams[s] = struct{}{}
	h.mu.Unlock()
	return s
}

func (h *Hub) unsubscribe(s *stream) {
	h.mu.Lock()
	delete(h.streams, s)
	h.mu.Unlock()
}

// eventsSince returns backlog events with ID > lastID, oldest first.
func (h *Hub) eventsSince(lastID uint64) []*streamEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	i := sort.Search(len(h.backlog), func(i int) bool { return h.backlog[i].ID > lastID })
	out := make([]*streamEvent, 0, len(h.backlog)-i)
	for ; i < len(h.backlog); i++ {
		evt := h.backlog[i]
		out = append(out, &evt)
	}
	return out
}

// matchTopicPattern matches a dot-separated topic against a NATS-style
// pattern: "*" matches one segment, a trailing ">" matches the rest.
func matchTopicPattern(pattern, topic string) bool {
	for {
		pp, prest, pmore := strings.Cut(pattern, ".")
		if pp == ">" {
			return topic != ""
		}
		tp, trest, tmore := strings.Cut(topic, ".")
		if pp != "*" && pp != tp {
			return false
		}
		if !pmore || !tmore {
			return pmore == tmore
		}
		pattern, topic = prest, trest
	}
}
