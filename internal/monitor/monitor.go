// Package monitor runs the polling loop that turns controller readings into
// gate transitions, log entries, notifications and events.
package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alfredjeanlab/gatewatch/internal/device"
	"github.com/alfredjeanlab/gatewatch/internal/events"
	"github.com/alfredjeanlab/gatewatch/internal/gate"
	"github.com/alfredjeanlab/gatewatch/internal/history"
	"github.com/alfredjeanlab/gatewatch/internal/idgen"
	"github.com/alfredjeanlab/gatewatch/internal/model"
	"github.com/alfredjeanlab/gatewatch/internal/notify"
	"github.com/alfredjeanlab/gatewatch/internal/store"
)

// Log messages written on each transition.
const (
	MessageOpened = "Gate opened (automatic)"
	MessageClosed = "Gate closed (automatic)"
)

const (
	DefaultInterval = time.Second
	DefaultTimeout  = device.DefaultTimeout

	journalTimeout = 5 * time.Second
)

// ErrNoJournal is returned by Transitions when no journal store is configured.
var ErrNoJournal = errors.New("no transition journal configured")

// Fetcher reads one sample from the controller.
type Fetcher interface {
	Fetch(ctx context.Context) (*model.Reading, error)
}

// Config wires a Monitor. Only Fetcher is required.
type Config struct {
	ID       string
	Interval time.Duration
	Timeout  time.Duration

	Fetcher   Fetcher
	Machine   *gate.Machine
	Log       *history.Log
	Notifier  notify.Notifier
	Publisher events.Publisher
	Journal   store.Store // optional
	Logger    *slog.Logger
	Now       func() time.Time
}

// Monitor owns the gate state for one controller. The loop is the only
// writer; the API reads through Snapshot, Logs and Transitions.
type Monitor struct {
	id        string
	interval  time.Duration
	timeout   time.Duration
	fetcher   Fetcher
	machine   *gate.Machine
	log       *history.Log
	notifier  notify.Notifier
	publisher events.Publisher
	journal   store.Store
	logger    *slog.Logger
	now       func() time.Time

	mu          sync.RWMutex
	reading     *model.Reading
	link        model.LinkStatus
	lastSuccess time.Time
	failures    int

	// side tracks in-flight notifications.
	side sync.WaitGroup
}

// New returns a Monitor with defaults filled in for every unset field.
func New(cfg Config) *Monitor {
	m := &Monitor{
		id:        cfg.ID,
		interval:  cfg.Interval,
		timeout:   cfg.Timeout,
		fetcher:   cfg.Fetcher,
		machine:   cfg.Machine,
		log:       cfg.Log,
		notifier:  cfg.Notifier,
		publisher: cfg.Publisher,
		journal:   cfg.Journal,
		logger:    cfg.Logger,
		now:       cfg.Now,
		link:      model.LinkWaiting,
	}
	if m.id == "" {
		m.id = uuid.NewString()
	}
	if m.interval <= 0 {
		m.interval = DefaultInterval
	}
	if m.timeout <= 0 {
		m.timeout = DefaultTimeout
	}
	if m.machine == nil {
		m.machine = gate.New(gate.DefaultThreshold, 0)
	}
	if m.log == nil {
		m.log = history.New(history.DefaultCapacity)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.notifier == nil {
		m.notifier = &notify.LogNotifier{Logger: m.logger}
	}
	if m.publisher == nil {
		m.publisher = &events.NoopPublisher{}
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// ID returns the monitor's identifier.
func (m *Monitor) ID() string { return m.id }

// Run polls immediately and then once per interval until ctx is done.
// A failed cycle waits for the next tick.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("monitor started", "id", m.id, "interval", m.interval, "timeout", m.timeout)
	defer m.side.Wait()

	// Gate state never outlives a run.
	m.machine.Reset()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("monitor stopped", "id", m.id)
			return nil
		case <-ticker.C:
			m.Tick(ctx)
		}
	}
}

// Tick runs a single poll cycle and returns the fetch error, if any.
func (m *Monitor) Tick(ctx context.Context) error {
	fetchCtx, cancel := context.WithTimeout(ctx, m.timeout)
	reading, err := m.fetcher.Fetch(fetchCtx)
	cancel()

	if err != nil {
		if ctx.Err() != nil {
			// Shutting down; the controller link is not at fault.
			return ctx.Err()
		}
		m.fail(ctx, err)
		return err
	}
	m.succeed(ctx, reading)
	return nil
}

func (m *Monitor) fail(ctx context.Context, err error) {
	status := device.Classify(err)

	m.mu.Lock()
	prev := m.link
	m.link = status
	m.failures++
	failures := m.failures
	m.mu.Unlock()

	m.logger.Debug("poll failed", "link", status, "failures", failures, "err", err)
	if prev != status {
		m.logger.Warn("controller link changed", "from", prev, "to", status)
		m.publish(ctx, events.TopicLinkChanged, events.LinkChanged{
			From: prev, To: status, Message: status.Message(), MonitorID: m.id,
		})
	}
}

func (m *Monitor) succeed(ctx context.Context, r *model.Reading) {
	if r.ReceivedAt.IsZero() {
		r.ReceivedAt = m.now()
	}

	m.mu.Lock()
	prev := m.link
	cp := *r
	m.reading = &cp
	m.link = model.LinkConnected
	m.failures = 0
	m.lastSuccess = r.ReceivedAt
	m.mu.Unlock()

	if prev != model.LinkConnected {
		m.logger.Info("controller link changed", "from", prev, "to", model.LinkConnected)
		m.publish(ctx, events.TopicLinkChanged, events.LinkChanged{
			From: prev, To: model.LinkConnected, Message: model.LinkConnected.Message(), MonitorID: m.id,
		})
	}
	m.publish(ctx, events.TopicReading, events.ReadingReceived{Reading: cp, MonitorID: m.id})

	from, to, changed := m.machine.Evaluate(cp)
	if !changed {
		return
	}
	m.transition(ctx, from, to, cp)
}

func (m *Monitor) transition(ctx context.Context, from, to model.GateState, r model.Reading) {
	at := m.now()
	msg := MessageClosed
	if to == model.GateOpen {
		msg = MessageOpened
	}
	m.log.Add(msg, to, at)
	m.logger.Info("gate transition", "from", from, "to", to,
		"sensor1", r.Distance1, "sensor2", r.Distance2)

	t := &model.Transition{
		ID:        idgen.TransitionID(),
		From:      from,
		To:        to,
		Reading:   r,
		At:        at,
		MonitorID: m.id,
	}

	if to == model.GateOpen {
		n := notify.Notification{Title: notify.Title, Message: msg, At: at}
		m.side.Add(1)
		go func() {
			defer m.side.Done()
			if err := m.notifier.Notify(context.WithoutCancel(ctx), n); err != nil {
				m.logger.Warn("notification failed", "err", err)
			}
		}()
	}

	m.publish(ctx, events.GateTopic(to), events.GateChanged{Transition: t})

	if m.journal != nil {
		jctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
		defer cancel()
		if err := m.journal.RecordTransition(jctx, t); err != nil {
			m.logger.Warn("failed to journal transition", "id", t.ID, "err", err)
		}
	}
}

func (m *Monitor) publish(ctx context.Context, topic string, event any) {
	if err := m.publisher.Publish(ctx, topic, event); err != nil {
		m.logger.Warn("failed to publish event", "topic", topic, "err", err)
	}
}

// Snapshot returns the current view of the monitor.
func (m *Monitor) Snapshot() model.Snapshot {
	m.mu.RLock()
	s := model.Snapshot{
		MonitorID:   m.id,
		Link:        m.link,
		LinkMessage: m.link.Message(),
		Failures:    m.failures,
		Journal:     m.HasJournal(),
	}
	if m.reading != nil {
		r := *m.reading
		s.Reading = &r
	}
	if !m.lastSuccess.IsZero() {
		t := m.lastSuccess
		s.LastSuccess = &t
	}
	m.mu.RUnlock()

	s.Gate = m.machine.State()
	msg, at := m.log.Status()
	s.StatusMessage = msg
	if !at.IsZero() {
		s.StatusTime = &at
	}
	s.LogLength = m.log.Len()
	s.LogCap = m.log.Cap()
	return s
}

// Logs returns the activity log, most recent first.
func (m *Monitor) Logs() []model.LogEntry {
	return m.log.Entries()
}

// LogCap returns the maximum number of log entries kept.
func (m *Monitor) LogCap() int {
	return m.log.Cap()
}

// ClearLogs empties the activity log.
func (m *Monitor) ClearLogs(ctx context.Context) {
	m.log.Clear()
	m.logger.Info("activity log cleared")
	m.publish(ctx, events.TopicLogCleared, events.LogCleared{At: m.now(), MonitorID: m.id})
}

// Transitions queries the journal.
func (m *Monitor) Transitions(ctx context.Context, filter model.TransitionFilter) ([]*model.Transition, error) {
	if m.journal == nil {
		return nil, ErrNoJournal
	}
	return m.journal.ListTransitions(ctx, filter)
}

// HasJournal reports whether transitions are being journaled.
func (m *Monitor) HasJournal() bool {
	return m.journal != nil
}
