package events

import (
	"context"
	"time"

	"github.com/alfredjeanlab/gatewatch/internal/model"
)

// Event topic constants
const (
	TopicGateOpened  = "gatewatch.gate.opened"
	TopicGateClosed  = "gatewatch.gate.closed"
	TopicReading     = "gatewatch.reading"
	TopicLinkChanged = "gatewatch.link.changed"
	TopicLogCleared  = "gatewatch.log.cleared"

	// TopicAll matches every gatewatch topic (NATS wildcard syntax).
	TopicAll = "gatewatch.>"
	// TopicGateAll matches both gate transition topics.
	TopicGateAll = "gatewatch.gate.*"
)

// GateTopic returns the topic for a transition into state to.
func GateTopic(to model.GateState) string {
	if to == model.GateOpen {
		return TopicGateOpened
	}
	return TopicGateClosed
}

// Event types

type GateChanged struct {
	Transition *model.Transition `json:"transition"`
}

type ReadingReceived struct {
	Reading   model.Reading `json:"reading"`
	MonitorID string        `json:"monitor_id"`
}

type LinkChanged struct {
	From      model.LinkStatus `json:"from"`
	To        model.LinkStatus `json:"to"`
	Message   string           `json:"message"`
	MonitorID string           `json:"monitor_id"`
}

type LogCleared struct {
	At        time.Time `json:"at"`
	MonitorID string    `json:"monitor_id"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
