package model

import "time"

// GateState is the binary state of the monitored gate.
type GateState string

const (
	GateClosed GateState = "closed"
	GateOpen   GateState = "open"
)

// String returns the string representation of the gate state.
func (s GateState) String() string {
	return string(s)
}

// IsValid checks whether the gate state is a known value.
func (s GateState) IsValid() bool {
	switch s {
	case GateClosed, GateOpen:
		return true
	}
	return false
}

// Transition records a single change of gate state together with the
// reading that caused it.
type Transition struct {
	ID        string    `json:"id"`
	From      GateState `json:"from"`
	To        GateState `json:"to"`
	Reading   Reading   `json:"reading"`
	At        time.Time `json:"at"`
	MonitorID string    `json:"monitor_id,omitempty"`
}
