package model

import "time"

// LogEntry is one line of the activity log shown to the operator.
type LogEntry struct {
	ID      string    `json:"id"`
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
	State   GateState `json:"state,omitempty"`
}
