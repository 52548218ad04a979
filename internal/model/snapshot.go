package model

import "time"

// Snapshot is a point-in-time view of a running monitor.
type Snapshot struct {
	MonitorID     string     `json:"monitor_id"`
	Gate          GateState  `json:"gate"`
	Link          LinkStatus `json:"link"`
	LinkMessage   string     `json:"link_message"`
	Reading       *Reading   `json:"reading,omitempty"`
	StatusMessage string     `json:"status_message"`
	StatusTime    *time.Time `json:"status_time,omitempty"`
	LastSuccess   *time.Time `json:"last_success,omitempty"`
	Failures      int        `json:"consecutive_failures"`
	LogLength     int        `json:"log_length"`
	LogCap        int        `json:"log_cap"`
	Journal       bool       `json:"journal"`
}
