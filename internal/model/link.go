package model

// LinkStatus describes how the last poll of the controller went.
type LinkStatus string

const (
	LinkWaiting   LinkStatus = "waiting"
	LinkConnected LinkStatus = "connected"
	LinkNoNetwork LinkStatus = "no_network"
	LinkTimeout   LinkStatus = "timeout"
)

// String returns the string representation of the link status.
func (s LinkStatus) String() string {
	return string(s)
}

// Message returns the operator-facing status line for s.
func (s LinkStatus) Message() string {
	switch s {
	case LinkWaiting:
		return "Trying to connect..."
	case LinkConnected:
		return "Connected"
	case LinkNoNetwork:
		return "Searching for the controller network (check Wi-Fi)..."
	case LinkTimeout:
		return "Timeout / failed to fetch data"
	}
	return string(s)
}

// Healthy reports whether the last poll produced data.
func (s LinkStatus) Healthy() bool {
	return s == LinkConnected
}
