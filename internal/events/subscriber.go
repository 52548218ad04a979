package events

// Message is one event received from the bus.
type Message struct {
	Topic string
	Data  []byte // JSON-encoded payload
}

// Subscriber receives events from the event bus.
type Subscriber interface {
	// Subscribe delivers events on the returned channel.
	// Call the returned cancel function to unsubscribe and close the channel.
	Subscribe(topic string) (<-chan Message, func(), error)
	Close() error
}
