package interfaces

// Event is a broadcast message pushed to connected clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// EventService fans events out to subscribers. Publish never blocks; slow
// subscribers drop events rather than stalling the publisher.
type EventService interface {
	Publish(event Event)
	Subscribe() (<-chan Event, func())
}
