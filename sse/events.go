package sse

// Event types written on the "event:" line of a frame.
const (
	// EventTypeConnected is sent once when a client connects.
	EventTypeConnected = "connected"

	// EventTypeKeepAlive is used for keep-alive comments.
	EventTypeKeepAlive = "keepalive"

	// EventTypeNotification carries a notification lifecycle change.
	EventTypeNotification = "notification"

	// EventTypeOutcome carries the result of a counter action.
	EventTypeOutcome = "outcome"

	// EventTypeSession carries a session change (connected or invalidated).
	EventTypeSession = "session"
)

// Event is a single frame delivered to clients.
type Event struct {
	Type string
	Data []byte
}

// Broadcaster is implemented by anything that can fan events out to clients.
type Broadcaster interface {
	// BroadcastToPattern sends ev to all clients whose ID matches pattern.
	// Pattern uses glob-style matching (e.g. "events:*").
	BroadcastToPattern(pattern string, ev Event)
}
