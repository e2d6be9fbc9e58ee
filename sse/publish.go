package sse

import (
	"encoding/json"
	"fmt"
)

// PublishJSON encodes v and broadcasts it as an event of the given type.
func PublishJSON(b Broadcaster, pattern, eventType string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", eventType, err)
	}
	b.BroadcastToPattern(pattern, Event{Type: eventType, Data: data})
	return nil
}
