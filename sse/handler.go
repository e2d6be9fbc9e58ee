package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kbukum/chaincounter/logger"
)

// KeepAliveInterval is how often a comment line is written to idle streams.
// It should stay below typical proxy idle timeouts.
var KeepAliveInterval = 30 * time.Second

// ConnectedEvent is sent when a client successfully connects.
type ConnectedEvent struct {
	ClientID string            `json:"client_id"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ServeSSE streams hub events for one client until the request ends or the
// hub stops.
func ServeSSE(hub *Hub, w http.ResponseWriter, r *http.Request, clientID string, opts ...ClientOption) {
	log := logger.Get("sse").WithContext(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("streaming not supported", logger.Fields("client_id", clientID))
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// Long-lived streams must not be cut by the server's WriteTimeout.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		log.Debug("could not disable write deadline", logger.Fields("client_id", clientID, logger.FieldError, err.Error()))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	client := NewClient(clientID, append([]ClientOption{WithRemoteAddr(r.RemoteAddr)}, opts...)...)
	if !hub.Register(client) {
		http.Error(w, "event stream closed", http.StatusServiceUnavailable)
		return
	}
	defer hub.Unregister(client)

	connected, _ := json.Marshal(ConnectedEvent{ClientID: clientID, Metadata: client.Metadata()})
	writeEvent(w, Event{Type: EventTypeConnected, Data: connected})
	flusher.Flush()
	log.Debug("client connected", logger.Fields("client_id", clientID))

	keepAlive := time.NewTicker(KeepAliveInterval)
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			log.Debug("client disconnected", logger.Fields("client_id", clientID))
			return

		case ev, ok := <-client.Events():
			if !ok {
				return
			}
			writeEvent(w, ev)
			flusher.Flush()

		case <-keepAlive.C:
			_, _ = fmt.Fprintf(w, ": %s %d\n\n", EventTypeKeepAlive, time.Now().Unix())
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, ev Event) {
	if ev.Type != "" {
		_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", ev.Data)
}
