package rpc

import (
	"encoding/json"
	"sync"

	"github.com/kbukum/chaincounter/provider"
)

// events is a per-client subscription table.
type events struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]provider.EventHandler
}

func newEvents() *events {
	return &events{subs: make(map[string]map[int]provider.EventHandler)}
}

func (e *events) subscribe(event string, fn provider.EventHandler) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.subs[event] == nil {
		e.subs[event] = make(map[int]provider.EventHandler)
	}
	id := e.next
	e.next++
	e.subs[event][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subs[event], id)
			e.mu.Unlock()
		})
	}
}

// emit calls every handler for event outside the lock.
func (e *events) emit(event string, data json.RawMessage) {
	e.mu.Lock()
	handlers := make([]provider.EventHandler, 0, len(e.subs[event]))
	for _, fn := range e.subs[event] {
		handlers = append(handlers, fn)
	}
	e.mu.Unlock()

	for _, fn := range handlers {
		fn(data)
	}
}

func (e *events) count(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs[event])
}
