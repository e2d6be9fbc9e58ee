package providertest

import (
	"sync"

	"github.com/kbukum/chaincounter/provider"
)

// Host is an in-memory provider.Host.
type Host struct {
	mu        sync.Mutex
	injected  provider.Injected
	listeners map[int]func(provider.Injected)
	next      int
}

var _ provider.Host = (*Host)(nil)

// NewHost creates a host, optionally with a provider already injected.
func NewHost(p provider.Injected) *Host {
	return &Host{injected: p, listeners: make(map[int]func(provider.Injected))}
}

// Injected returns the injected provider or nil.
func (h *Host) Injected() provider.Injected {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.injected
}

// OnInjected registers fn.
func (h *Host) OnInjected(fn func(provider.Injected)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	h.listeners[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.listeners, id)
	}
}

// Inject sets the provider and notifies listeners.
func (h *Host) Inject(p provider.Injected) {
	h.mu.Lock()
	h.injected = p
	fns := make([]func(provider.Injected), 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(p)
	}
}

// Listeners returns the number of registered listeners.
func (h *Host) Listeners() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}
