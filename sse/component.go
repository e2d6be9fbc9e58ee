package sse

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/chaincounter/component"
	"github.com/kbukum/chaincounter/observability"
)

// Component wraps a Hub as a lifecycle-managed component.
type Component struct {
	hub     *Hub
	path    string
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

var _ component.Component = (*Component)(nil)

// NewComponent creates a new SSE component with a fresh Hub served at path.
func NewComponent(path string) *Component {
	return &Component{hub: NewHub(), path: path}
}

// Hub returns the underlying Hub.
func (c *Component) Hub() *Hub { return c.hub }

// Path returns the HTTP path the stream is mounted at.
func (c *Component) Path() string { return c.path }

// Name returns the component name.
func (c *Component) Name() string { return "sse" }

// Start launches the Hub's event loop in a background goroutine.
func (c *Component) Start(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil
	}
	c.running = true

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.hub.Run()
	}()
	return nil
}

// Stop signals the Hub to shut down and waits for Run to return.
func (c *Component) Stop(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hub.Stop()
	c.wg.Wait()
	c.running = false
	return nil
}

// Health reports the number of connected clients.
func (c *Component) Health(context.Context) observability.Health {
	c.mu.Lock()
	running := c.running
	c.mu.Unlock()

	status := observability.HealthStatusUp
	if !running {
		status = observability.HealthStatusDown
	}
	return observability.Health{
		Name:    c.Name(),
		Status:  status,
		Message: fmt.Sprintf("%d clients connected", c.hub.GetClientCount()),
		Details: map[string]string{"path": c.path},
	}
}
