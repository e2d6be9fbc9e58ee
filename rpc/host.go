package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kbukum/chaincounter/component"
	"github.com/kbukum/chaincounter/logger"
	"github.com/kbukum/chaincounter/observability"
	"github.com/kbukum/chaincounter/provider"
)

const (
	DefaultProbeInterval = 100 * time.Millisecond
	DefaultWatchInterval = 2 * time.Second
	defaultProbeTimeout  = time.Second
)

// Host injects providers for configured endpoints once they answer.
//
// With one endpoint the injected provider is its Client. With several, it
// is an aggregate whose Providers list holds the reachable clients in
// configuration order.
type Host struct {
	clients       []*Client
	probeInterval time.Duration
	watchInterval time.Duration
	probeTimeout  time.Duration
	clientOpts    []Option
	log           *logger.Logger

	mu        sync.Mutex
	reachable []bool
	injected  provider.Injected
	listeners map[int]func(provider.Injected)
	nextID    int

	probe *component.Ticker
	watch *component.Ticker
}

var (
	_ provider.Host       = (*Host)(nil)
	_ component.Component = (*Host)(nil)
)

// HostOption configures a Host.
type HostOption func(*Host)

// WithProbeInterval sets how often unreachable endpoints are probed.
func WithProbeInterval(d time.Duration) HostOption {
	return func(h *Host) {
		if d > 0 {
			h.probeInterval = d
		}
	}
}

// WithWatchInterval sets how often reachable endpoints are polled for
// chain and account changes.
func WithWatchInterval(d time.Duration) HostOption {
	return func(h *Host) {
		if d > 0 {
			h.watchInterval = d
		}
	}
}

// WithProbeTimeout bounds each probe request.
func WithProbeTimeout(d time.Duration) HostOption {
	return func(h *Host) {
		if d > 0 {
			h.probeTimeout = d
		}
	}
}

// WithClientOptions passes options to every endpoint client.
func WithClientOptions(opts ...Option) HostOption {
	return func(h *Host) { h.clientOpts = append(h.clientOpts, opts...) }
}

// WithHostLogger sets the logger.
func WithHostLogger(log *logger.Logger) HostOption {
	return func(h *Host) { h.log = log }
}

// NewHost creates a host over endpoints. Nothing is injected until a probe
// succeeds, either from the running component or an explicit Probe call.
func NewHost(endpoints []Endpoint, opts ...HostOption) *Host {
	h := &Host{
		probeInterval: DefaultProbeInterval,
		watchInterval: DefaultWatchInterval,
		probeTimeout:  defaultProbeTimeout,
		log:           logger.Get("rpc"),
		listeners:     make(map[int]func(provider.Injected)),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.clients = make([]*Client, len(endpoints))
	for i, ep := range endpoints {
		h.clients[i] = NewClient(ep, append([]Option{WithLogger(h.log)}, h.clientOpts...)...)
	}
	h.reachable = make([]bool, len(endpoints))

	h.probe = component.NewTicker("rpc-probe", h.probeInterval, func(ctx context.Context) error {
		h.Probe(ctx)
		return nil
	})
	h.watch = component.NewTicker("rpc-watch", h.watchInterval, h.Watch)
	return h
}

// Injected returns the injected provider, or nil before any endpoint answered.
func (h *Host) Injected() provider.Injected {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.injected
}

// OnInjected registers fn for the injection event.
func (h *Host) OnInjected(fn func(provider.Injected)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.listeners, id)
		h.mu.Unlock()
	}
}

// Listeners returns the number of registered injection listeners.
func (h *Host) Listeners() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}

// Probe concurrently sends eth_chainId to every endpoint not yet known to be reachable.
// Any answer, including a JSON-RPC error, marks it reachable. The first
// reachable endpoint triggers injection. Probe returns the number of
// reachable endpoints.
func (h *Host) Probe(ctx context.Context) int {
	h.mu.Lock()
	pending := make([]int, 0, len(h.clients))
	for i, ok := range h.reachable {
		if !ok {
			pending = append(pending, i)
		}
	}
	h.mu.Unlock()

	var g errgroup.Group
	for _, i := range pending {
		c := h.clients[i]
		g.Go(func() error {
			probeCtx, cancel := context.WithTimeout(ctx, h.probeTimeout)
			defer cancel()
			if _, err := c.Request(probeCtx, provider.MethodChainID, nil); err != nil && !provider.IsRPCError(err) {
				return nil
			}
			h.mu.Lock()
			h.reachable[i] = true
			h.mu.Unlock()
			h.log.Info("wallet endpoint reachable", logger.Fields(
				logger.FieldProvider, c.endpoint.Name,
				"url", c.endpoint.URL,
			))
			return nil
		})
	}
	_ = g.Wait()

	h.mu.Lock()
	n := 0
	for _, ok := range h.reachable {
		if ok {
			n++
		}
	}
	var (
		inject    provider.Injected
		listeners []func(provider.Injected)
	)
	if n > 0 && h.injected == nil {
		if len(h.clients) == 1 {
			h.injected = h.clients[0]
		} else {
			h.injected = &aggregate{host: h}
		}
		inject = h.injected
		for _, fn := range h.listeners {
			listeners = append(listeners, fn)
		}
	}
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(inject)
	}
	return n
}

// Watch polls every reachable endpoint for chain and account changes.
func (h *Host) Watch(ctx context.Context) error {
	var errs []error
	for _, c := range h.reachableClients() {
		if err := c.Poll(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.endpoint.Name, err))
		}
	}
	return errors.Join(errs...)
}

func (h *Host) reachableClients() []*Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Client, 0, len(h.clients))
	for i, c := range h.clients {
		if h.reachable[i] {
			out = append(out, c)
		}
	}
	return out
}

// Name returns the component name.
func (h *Host) Name() string { return "rpc-host" }

// Start launches the probe and watch loops.
func (h *Host) Start(ctx context.Context) error {
	if err := h.probe.Start(ctx); err != nil {
		return err
	}
	return h.watch.Start(ctx)
}

// Stop stops both loops and closes every client.
func (h *Host) Stop(ctx context.Context) error {
	err := errors.Join(h.watch.Stop(ctx), h.probe.Stop(ctx))
	for _, c := range h.clients {
		c.Close()
	}
	return err
}

// Health is down until an endpoint is reachable and degraded while the
// last watch poll failed.
func (h *Host) Health(ctx context.Context) observability.Health {
	n := len(h.reachableClients())
	health := observability.Health{
		Name:    h.Name(),
		Status:  observability.HealthStatusUp,
		Details: map[string]string{"reachable": fmt.Sprintf("%d/%d", n, len(h.clients))},
	}
	if n == 0 {
		health.Status = observability.HealthStatusDown
		health.Message = "no wallet endpoint reachable"
		return health
	}
	if w := h.watch.Health(ctx); w.Status == observability.HealthStatusDegraded {
		health.Status = observability.HealthStatusDegraded
		health.Message = w.Message
	}
	return health
}

// aggregate fronts several reachable endpoints.
type aggregate struct {
	host *Host
}

var (
	_ provider.Injected   = (*aggregate)(nil)
	_ provider.Aggregator = (*aggregate)(nil)
)

func (a *aggregate) Providers() []provider.Injected {
	clients := a.host.reachableClients()
	out := make([]provider.Injected, len(clients))
	for i, c := range clients {
		out[i] = c
	}
	return out
}

func (a *aggregate) first() (*Client, error) {
	clients := a.host.reachableClients()
	if len(clients) == 0 {
		return nil, &provider.RPCError{Code: provider.CodeDisconnected, Message: "no wallet endpoint reachable"}
	}
	return clients[0], nil
}

func (a *aggregate) Request(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	c, err := a.first()
	if err != nil {
		return nil, err
	}
	return c.Request(ctx, method, params)
}

func (a *aggregate) Subscribe(event string, fn provider.EventHandler) func() {
	c, err := a.first()
	if err != nil {
		return func() {}
	}
	return c.Subscribe(event, fn)
}

func (a *aggregate) Descriptor() provider.Descriptor {
	return provider.Descriptor{Name: "aggregate"}
}
