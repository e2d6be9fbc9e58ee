package providertest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kbukum/chaincounter/provider"
)

// Handler answers one method. The returned value is JSON-encoded as the result.
type Handler func(params []any) (any, error)

// Call is one recorded request.
type Call struct {
	Method string
	Params []any
}

// Provider is a scriptable provider.Injected.
type Provider struct {
	desc provider.Descriptor

	mu       sync.Mutex
	handlers map[string]Handler
	calls    []Call
	subs     map[string]map[int]provider.EventHandler
	nextSub  int
}

var _ provider.Injected = (*Provider)(nil)

// New creates a provider with the given name and capability flags.
func New(name string, flags ...string) *Provider {
	return &Provider{
		desc:     provider.Descriptor{Name: name, Flags: flags},
		handlers: make(map[string]Handler),
		subs:     make(map[string]map[int]provider.EventHandler),
	}
}

// Handle installs h for method, replacing any previous handler.
func (p *Provider) Handle(method string, h Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[method] = h
}

// Return makes method always answer result.
func (p *Provider) Return(method string, result any) {
	p.Handle(method, func([]any) (any, error) { return result, nil })
}

// Fail makes method always fail with err.
func (p *Provider) Fail(method string, err error) {
	p.Handle(method, func([]any) (any, error) { return nil, err })
}

// Request records the call and dispatches it. Unknown methods fail with
// a -32601 RPC error.
func (p *Provider) Request(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	p.mu.Lock()
	p.calls = append(p.calls, Call{Method: method, Params: params})
	h, ok := p.handlers[method]
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ok {
		return nil, &provider.RPCError{Code: provider.CodeMethodNotFound, Message: fmt.Sprintf("method %s not found", method)}
	}

	result, err := h(params)
	if err != nil {
		return nil, err
	}
	return json.Marshal(result)
}

// Subscribe registers fn for event.
func (p *Provider) Subscribe(event string, fn provider.EventHandler) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextSub
	p.nextSub++
	if p.subs[event] == nil {
		p.subs[event] = make(map[int]provider.EventHandler)
	}
	p.subs[event][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.subs[event], id)
		})
	}
}

// Descriptor returns the provider descriptor.
func (p *Provider) Descriptor() provider.Descriptor { return p.desc }

// Emit delivers data to every subscriber of event.
func (p *Provider) Emit(event string, data any) {
	raw, _ := json.Marshal(data)

	p.mu.Lock()
	handlers := make([]provider.EventHandler, 0, len(p.subs[event]))
	for _, h := range p.subs[event] {
		handlers = append(handlers, h)
	}
	p.mu.Unlock()

	for _, h := range handlers {
		h(raw)
	}
}

// Subscribers returns the number of live subscriptions to event.
func (p *Provider) Subscribers(event string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs[event])
}

// Calls returns a copy of the recorded requests.
func (p *Provider) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Call(nil), p.calls...)
}

// Methods returns the recorded method names in order.
func (p *Provider) Methods() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.calls))
	for i, c := range p.calls {
		out[i] = c.Method
	}
	return out
}

// Count returns how many times method was requested.
func (p *Provider) Count(method string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Reset forgets recorded calls.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = nil
}

// Aggregate is a provider fronting several wallets.
type Aggregate struct {
	*Provider
	list []provider.Injected
}

var _ provider.Aggregator = (*Aggregate)(nil)

// NewAggregate creates an aggregate over list.
func NewAggregate(list ...provider.Injected) *Aggregate {
	return &Aggregate{Provider: New("aggregate"), list: list}
}

// Providers returns the aggregated providers.
func (a *Aggregate) Providers() []provider.Injected {
	return append([]provider.Injected(nil), a.list...)
}
