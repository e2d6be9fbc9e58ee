package provider

import (
	"context"
	"encoding/json"
)

// Middleware wraps an Injected provider with additional behaviour.
type Middleware func(Injected) Injected

// Chain composes middlewares. The first is outermost:
// Chain(a, b, c)(p) is a(b(c(p))).
func Chain(middlewares ...Middleware) Middleware {
	return func(inner Injected) Injected {
		for i := len(middlewares) - 1; i >= 0; i-- {
			inner = middlewares[i](inner)
		}
		return inner
	}
}

// RequestFunc adapts a request function into a wrapper that keeps the
// inner provider's events and descriptor.
type RequestFunc func(ctx context.Context, method string, params []any) (json.RawMessage, error)

type wrapped struct {
	inner   Injected
	request RequestFunc
}

// Wrap returns a provider delegating Subscribe and Descriptor to inner
// and Request to fn.
func Wrap(inner Injected, fn RequestFunc) Injected {
	return &wrapped{inner: inner, request: fn}
}

func (w *wrapped) Request(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	return w.request(ctx, method, params)
}

func (w *wrapped) Subscribe(event string, fn EventHandler) func() {
	return w.inner.Subscribe(event, fn)
}

func (w *wrapped) Descriptor() Descriptor { return w.inner.Descriptor() }
