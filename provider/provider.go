package provider

import (
	"context"
	"encoding/json"
	"slices"
)

// Provider events.
const (
	EventAccountsChanged = "accountsChanged"
	EventChainChanged    = "chainChanged"
)

// Descriptor identifies a provider and carries its capability flags
// (e.g. "isMetaMask").
type Descriptor struct {
	Name  string   `json:"name"`
	Flags []string `json:"flags,omitempty"`
}

// HasFlag reports whether the descriptor carries flag.
func (d Descriptor) HasFlag(flag string) bool {
	return slices.Contains(d.Flags, flag)
}

// EventHandler receives the JSON payload of a provider event.
type EventHandler func(data json.RawMessage)

// Injected is a wallet-capable JSON-RPC provider.
type Injected interface {
	// Request sends method with positional params and returns the raw
	// result. JSON-RPC error objects are returned as *RPCError.
	Request(ctx context.Context, method string, params []any) (json.RawMessage, error)
	// Subscribe registers fn for event and returns a function removing it.
	Subscribe(event string, fn EventHandler) (unsubscribe func())
	// Descriptor returns the provider's identity and flags.
	Descriptor() Descriptor
}

// Aggregator is implemented by a provider that fronts several co-installed
// wallets.
type Aggregator interface {
	Providers() []Injected
}

// Host is the environment that injects a provider.
type Host interface {
	// Injected returns the current provider, or nil if none is injected yet.
	Injected() Injected
	// OnInjected registers fn to be called when a provider is injected and
	// returns a function removing the registration.
	OnInjected(fn func(Injected)) (remove func())
}
