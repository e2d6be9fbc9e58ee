// Package provider models the wallet-capable JSON-RPC provider a host
// environment injects, and locates the one to use.
//
// A Host may inject its provider late, and a provider may aggregate several
// co-installed wallets. Locator waits a bounded time for injection and picks
// the target wallet from an aggregate with the pure SelectTarget function.
//
// Middleware wraps an Injected provider with cross-cutting behaviour:
//
//	p = provider.Chain(
//	    provider.WithLogging(log),
//	    provider.WithTracing(),
//	    provider.WithMetrics(metrics),
//	    provider.WithResilience(provider.DefaultResilienceConfig("wallet")),
//	)(p)
package provider
