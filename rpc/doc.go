// Package rpc is the production transport for wallet providers.
//
// A Client speaks JSON-RPC 2.0 over HTTP to a wallet bridge or a signer
// node and implements provider.Injected. Transport failures are returned as
// *Error; JSON-RPC error objects as *provider.RPCError.
//
// A Host implements provider.Host over a list of configured endpoints. It
// probes them until one answers (late injection), exposes several reachable
// endpoints as an aggregate provider, and polls eth_chainId / eth_accounts
// to emit chainChanged and accountsChanged events.
//
//	host := rpc.NewHost(cfg.Wallet.Endpoints, rpc.WithProbeInterval(100*time.Millisecond))
//	_ = host.Start(ctx)
//	defer host.Stop(ctx)
//	p, err := provider.NewLocator(host).Locate(ctx)
package rpc
