// Package chain holds the small vocabulary shared by the wallet-facing
// packages: the required chain's descriptor, account addresses, and the
// hex-encoded quantities used on the JSON-RPC wire.
package chain
