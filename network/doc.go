// Package network makes sure a wallet is on the required chain before the
// session uses it.
//
// Ensure asks for the active chain and returns without further requests
// when it already matches. Otherwise it asks the wallet to switch; if the
// wallet does not know the chain it registers it with
// wallet_addEthereumChain and retries the switch exactly once.
package network
