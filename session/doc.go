// Package session owns the connection to the wallet and the bound counter
// contract.
//
// Connect resolves a provider, puts it on the required chain, asks for an
// account and binds the contract. Either every step succeeds and a Session
// is stored, or nothing is. All reads and writes go through the live
// Session and fail with NotConnected without one. An accountsChanged or
// chainChanged event that moves the wallet away from the session's account
// or chain ends the session.
package session
