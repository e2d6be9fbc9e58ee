// Package providertest provides in-memory providers and hosts for tests.
//
// Provider records every request and answers from per-method handlers.
// Wallet builds on it to simulate a wallet connected to the counter
// contract, including chain switching and receipt confirmation.
package providertest
