// Package contract describes the counter contract's interface and turns
// operations into eth_call / eth_sendTransaction payloads.
//
// A Handle is only ever built when every required operation exists on the
// ABI as a zero-input function, so callers never discover a missing method
// halfway through a session.
package contract
