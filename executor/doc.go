// Package executor runs counter actions one at a time.
//
// The Executor is Idle or Busy with exactly one action. Starting an action
// while Busy fails with ActionInProgress and has no side effects. A
// successful action re-reads the counter, appends a ledger entry and
// publishes a success notification (plus an achievement when the goal is
// reached); a failed one publishes an error notification only. If the
// session changed while the action was running, its result is discarded.
//
// Notifications are transient: each expires after a TTL, and starting a new
// action clears the previous ones.
package executor
