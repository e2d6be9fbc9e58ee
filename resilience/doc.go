// Package resilience provides the fault-tolerance primitives used around
// wallet traffic.
//
//   - CircuitBreaker fails fast while a provider endpoint is unreachable.
//   - Retry re-issues idempotent reads after transport failures.
//   - Bulkhead bounds concurrency; with one slot and no wait it is the
//     executor's single-flight gate.
//
// Example:
//
//	gate := resilience.NewBulkhead(resilience.BulkheadConfig{Name: "executor", MaxConcurrent: 1})
//	err := gate.Execute(ctx, func() error { return runAction(ctx) })
//	if errors.Is(err, resilience.ErrBulkheadFull) {
//		// another action is running
//	}
package resilience
