package provider

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kbukum/chaincounter/observability"
)

// WithMetrics records request count, duration and in-flight requests.
// A nil metrics value records nothing.
func WithMetrics(metrics *observability.Metrics) Middleware {
	return func(inner Injected) Injected {
		name := inner.Descriptor().Name
		return Wrap(inner, func(ctx context.Context, method string, params []any) (json.RawMessage, error) {
			metrics.RecordRPCStart(ctx)
			start := time.Now()
			result, err := inner.Request(ctx, method, params)

			status := "ok"
			switch {
			case IsUserRejected(err):
				status = "rejected"
			case err != nil:
				status = "error"
				metrics.RecordError(ctx, method, "provider")
			}
			metrics.RecordRPC(ctx, name, method, status, time.Since(start))
			return result, err
		})
	}
}
