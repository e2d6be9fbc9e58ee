package provider

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/chaincounter/observability"
)

// WithTracing creates an "rpc.request" span around every request.
func WithTracing() Middleware {
	return func(inner Injected) Injected {
		name := inner.Descriptor().Name
		return Wrap(inner, func(ctx context.Context, method string, params []any) (json.RawMessage, error) {
			ctx, op := observability.StartOperation(ctx, observability.SpanRPCRequest, method,
				attribute.String(observability.AttrProvider, name),
				attribute.String(observability.AttrRPCMethod, method),
			)

			result, err := inner.Request(ctx, method, params)

			status := "ok"
			if err != nil {
				status = "error"
				if rpcErr, ok := AsRPCError(err); ok {
					op.SetAttributes(attribute.Int(observability.AttrErrorCode, rpcErr.Code))
				}
			}
			op.End(status, err)
			return result, err
		})
	}
}
