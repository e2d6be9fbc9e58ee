package provider

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kbukum/chaincounter/logger"
)

// WithLogging logs every request with its duration and outcome.
// Successful requests log at debug, failures at warn. Params and results
// are never logged.
func WithLogging(log *logger.Logger) Middleware {
	return func(inner Injected) Injected {
		name := inner.Descriptor().Name
		return Wrap(inner, func(ctx context.Context, method string, params []any) (json.RawMessage, error) {
			start := time.Now()
			result, err := inner.Request(ctx, method, params)

			fields := logger.Fields(
				logger.FieldProvider, name,
				logger.FieldMethod, method,
				logger.FieldDuration, time.Since(start).Milliseconds(),
			)
			if err != nil {
				fields[logger.FieldError] = err.Error()
				if rpcErr, ok := AsRPCError(err); ok {
					fields["rpc_code"] = rpcErr.Code
				}
				log.WithContext(ctx).Warn("provider request failed", fields)
			} else {
				log.WithContext(ctx).Debug("provider request ok", fields)
			}
			return result, err
		})
	}
}
