package provider

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/kbukum/chaincounter/resilience"
)

// ResilienceConfig configures WithResilience. Nil fields are skipped.
type ResilienceConfig struct {
	CircuitBreaker *resilience.CircuitBreakerConfig
	Retry          *resilience.RetryConfig
}

// DefaultResilienceConfig returns a breaker that opens after five
// consecutive transport failures. It does not retry: the only automatic
// retry in a session is the add-then-switch path of the network enforcer.
func DefaultResilienceConfig(name string) ResilienceConfig {
	cb := resilience.DefaultCircuitBreakerConfig(name)
	cb.Timeout = 10 * time.Second
	return ResilienceConfig{CircuitBreaker: &cb}
}

// WithResilience guards requests with a circuit breaker and, when Retry is
// set, retries idempotent reads.
//
// Only transport failures count: an *RPCError proves the provider answered,
// so it neither trips the breaker nor triggers a retry. Wallet prompts and
// transaction submission are never retried.
func WithResilience(cfg ResilienceConfig) Middleware {
	return func(inner Injected) Injected {
		var cb *resilience.CircuitBreaker
		if cfg.CircuitBreaker != nil {
			cbCfg := *cfg.CircuitBreaker
			cbCfg.IsFailure = isTransportFailure
			cb = resilience.NewCircuitBreaker(cbCfg)
		}

		var retry *resilience.RetryConfig
		if cfg.Retry != nil {
			r := *cfg.Retry
			r.RetryIf = func(err error) bool {
				return isTransportFailure(err) && resilience.DefaultRetryIf(err)
			}
			retry = &r
		}

		return Wrap(inner, func(ctx context.Context, method string, params []any) (json.RawMessage, error) {
			once := func() (json.RawMessage, error) {
				if cb == nil {
					return inner.Request(ctx, method, params)
				}
				var result json.RawMessage
				err := cb.Execute(func() error {
					var err error
					result, err = inner.Request(ctx, method, params)
					return err
				})
				return result, err
			}

			if retry == nil || !IsIdempotent(method) {
				return once()
			}
			return resilience.Retry(ctx, *retry, once)
		})
	}
}

func isTransportFailure(err error) bool {
	return err != nil && !IsRPCError(err) && !errors.Is(err, context.Canceled)
}
