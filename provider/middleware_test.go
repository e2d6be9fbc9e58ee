package provider_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric/noop"

	"github.com/kbukum/chaincounter/logger"
	"github.com/kbukum/chaincounter/observability"
	"github.com/kbukum/chaincounter/provider"
	"github.com/kbukum/chaincounter/provider/providertest"
	"github.com/kbukum/chaincounter/resilience"
)

var errConnRefused = errors.New("dial tcp 127.0.0.1:8545: connection refused")

func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) provider.Middleware {
		return func(inner provider.Injected) provider.Injected {
			return provider.Wrap(inner, func(ctx context.Context, method string, params []any) (json.RawMessage, error) {
				order = append(order, name+">")
				res, err := inner.Request(ctx, method, params)
				order = append(order, "<"+name)
				return res, err
			})
		}
	}

	p := providertest.New("wallet")
	p.Return(provider.MethodChainID, "0x1")
	wrapped := provider.Chain(tag("A"), tag("B"))(p)

	if _, err := wrapped.Request(context.Background(), provider.MethodChainID, nil); err != nil {
		t.Fatal(err)
	}
	want := "A> B> <B <A"
	if got := strings.Join(order, " "); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestWrapKeepsDescriptorAndEvents(t *testing.T) {
	p := providertest.New("wallet", "isMetaMask")
	wrapped := provider.Chain(provider.WithTracing(), provider.WithMetrics(nil))(p)

	if !wrapped.Descriptor().HasFlag("isMetaMask") {
		t.Error("descriptor lost through middleware")
	}

	got := make(chan string, 1)
	unsubscribe := wrapped.Subscribe(provider.EventChainChanged, func(data json.RawMessage) {
		got <- string(data)
	})
	p.Emit(provider.EventChainChanged, "0x1")
	if v := <-got; v != `"0x1"` {
		t.Errorf("unexpected event payload %s", v)
	}
	unsubscribe()
	if p.Subscribers(provider.EventChainChanged) != 0 {
		t.Error("unsubscribe did not reach the inner provider")
	}
}

func TestWithLoggingRecordsFailures(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", &buf)

	p := providertest.New("wallet")
	p.Fail(provider.MethodSendTransaction, &provider.RPCError{Code: 4001, Message: "User rejected the request."})
	wrapped := provider.WithLogging(log)(p)

	_, err := wrapped.Request(context.Background(), provider.MethodSendTransaction, []any{map[string]string{"data": "0xsecret"}})
	if !provider.IsUserRejected(err) {
		t.Fatalf("expected the rejection to pass through, got %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"method":"eth_sendTransaction"`) || !strings.Contains(out, `"rpc_code":4001`) {
		t.Errorf("expected method and rpc code in log, got %s", out)
	}
	if strings.Contains(out, "0xsecret") {
		t.Error("params must not be logged")
	}
}

func TestWithMetricsRecords(t *testing.T) {
	metrics, err := observability.NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatal(err)
	}
	p := providertest.New("wallet")
	p.Return(provider.MethodGasPrice, "0x1")
	wrapped := provider.WithMetrics(metrics)(p)

	if _, err := wrapped.Request(context.Background(), provider.MethodGasPrice, nil); err != nil {
		t.Fatal(err)
	}
}

func fastResilience() provider.ResilienceConfig {
	return provider.ResilienceConfig{
		CircuitBreaker: &resilience.CircuitBreakerConfig{Name: "wallet", MaxFailures: 2, Timeout: time.Hour},
		Retry: &resilience.RetryConfig{
			MaxAttempts:    3,
			InitialBackoff: time.Millisecond,
			MaxBackoff:     2 * time.Millisecond,
			BackoffFactor:  2,
		},
	}
}

func TestWithResilienceRetriesIdempotentReadsWhenConfigured(t *testing.T) {
	p := providertest.New("wallet")
	calls := 0
	p.Handle(provider.MethodChainID, func([]any) (any, error) {
		calls++
		if calls < 3 {
			return nil, errConnRefused
		}
		return "0xaa36a7", nil
	})
	cfg := fastResilience()
	cfg.CircuitBreaker.MaxFailures = 10
	wrapped := provider.WithResilience(cfg)(p)

	res, err := wrapped.Request(context.Background(), provider.MethodChainID, nil)
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if string(res) != `"0xaa36a7"` || calls != 3 {
		t.Errorf("unexpected result %s after %d calls", res, calls)
	}
}

func TestDefaultResilienceSendsEachRequestOnce(t *testing.T) {
	tests := []struct {
		name   string
		method string
	}{
		{"chain id", provider.MethodChainID},
		{"accounts", provider.MethodAccounts},
		{"call", provider.MethodCall},
		{"switch chain", provider.MethodSwitchChain},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := providertest.New("wallet")
			p.Fail(tc.method, errConnRefused)
			wrapped := provider.WithResilience(provider.DefaultResilienceConfig("wallet"))(p)

			_, err := wrapped.Request(context.Background(), tc.method, nil)
			if !errors.Is(err, errConnRefused) {
				t.Fatalf("expected transport error, got %v", err)
			}
			if n := p.Count(tc.method); n != 1 {
				t.Errorf("%s must be sent once, got %d", tc.method, n)
			}
		})
	}
}

func TestWithResilienceNeverRetriesWrites(t *testing.T) {
	p := providertest.New("wallet")
	p.Fail(provider.MethodSendTransaction, errConnRefused)
	wrapped := provider.WithResilience(fastResilience())(p)

	_, err := wrapped.Request(context.Background(), provider.MethodSendTransaction, []any{map[string]string{}})
	if !errors.Is(err, errConnRefused) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if n := p.Count(provider.MethodSendTransaction); n != 1 {
		t.Errorf("eth_sendTransaction must be sent once, got %d", n)
	}
}

func TestWithResilienceDoesNotRetryRPCErrors(t *testing.T) {
	p := providertest.New("wallet")
	p.Fail(provider.MethodCall, &provider.RPCError{Code: -32000, Message: "execution reverted"})
	wrapped := provider.WithResilience(fastResilience())(p)

	for i := 0; i < 5; i++ {
		_, err := wrapped.Request(context.Background(), provider.MethodCall, nil)
		if !provider.IsRPCError(err) {
			t.Fatalf("expected rpc error, got %v", err)
		}
	}
	if n := p.Count(provider.MethodCall); n != 5 {
		t.Errorf("expected one attempt per request, got %d", n)
	}
}

func TestWithResilienceOpensCircuit(t *testing.T) {
	p := providertest.New("wallet")
	p.Fail(provider.MethodSendTransaction, errConnRefused)
	wrapped := provider.WithResilience(fastResilience())(p)

	for i := 0; i < 2; i++ {
		_, _ = wrapped.Request(context.Background(), provider.MethodSendTransaction, nil)
	}
	_, err := wrapped.Request(context.Background(), provider.MethodSendTransaction, nil)
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if n := p.Count(provider.MethodSendTransaction); n != 2 {
		t.Errorf("open circuit must not reach the provider, got %d calls", n)
	}
}
