package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/chaincounter/logger"
	"github.com/kbukum/chaincounter/provider"
)

// node is a minimal JSON-RPC server backed by a method table.
type node struct {
	mu      sync.Mutex
	methods map[string]func(params []json.RawMessage) (any, *provider.RPCError)
	seen    []string
}

func newNode() *node {
	return &node{methods: make(map[string]func([]json.RawMessage) (any, *provider.RPCError))}
}

func (n *node) set(method string, result any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.methods[method] = func([]json.RawMessage) (any, *provider.RPCError) { return result, nil }
}

func (n *node) fail(method string, rpcErr *provider.RPCError) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.methods[method] = func([]json.RawMessage) (any, *provider.RPCError) { return nil, rpcErr }
}

func (n *node) calls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.seen...)
}

func (n *node) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		JSONRPC string            `json:"jsonrpc"`
		ID      uint64            `json:"id"`
		Method  string            `json:"method"`
		Params  []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	n.seen = append(n.seen, req.Method)
	h, ok := n.methods[req.Method]
	n.mu.Unlock()

	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	switch {
	case !ok:
		resp["error"] = provider.RPCError{Code: provider.CodeMethodNotFound, Message: "the method " + req.Method + " does not exist/is not available"}
	default:
		result, rpcErr := h(req.Params)
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func testClient(url string) *Client {
	return NewClient(Endpoint{Name: "node", URL: url, Flags: []string{"isMetaMask"}}, WithLogger(logger.Nop()))
}

func TestClientRequest(t *testing.T) {
	n := newNode()
	n.set(provider.MethodChainID, "0xaa36a7")
	srv := httptest.NewServer(n)
	defer srv.Close()

	res, err := testClient(srv.URL).Request(context.Background(), provider.MethodChainID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(res) != `"0xaa36a7"` {
		t.Errorf("expected chain id result, got %s", res)
	}
}

func TestClientNullResult(t *testing.T) {
	n := newNode()
	n.set(provider.MethodTransactionReceipt, nil)
	srv := httptest.NewServer(n)
	defer srv.Close()

	res, err := testClient(srv.URL).Request(context.Background(), provider.MethodTransactionReceipt, []any{"0x01"})
	if err != nil {
		t.Fatal(err)
	}
	if string(res) != "null" {
		t.Errorf("expected null, got %s", res)
	}
}

func TestClientErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		rpc       bool
		code      ErrorCode
		transport bool
	}{
		{
			name: "json-rpc error object",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":4902,"message":"Unrecognized chain ID"}}`))
			},
			rpc: true,
		},
		{
			name: "error object with 500 status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32603,"message":"internal"}}`))
			},
			rpc: true,
		},
		{
			name: "plain 502",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte("upstream down"))
			},
			code:      ErrCodeHTTP,
			transport: true,
		},
		{
			name: "empty body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			code:      ErrCodeProtocol,
			transport: true,
		},
		{
			name: "not json-rpc",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"hello":"world"}`))
			},
			code:      ErrCodeProtocol,
			transport: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			_, err := testClient(srv.URL).Request(context.Background(), provider.MethodChainID, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if provider.IsRPCError(err) != tc.rpc {
				t.Errorf("IsRPCError = %v, want %v (%v)", provider.IsRPCError(err), tc.rpc, err)
			}
			if IsTransport(err) != tc.transport {
				t.Errorf("IsTransport = %v, want %v", IsTransport(err), tc.transport)
			}
			if tc.transport {
				e := err.(*Error)
				if e.Code != tc.code {
					t.Errorf("expected code %s, got %s", tc.code, e.Code)
				}
			}
		})
	}
}

func TestClientErrorData(t *testing.T) {
	n := newNode()
	n.fail(provider.MethodCall, &provider.RPCError{Code: 3, Message: "execution reverted", Data: json.RawMessage(`"0x08c379a0"`)})
	srv := httptest.NewServer(n)
	defer srv.Close()

	_, err := testClient(srv.URL).Request(context.Background(), provider.MethodCall, []any{map[string]string{"to": "0x01"}})
	rpcErr, ok := provider.AsRPCError(err)
	if !ok {
		t.Fatalf("expected rpc error, got %v", err)
	}
	if rpcErr.Code != 3 || rpcErr.Message != "execution reverted" || string(rpcErr.Data) != `"0x08c379a0"` {
		t.Errorf("unexpected rpc error %+v (data %s)", rpcErr, rpcErr.Data)
	}
}

func TestClientInvalidEndpoint(t *testing.T) {
	c := NewClient(Endpoint{Name: "broken", URL: "ftp://wallet.invalid"}, WithLogger(logger.Nop()))
	defer c.Close()

	_, err := c.Request(context.Background(), provider.MethodChainID, nil)
	if !IsConnection(err) {
		t.Fatalf("expected connection error, got %v", err)
	}
}

func TestClientConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := testClient(url).Request(context.Background(), provider.MethodChainID, nil)
	if !IsConnection(err) {
		t.Fatalf("expected connection error, got %v", err)
	}
	if provider.IsRPCError(err) {
		t.Error("connection failure must not look like an rpc error")
	}
}

func TestClientCancelledContext(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := testClient(srv.URL).Request(ctx, provider.MethodChainID, nil)
	if !IsTimeout(err) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestClientRequestAccountsFallback(t *testing.T) {
	n := newNode()
	n.set(provider.MethodAccounts, []string{"0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"})
	srv := httptest.NewServer(n)
	defer srv.Close()

	res, err := testClient(srv.URL).Request(context.Background(), provider.MethodRequestAccounts, nil)
	if err != nil {
		t.Fatal(err)
	}
	var accounts []string
	if err := json.Unmarshal(res, &accounts); err != nil || len(accounts) != 1 {
		t.Fatalf("unexpected accounts %s (%v)", res, err)
	}
	calls := n.calls()
	if len(calls) != 2 || calls[0] != provider.MethodRequestAccounts || calls[1] != provider.MethodAccounts {
		t.Errorf("unexpected call sequence %v", calls)
	}
}

func TestClientRequestAccountsRejectedIsNotRetried(t *testing.T) {
	n := newNode()
	n.fail(provider.MethodRequestAccounts, &provider.RPCError{Code: provider.CodeUserRejected, Message: "User rejected the request."})
	srv := httptest.NewServer(n)
	defer srv.Close()

	_, err := testClient(srv.URL).Request(context.Background(), provider.MethodRequestAccounts, nil)
	if !provider.IsUserRejected(err) {
		t.Fatalf("expected user rejection, got %v", err)
	}
	if len(n.calls()) != 1 {
		t.Errorf("expected a single request, got %v", n.calls())
	}
}

func TestClientPollEmitsChanges(t *testing.T) {
	n := newNode()
	n.set(provider.MethodChainID, "0x1")
	n.set(provider.MethodAccounts, []string{"0xaa"})
	srv := httptest.NewServer(n)
	defer srv.Close()

	c := testClient(srv.URL)
	var chains, accounts []string
	c.Subscribe(provider.EventChainChanged, func(data json.RawMessage) { chains = append(chains, string(data)) })
	c.Subscribe(provider.EventAccountsChanged, func(data json.RawMessage) { accounts = append(accounts, string(data)) })

	ctx := context.Background()
	if err := c.Poll(ctx); err != nil {
		t.Fatal(err)
	}
	if len(chains)+len(accounts) != 0 {
		t.Fatal("baseline poll must not emit")
	}

	n.set(provider.MethodChainID, "0xaa36a7")
	if err := c.Poll(ctx); err != nil {
		t.Fatal(err)
	}
	if len(chains) != 1 || chains[0] != `"0xaa36a7"` || len(accounts) != 0 {
		t.Fatalf("expected one chainChanged, got chains=%v accounts=%v", chains, accounts)
	}

	n.set(provider.MethodAccounts, []string{"0xbb"})
	if err := c.Poll(ctx); err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 1 || len(chains) != 1 {
		t.Fatalf("expected one accountsChanged, got chains=%v accounts=%v", chains, accounts)
	}
}

func TestHostProbeInjectsSingleClient(t *testing.T) {
	n := newNode()
	n.set(provider.MethodChainID, "0x1")
	srv := httptest.NewServer(n)
	defer srv.Close()

	h := NewHost([]Endpoint{{Name: "node", URL: srv.URL}}, WithHostLogger(logger.Nop()))
	if h.Injected() != nil {
		t.Fatal("nothing should be injected before probing")
	}

	var got provider.Injected
	remove := h.OnInjected(func(p provider.Injected) { got = p })
	defer remove()

	if n := h.Probe(context.Background()); n != 1 {
		t.Fatalf("expected 1 reachable endpoint, got %d", n)
	}
	if got == nil || h.Injected() != got {
		t.Fatal("expected listener to receive the injected provider")
	}
	if _, ok := got.(*Client); !ok {
		t.Errorf("single endpoint should inject its client, got %T", got)
	}
}

func TestHostAggregatesReachableEndpoints(t *testing.T) {
	a, b := newNode(), newNode()
	a.set(provider.MethodChainID, "0x1")
	b.set(provider.MethodChainID, "0x1")
	srvA, srvB := httptest.NewServer(a), httptest.NewServer(b)
	defer srvA.Close()
	defer srvB.Close()

	down := httptest.NewServer(http.NotFoundHandler())
	downURL := down.URL
	down.Close()

	h := NewHost([]Endpoint{
		{Name: "down", URL: downURL, Flags: []string{"isMetaMask"}},
		{Name: "coinbase", URL: srvA.URL, Flags: []string{"isCoinbaseWallet"}},
		{Name: "metamask", URL: srvB.URL, Flags: []string{"isMetaMask"}},
	}, WithHostLogger(logger.Nop()))

	if n := h.Probe(context.Background()); n != 2 {
		t.Fatalf("expected 2 reachable endpoints, got %d", n)
	}
	agg, ok := h.Injected().(provider.Aggregator)
	if !ok {
		t.Fatalf("expected an aggregate, got %T", h.Injected())
	}
	list := agg.Providers()
	if len(list) != 2 || list[0].Descriptor().Name != "coinbase" || list[1].Descriptor().Name != "metamask" {
		t.Fatalf("unexpected provider list %v", list)
	}

	p, err := provider.NewLocator(h, provider.WithLocatorLogger(logger.Nop())).Locate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if p.Descriptor().Name != "metamask" {
		t.Errorf("expected the reachable metamask endpoint, got %s", p.Descriptor().Name)
	}
}

func TestHostLateInjection(t *testing.T) {
	n := newNode()
	n.set(provider.MethodChainID, "0x1")
	srv := httptest.NewServer(n)
	defer srv.Close()

	h := NewHost([]Endpoint{{Name: "node", URL: srv.URL}},
		WithProbeInterval(10*time.Millisecond),
		WithHostLogger(logger.Nop()))

	locator := provider.NewLocator(h, provider.WithDetectTimeout(time.Second), provider.WithLocatorLogger(logger.Nop()))

	ctx := context.Background()
	if err := h.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = h.Stop(ctx) }()

	p, err := locator.Locate(ctx)
	if err != nil {
		t.Fatalf("expected injection, got %v", err)
	}
	if p.Descriptor().Name != "node" {
		t.Errorf("unexpected provider %s", p.Descriptor().Name)
	}
	if h.Listeners() != 0 {
		t.Errorf("expected listener removed, %d remain", h.Listeners())
	}
}

func TestHostHealth(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	url := down.URL
	down.Close()

	h := NewHost([]Endpoint{{Name: "node", URL: url}}, WithHostLogger(logger.Nop()))
	h.Probe(context.Background())
	if got := h.Health(context.Background()); got.Status != "down" {
		t.Errorf("expected down, got %s", got.Status)
	}
}
