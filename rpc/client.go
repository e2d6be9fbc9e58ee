package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/kbukum/chaincounter/logger"
	"github.com/kbukum/chaincounter/provider"
)

// DefaultRequestTimeout bounds a single HTTP round trip. Wallet prompts
// (eth_requestAccounts, eth_sendTransaction) can take as long as the user
// needs, so it is generous.
const DefaultRequestTimeout = 2 * time.Minute

// Client is a JSON-RPC 2.0 HTTP provider for one endpoint.
type Client struct {
	endpoint   Endpoint
	httpClient *http.Client
	log        *logger.Logger
	events     *events

	// conn is nil when the endpoint URL could not be dialed; dialErr then
	// fails every request.
	conn    *gethrpc.Client
	dialErr error

	mu       sync.Mutex
	polled   bool
	chainID  string
	accounts []string
}

var _ provider.Injected = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a client for endpoint. No connection is made until the
// first request.
func NewClient(endpoint Endpoint, opts ...Option) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	c := &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   DefaultRequestTimeout,
		},
		log:    logger.Get("rpc"),
		events: newEvents(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.conn, c.dialErr = gethrpc.DialOptions(context.Background(), endpoint.URL, gethrpc.WithHTTPClient(c.httpClient))
	if c.dialErr != nil {
		c.log.Warn("endpoint cannot be dialed", logger.Fields(
			logger.FieldProvider, endpoint.Name,
			logger.FieldError, c.dialErr.Error(),
		))
	}
	return c
}

// Close releases the underlying connection.
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// Endpoint returns the configured endpoint.
func (c *Client) Endpoint() Endpoint { return c.endpoint }

// Descriptor returns the endpoint's name and flags.
func (c *Client) Descriptor() provider.Descriptor { return c.endpoint.Descriptor() }

// Subscribe registers fn for a provider event. Events are produced by Poll.
func (c *Client) Subscribe(event string, fn provider.EventHandler) func() {
	return c.events.subscribe(event, fn)
}

// Request sends one JSON-RPC call.
//
// Nodes that do not implement eth_requestAccounts answer -32601; the
// request is then served by eth_accounts, which such nodes expose for their
// unlocked or externally signing accounts.
func (c *Client) Request(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	result, err := c.call(ctx, method, params)
	if method == provider.MethodRequestAccounts {
		if rpcErr, ok := provider.AsRPCError(err); ok && rpcErr.Code == provider.CodeMethodNotFound {
			c.log.Debug("eth_requestAccounts unsupported, using eth_accounts",
				logger.Fields(logger.FieldProvider, c.endpoint.Name))
			return c.call(ctx, provider.MethodAccounts, params)
		}
	}
	return result, err
}

func (c *Client) call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	if c.dialErr != nil {
		return nil, newConnectionError(c.endpoint.Name, c.dialErr)
	}
	if params == nil {
		params = []any{}
	}
	var result json.RawMessage
	if err := c.conn.CallContext(ctx, &result, method, params...); err != nil {
		return nil, translate(ctx, c.endpoint.Name, err)
	}
	return result, nil
}

// Poll queries the active chain and accounts and emits chainChanged or
// accountsChanged when they differ from the previous poll. The first poll
// only records the baseline.
func (c *Client) Poll(ctx context.Context) error {
	chainRaw, err := c.call(ctx, provider.MethodChainID, nil)
	if err != nil {
		return err
	}
	var chainID string
	if err := json.Unmarshal(chainRaw, &chainID); err != nil {
		return newProtocolError(c.endpoint.Name, fmt.Errorf("decode chain id: %w", err))
	}

	accRaw, err := c.call(ctx, provider.MethodAccounts, nil)
	if err != nil {
		return err
	}
	var accounts []string
	if err := json.Unmarshal(accRaw, &accounts); err != nil {
		return newProtocolError(c.endpoint.Name, fmt.Errorf("decode accounts: %w", err))
	}

	c.mu.Lock()
	first := !c.polled
	chainChanged := !first && chainID != c.chainID
	accountsChanged := !first && !slices.Equal(accounts, c.accounts)
	c.polled = true
	c.chainID = chainID
	c.accounts = accounts
	c.mu.Unlock()

	if chainChanged {
		c.log.Info("chain changed", logger.Fields(logger.FieldProvider, c.endpoint.Name, logger.FieldChainID, chainID))
		c.events.emit(provider.EventChainChanged, chainRaw)
	}
	if accountsChanged {
		c.log.Info("accounts changed", logger.Fields(logger.FieldProvider, c.endpoint.Name, "accounts", len(accounts)))
		c.events.emit(provider.EventAccountsChanged, accRaw)
	}
	return nil
}
