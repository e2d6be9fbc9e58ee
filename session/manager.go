package session

import (
	"context"
	"encoding/json"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/chaincounter/chain"
	"github.com/kbukum/chaincounter/contract"
	"github.com/kbukum/chaincounter/errors"
	"github.com/kbukum/chaincounter/logger"
	"github.com/kbukum/chaincounter/observability"
	"github.com/kbukum/chaincounter/provider"
	"github.com/kbukum/chaincounter/validation"
)

// DefaultConfirmPollInterval is how often a pending transaction's receipt
// is requested.
const DefaultConfirmPollInterval = time.Second

// Locator resolves the provider to connect with.
type Locator interface {
	Locate(ctx context.Context) (provider.Injected, error)
}

// Enforcer puts a provider on the required chain.
type Enforcer interface {
	Ensure(ctx context.Context, p provider.Injected) error
}

// Config describes the contract the manager binds.
type Config struct {
	Chain           chain.Descriptor
	ContractAddress chain.Address `validate:"required,eth_addr"`
	ABI             *contract.ABI `validate:"required"`
	Methods         contract.MethodNames
}

// Manager owns at most one live Session.
type Manager struct {
	locator      Locator
	enforcer     Enforcer
	cfg          Config
	middleware   provider.Middleware
	pollInterval time.Duration
	log          *logger.Logger
	now          func() time.Time

	// connectMu serializes Connect calls end to end.
	connectMu sync.Mutex

	mu      sync.RWMutex
	session *Session
	counter *big.Int
	status  Status
}

// Option configures a Manager.
type Option func(*Manager)

// WithMiddleware wraps every located provider before use.
func WithMiddleware(mw provider.Middleware) Option {
	return func(m *Manager) { m.middleware = mw }
}

// WithConfirmPollInterval sets the receipt polling interval.
func WithConfirmPollInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.pollInterval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager. The contract is bound on every Connect.
func NewManager(locator Locator, enforcer Enforcer, cfg Config, opts ...Option) (*Manager, error) {
	cfg.Methods.ApplyDefaults()
	if err := validation.Validate(cfg); err != nil {
		return nil, err
	}
	m := &Manager{
		locator:      locator,
		enforcer:     enforcer,
		cfg:          cfg,
		pollInterval: DefaultConfirmPollInterval,
		log:          logger.Get("session"),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Connect establishes a new Session, replacing the live one. Concurrent
// calls run one after another, so exactly one Session and one set of
// provider listeners survive.
//
// Locator and Enforcer errors are returned unchanged. On any failure no
// Session is stored.
func (m *Manager) Connect(ctx context.Context) (sess *Session, err error) {
	m.connectMu.Lock()
	defer m.connectMu.Unlock()

	ctx, op := observability.StartOperation(ctx, observability.SpanConnect, "connect")
	defer func() { op.End(statusOf(err), err) }()

	m.Disconnect()

	p, err := m.locator.Locate(ctx)
	if err != nil {
		return nil, err
	}
	if m.middleware != nil {
		p = m.middleware(p)
	}
	op.SetAttributes(attribute.String(observability.AttrProvider, p.Descriptor().Name))

	if err := m.enforcer.Ensure(ctx, p); err != nil {
		return nil, err
	}

	account, err := m.requestAccount(ctx, p)
	if err != nil {
		return nil, err
	}

	var hexID string
	if err := request(ctx, p, provider.MethodChainID, nil, &hexID); err != nil {
		return nil, err
	}
	chainID, err := chain.ParseChainID(hexID)
	if err != nil {
		return nil, errors.ProviderError(provider.MethodChainID, err)
	}

	handle, err := contract.Bind(m.cfg.ContractAddress, m.cfg.ABI, m.cfg.Methods)
	if err != nil {
		return nil, err
	}

	sess = &Session{
		ID:          uuid.NewString(),
		Account:     account,
		ChainID:     chainID,
		Provider:    p.Descriptor().Name,
		ConnectedAt: m.now(),
		contract:    handle,
		provider:    p,
	}
	sess.unsubscribe = []func(){
		p.Subscribe(provider.EventAccountsChanged, m.onAccountsChanged(sess.ID, account)),
		p.Subscribe(provider.EventChainChanged, m.onChainChanged(sess.ID, chainID)),
	}

	m.mu.Lock()
	m.session = sess
	m.mu.Unlock()

	m.log.WithContext(ctx).Info("wallet connected", logger.Fields(
		logger.FieldSessionID, sess.ID,
		logger.FieldAccount, account.String(),
		logger.FieldChainID, chainID,
		logger.FieldProvider, sess.Provider,
	))
	return sess, nil
}

func (m *Manager) requestAccount(ctx context.Context, p provider.Injected) (chain.Address, error) {
	var accounts []string
	if err := request(ctx, p, provider.MethodRequestAccounts, nil, &accounts); err != nil {
		if provider.IsUserRejected(err) {
			return "", errors.Unauthorized("The wallet connection request was rejected.").WithCause(err)
		}
		return "", err
	}
	if len(accounts) == 0 {
		return "", errors.Unauthorized("No account authorized.")
	}
	account, err := chain.ParseAddress(accounts[0])
	if err != nil {
		return "", errors.ProviderError(provider.MethodRequestAccounts, err)
	}
	return account, nil
}

// Disconnect discards the live Session and removes its provider listeners.
// It is a no-op without one.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	sess := m.session
	m.session = nil
	m.counter = nil
	m.status = Status{}
	m.mu.Unlock()

	if sess == nil {
		return
	}
	for _, unsubscribe := range sess.unsubscribe {
		unsubscribe()
	}
	m.log.Info("wallet disconnected", logger.Fields(logger.FieldSessionID, sess.ID))
}

// Current returns the live Session, or nil.
func (m *Manager) Current() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// CurrentID returns the live Session's ID, or "".
func (m *Manager) CurrentID() string {
	if s := m.Current(); s != nil {
		return s.ID
	}
	return ""
}

func (m *Manager) live() (*Session, error) {
	s := m.Current()
	if s == nil {
		return nil, errors.NotConnected()
	}
	return s, nil
}

// invalidate ends the session with id if it is still the live one.
func (m *Manager) invalidate(id, reason string) {
	m.mu.Lock()
	live := m.session != nil && m.session.ID == id
	m.mu.Unlock()
	if !live {
		return
	}
	m.log.Info("session invalidated", logger.Fields(logger.FieldSessionID, id, "reason", reason))
	m.Disconnect()
}

func (m *Manager) onAccountsChanged(id string, account chain.Address) provider.EventHandler {
	return func(data json.RawMessage) {
		var accounts []string
		if err := json.Unmarshal(data, &accounts); err == nil && len(accounts) > 0 && account.Equal(chain.Address(accounts[0])) {
			return
		}
		m.invalidate(id, provider.EventAccountsChanged)
	}
}

func (m *Manager) onChainChanged(id string, chainID uint64) provider.EventHandler {
	return func(data json.RawMessage) {
		var hexID string
		if err := json.Unmarshal(data, &hexID); err == nil {
			if got, err := chain.ParseChainID(hexID); err == nil && got == chainID {
				return
			}
		}
		m.invalidate(id, provider.EventChainChanged)
	}
}

// request sends method and decodes the result into out. Provider failures
// become ProviderError unless they are already application errors.
func request(ctx context.Context, p provider.Injected, method string, params []any, out any) error {
	raw, err := p.Request(ctx, method, params)
	if err != nil {
		if _, ok := errors.AsAppError(err); ok {
			return err
		}
		return errors.ProviderError(method, err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.ProviderError(method, err)
	}
	return nil
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
