package network

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/chaincounter/chain"
	"github.com/kbukum/chaincounter/errors"
	"github.com/kbukum/chaincounter/logger"
	"github.com/kbukum/chaincounter/observability"
	"github.com/kbukum/chaincounter/provider"
	"github.com/kbukum/chaincounter/validation"
)

// Enforcer moves a provider onto one required chain.
type Enforcer struct {
	required chain.Descriptor
	log      *logger.Logger
}

// Option configures an Enforcer.
type Option func(*Enforcer)

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(e *Enforcer) { e.log = log }
}

// NewEnforcer validates the chain descriptor and returns an Enforcer for it.
func NewEnforcer(required chain.Descriptor, opts ...Option) (*Enforcer, error) {
	if err := validation.Validate(required); err != nil {
		return nil, err
	}
	e := &Enforcer{required: required, log: logger.Get("network")}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Required returns the required chain.
func (e *Enforcer) Required() chain.Descriptor { return e.required }

// Ensure makes p's active chain the required one.
//
// When the chain already matches, eth_chainId is the only request sent.
// A failed switch whose error means "unknown chain" leads to exactly one
// registration and one retried switch; every other failure, including a
// failed chain-id query, is returned as NetworkSwitchFailed.
func (e *Enforcer) Ensure(ctx context.Context, p provider.Injected) (err error) {
	ctx, op := observability.StartOperation(ctx, observability.SpanEnsureNetwork, "ensure-network",
		attribute.Int64(observability.AttrChainID, int64(e.required.ID)))
	defer func() { op.End(statusOf(err), err) }()

	want := e.required.HexID()
	log := e.log.WithContext(ctx).WithFields(logger.Fields(logger.FieldChainID, want))

	active, err := e.activeChain(ctx, p)
	if err != nil {
		return errors.NetworkSwitchFailed(want, err)
	}
	if active == e.required.ID {
		return nil
	}

	log.Info("switching wallet network", logger.Fields("from", active))
	switchErr := e.switchChain(ctx, p)
	if switchErr == nil {
		return nil
	}
	if !provider.IsUnknownChain(switchErr) {
		return errors.NetworkSwitchFailed(want, switchErr)
	}

	log.Info("wallet does not know the chain, registering it")
	if _, err := p.Request(ctx, provider.MethodAddChain, []any{e.required.AddChainParams()}); err != nil {
		return errors.NetworkSwitchFailed(want, fmt.Errorf("register chain: %w", err))
	}
	if err := e.switchChain(ctx, p); err != nil {
		return errors.NetworkSwitchFailed(want, fmt.Errorf("switch after registration: %w", err))
	}
	return nil
}

func (e *Enforcer) activeChain(ctx context.Context, p provider.Injected) (uint64, error) {
	raw, err := p.Request(ctx, provider.MethodChainID, nil)
	if err != nil {
		return 0, err
	}
	var hexID string
	if err := json.Unmarshal(raw, &hexID); err != nil {
		return 0, fmt.Errorf("decode chain id %s: %w", raw, err)
	}
	return chain.ParseChainID(hexID)
}

func (e *Enforcer) switchChain(ctx context.Context, p provider.Injected) error {
	_, err := p.Request(ctx, provider.MethodSwitchChain, []any{chain.SwitchChainParams{ChainID: e.required.HexID()}})
	return err
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
