package provider

import (
	"context"
	"time"

	"github.com/kbukum/chaincounter/errors"
	"github.com/kbukum/chaincounter/logger"
)

// DefaultDetectTimeout bounds the wait for a late-injected provider.
const DefaultDetectTimeout = 1500 * time.Millisecond

// Locator finds the provider to use in a Host.
type Locator struct {
	host          Host
	detectTimeout time.Duration
	targetFlag    string
	predicate     Predicate
	log           *logger.Logger
}

// LocatorOption configures a Locator.
type LocatorOption func(*Locator)

// WithDetectTimeout overrides the late-injection wait.
func WithDetectTimeout(d time.Duration) LocatorOption {
	return func(l *Locator) {
		if d > 0 {
			l.detectTimeout = d
		}
	}
}

// WithTargetFlag sets the capability flag identifying the supported wallet.
func WithTargetFlag(flag string) LocatorOption {
	return func(l *Locator) { l.targetFlag = flag }
}

// WithPredicate replaces flag matching with a custom predicate.
func WithPredicate(p Predicate) LocatorOption {
	return func(l *Locator) { l.predicate = p }
}

// WithLocatorLogger sets the logger.
func WithLocatorLogger(log *logger.Logger) LocatorOption {
	return func(l *Locator) { l.log = log }
}

// NewLocator creates a Locator over host. host may be nil, in which case
// every Locate fails with NoBrowserContext.
func NewLocator(host Host, opts ...LocatorOption) *Locator {
	l := &Locator{
		host:          host,
		detectTimeout: DefaultDetectTimeout,
		targetFlag:    "isMetaMask",
		log:           logger.Get("provider"),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.predicate == nil {
		l.predicate = HasFlag(l.targetFlag)
	}
	return l
}

// Locate returns the provider to use.
//
// An already-injected provider is used immediately. Otherwise Locate waits
// up to the detect timeout for injection through a single-use listener that
// is removed on every return path. When the provider aggregates several
// wallets, the first one matching the predicate is chosen.
func (l *Locator) Locate(ctx context.Context) (Injected, error) {
	if l.host == nil {
		return nil, errors.NoBrowserContext()
	}

	p := l.host.Injected()
	if p == nil {
		var err error
		if p, err = l.await(ctx); err != nil {
			return nil, err
		}
	}
	return l.choose(p)
}

func (l *Locator) await(ctx context.Context) (Injected, error) {
	injected := make(chan Injected, 1)
	remove := l.host.OnInjected(func(p Injected) {
		select {
		case injected <- p:
		default:
		}
	})
	defer remove()

	// Injection may have happened between the first check and registration.
	if p := l.host.Injected(); p != nil {
		return p, nil
	}

	l.log.Debug("waiting for provider injection", logger.Fields("timeout_ms", l.detectTimeout.Milliseconds()))

	timer := time.NewTimer(l.detectTimeout)
	defer timer.Stop()

	select {
	case p := <-injected:
		return p, nil
	case <-timer.C:
		return nil, errors.ProviderNotDetected(l.detectTimeout.String())
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *Locator) choose(p Injected) (Injected, error) {
	agg, ok := p.(Aggregator)
	if !ok {
		return p, nil
	}
	list := agg.Providers()
	if len(list) == 0 {
		return p, nil
	}

	target, ok := SelectTarget(list, l.predicate)
	if !ok {
		return nil, errors.ProviderNotSelected(l.targetFlag, len(list))
	}
	l.log.Debug("selected provider from aggregate", logger.Fields(
		logger.FieldProvider, target.Descriptor().Name,
		"candidates", len(list),
	))
	return target, nil
}
