package session

import (
	"context"
	"time"

	"github.com/kbukum/chaincounter/component"
	"github.com/kbukum/chaincounter/logger"
)

// DefaultRefreshInterval is how often the status cache is refreshed.
const DefaultRefreshInterval = 15 * time.Second

// Refresh re-reads owner, network, gas price and counter. Each failure is
// logged and the previous cached value kept. Without a session the cache is
// returned unchanged.
func (m *Manager) Refresh(ctx context.Context) Status {
	s := m.Current()
	if s == nil {
		return m.Status()
	}
	next := m.Status()
	log := m.log.WithContext(ctx).WithFields(logger.Fields(logger.FieldSessionID, s.ID))

	if owner, err := m.ReadOwner(ctx); err != nil {
		log.Warn("status refresh failed", logger.ErrorFields("read-owner", err))
	} else {
		next.Owner = owner
	}
	if info, err := m.ReadNetworkInfo(ctx); err != nil {
		log.Warn("status refresh failed", logger.ErrorFields("read-network", err))
	} else {
		next.Network = info
	}
	if gas, err := m.ReadGasPrice(ctx); err != nil {
		log.Warn("status refresh failed", logger.ErrorFields("read-gas-price", err))
	} else {
		next.GasPrice = gas
	}
	if counter, err := m.ReadCounter(ctx); err != nil {
		log.Warn("status refresh failed", logger.ErrorFields("read-counter", err))
	} else {
		next.Counter = counter
	}
	next.RefreshedAt = m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != s {
		return m.status
	}
	m.status = next
	return next
}

// Status returns the cached status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// NewRefresher returns a component that refreshes the status cache of the
// live session every interval.
func NewRefresher(m *Manager, interval time.Duration) *component.Ticker {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return component.NewTicker("status-refresher", interval, func(ctx context.Context) error {
		m.Refresh(ctx)
		return nil
	})
}
