package session

import (
	"context"
	"encoding/json"
	"math/big"

	"github.com/kbukum/chaincounter/chain"
	"github.com/kbukum/chaincounter/contract"
	"github.com/kbukum/chaincounter/errors"
	"github.com/kbukum/chaincounter/provider"
)

type callObject struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
	Data string `json:"data"`
}

// call runs a read-only contract operation against the latest block.
func (m *Manager) call(ctx context.Context, s *Session, op contract.Operation) (string, error) {
	h := s.Contract()
	params := []any{
		callObject{To: h.Address().String(), Data: h.CallData(op)},
		provider.BlockLatest,
	}
	var result string
	if err := request(ctx, s.provider, provider.MethodCall, params, &result); err != nil {
		return "", err
	}
	return result, nil
}

// ReadCounter returns the on-chain counter and refreshes the cached value.
func (m *Manager) ReadCounter(ctx context.Context) (*big.Int, error) {
	s, err := m.live()
	if err != nil {
		return nil, err
	}
	result, err := m.call(ctx, s, contract.OpGetCount)
	if err != nil {
		return nil, err
	}
	v, err := contract.DecodeUint256(result)
	if err != nil {
		return nil, errors.ProviderError(provider.MethodCall, err)
	}

	m.mu.Lock()
	if m.session == s {
		m.counter = new(big.Int).Set(v)
	}
	m.mu.Unlock()
	return v, nil
}

// Counter returns the cached counter, or nil before the first read.
func (m *Manager) Counter() *big.Int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.counter == nil {
		return nil
	}
	return new(big.Int).Set(m.counter)
}

// ReadOwner returns the contract owner.
func (m *Manager) ReadOwner(ctx context.Context) (chain.Address, error) {
	s, err := m.live()
	if err != nil {
		return "", err
	}
	result, err := m.call(ctx, s, contract.OpOwner)
	if err != nil {
		return "", err
	}
	owner, err := contract.DecodeAddress(result)
	if err != nil {
		return "", errors.ProviderError(provider.MethodCall, err)
	}
	return owner, nil
}

// ReadSignerAddress returns the wallet's current first account, falling
// back to the session account when the wallet lists none.
func (m *Manager) ReadSignerAddress(ctx context.Context) (chain.Address, error) {
	s, err := m.live()
	if err != nil {
		return "", err
	}
	var accounts []string
	if err := request(ctx, s.provider, provider.MethodAccounts, nil, &accounts); err != nil {
		return "", err
	}
	if len(accounts) == 0 {
		return s.Account, nil
	}
	signer, err := chain.ParseAddress(accounts[0])
	if err != nil {
		return "", errors.ProviderError(provider.MethodAccounts, err)
	}
	return signer, nil
}

// ReadNetworkInfo returns the wallet's active chain.
func (m *Manager) ReadNetworkInfo(ctx context.Context) (NetworkInfo, error) {
	s, err := m.live()
	if err != nil {
		return NetworkInfo{}, err
	}
	var hexID string
	if err := request(ctx, s.provider, provider.MethodChainID, nil, &hexID); err != nil {
		return NetworkInfo{}, err
	}
	id, err := chain.ParseChainID(hexID)
	if err != nil {
		return NetworkInfo{}, errors.ProviderError(provider.MethodChainID, err)
	}
	return NetworkInfo{Name: m.cfg.Chain.NameFor(id), ChainID: id}, nil
}

// ReadGasPrice returns the gas price in gwei. A null or empty answer is
// reported as "0".
func (m *Manager) ReadGasPrice(ctx context.Context) (string, error) {
	s, err := m.live()
	if err != nil {
		return "", err
	}
	var result *string
	raw, err := s.provider.Request(ctx, provider.MethodGasPrice, nil)
	if err != nil {
		return "", errors.ProviderError(provider.MethodGasPrice, err)
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", errors.ProviderError(provider.MethodGasPrice, err)
	}
	if result == nil || *result == "" || *result == "0x" {
		return "0", nil
	}
	wei, err := chain.ParseQuantity(*result)
	if err != nil {
		return "", errors.ProviderError(provider.MethodGasPrice, err)
	}
	return chain.FormatUnits(wei, chain.GweiDecimals), nil
}
