package session

import (
	"math/big"
	"time"

	"github.com/kbukum/chaincounter/chain"
	"github.com/kbukum/chaincounter/contract"
	"github.com/kbukum/chaincounter/provider"
)

// Session is one live connection. It is immutable once stored.
type Session struct {
	ID          string        `json:"id"`
	Account     chain.Address `json:"account"`
	ChainID     uint64        `json:"chain_id"`
	Provider    string        `json:"provider"`
	ConnectedAt time.Time     `json:"connected_at"`

	contract    *contract.Handle
	provider    provider.Injected
	unsubscribe []func()
}

// Contract returns the bound contract handle.
func (s *Session) Contract() *contract.Handle { return s.contract }

// NetworkInfo describes the wallet's active chain.
type NetworkInfo struct {
	Name    string `json:"name"`
	ChainID uint64 `json:"chain_id"`
}

// Status is the passively refreshed view of the contract and network.
type Status struct {
	Owner       chain.Address `json:"owner,omitempty"`
	Network     NetworkInfo   `json:"network"`
	GasPrice    string        `json:"gas_price_gwei"`
	Counter     *big.Int      `json:"counter,omitempty"`
	RefreshedAt time.Time     `json:"refreshed_at"`
}
