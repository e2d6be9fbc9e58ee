package providertest

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/kbukum/chaincounter/chain"
	"github.com/kbukum/chaincounter/contract"
	"github.com/kbukum/chaincounter/provider"
)

// Well-known test accounts.
const (
	Alice = chain.Address("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	Bob   = chain.Address("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")

	CounterAddress = chain.Address("0x5FbDB2315678afecb367f032d93F642f64180aa3")
)

// Receipt statuses.
const (
	StatusSuccess = "0x1"
	StatusFailed  = "0x0"
)

// Wallet simulates a wallet connected to a chain that hosts the counter
// contract. The owner may reset; decrementing zero reverts.
type Wallet struct {
	*Provider

	mu           sync.Mutex
	chainID      uint64
	known        map[uint64]bool
	accounts     []chain.Address
	owner        chain.Address
	contract     chain.Address
	count        *big.Int
	gasPrice     *big.Int
	pendingPolls int
	receipts     map[string]*pendingReceipt
	txs          int
}

type pendingReceipt struct {
	polls  int
	status string
}

// WalletOption configures a Wallet.
type WalletOption func(*Wallet)

// WithChain sets the wallet's active chain.
func WithChain(id uint64) WalletOption {
	return func(w *Wallet) { w.chainID = id; w.known[id] = true }
}

// WithoutChain makes the wallet forget a chain so switching to it fails
// with 4902 until the chain is added.
func WithoutChain(id uint64) WalletOption {
	return func(w *Wallet) { delete(w.known, id) }
}

// WithAccounts sets the authorized accounts; the first is the signer.
func WithAccounts(accounts ...chain.Address) WalletOption {
	return func(w *Wallet) { w.accounts = accounts }
}

// WithOwner sets the contract owner.
func WithOwner(owner chain.Address) WalletOption {
	return func(w *Wallet) { w.owner = owner }
}

// WithCount sets the initial counter value.
func WithCount(n int64) WalletOption {
	return func(w *Wallet) { w.count = big.NewInt(n) }
}

// WithGasPrice sets the gas price in wei; nil makes eth_gasPrice return null.
func WithGasPrice(wei *big.Int) WalletOption {
	return func(w *Wallet) { w.gasPrice = wei }
}

// WithPendingPolls makes each receipt return null for n polls before it is mined.
func WithPendingPolls(n int) WalletOption {
	return func(w *Wallet) { w.pendingPolls = n }
}

// NewWallet creates a wallet on Sepolia with Alice as signer and owner.
func NewWallet(name string, flags []string, opts ...WalletOption) *Wallet {
	w := &Wallet{
		Provider: New(name, flags...),
		chainID:  chain.Sepolia().ID,
		known:    map[uint64]bool{1: true, chain.Sepolia().ID: true},
		accounts: []chain.Address{Alice},
		owner:    Alice,
		contract: CounterAddress,
		count:    new(big.Int),
		gasPrice: big.NewInt(20_000_000_000),
		receipts: make(map[string]*pendingReceipt),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.Handle(provider.MethodChainID, w.handleChainID)
	w.Handle(provider.MethodRequestAccounts, w.handleAccounts)
	w.Handle(provider.MethodAccounts, w.handleAccounts)
	w.Handle(provider.MethodSwitchChain, w.handleSwitch)
	w.Handle(provider.MethodAddChain, w.handleAdd)
	w.Handle(provider.MethodCall, w.handleCall)
	w.Handle(provider.MethodSendTransaction, w.handleSend)
	w.Handle(provider.MethodTransactionReceipt, w.handleReceipt)
	w.Handle(provider.MethodGasPrice, w.handleGasPrice)
	return w
}

// Count returns the on-chain counter value.
func (w *Wallet) Count() *big.Int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return new(big.Int).Set(w.count)
}

// SetCount overwrites the on-chain counter value.
func (w *Wallet) SetCount(n int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.count = big.NewInt(n)
}

// ChainID returns the active chain.
func (w *Wallet) ChainID() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.chainID
}

// SetAccounts replaces the authorized accounts without emitting an event.
func (w *Wallet) SetAccounts(accounts ...chain.Address) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.accounts = accounts
}

// SwitchAccount changes the signer and emits accountsChanged.
func (w *Wallet) SwitchAccount(a chain.Address) {
	w.SetAccounts(a)
	w.Emit(provider.EventAccountsChanged, []string{a.String()})
}

// SetGasPrice sets the gas price in wei; nil makes eth_gasPrice return null.
func (w *Wallet) SetGasPrice(wei *big.Int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.gasPrice = wei
}

func (w *Wallet) handleChainID([]any) (any, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return chain.FormatQuantity(new(big.Int).SetUint64(w.chainID)), nil
}

func (w *Wallet) handleAccounts([]any) (any, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.accounts))
	for i, a := range w.accounts {
		out[i] = a.String()
	}
	return out, nil
}

func (w *Wallet) handleSwitch(params []any) (any, error) {
	var req chain.SwitchChainParams
	if err := decodeParam(params, 0, &req); err != nil {
		return nil, err
	}
	id, err := chain.ParseChainID(req.ChainID)
	if err != nil {
		return nil, &provider.RPCError{Code: provider.CodeInvalidParams, Message: err.Error()}
	}

	w.mu.Lock()
	if !w.known[id] {
		w.mu.Unlock()
		return nil, &provider.RPCError{Code: provider.CodeUnrecognizedChain, Message: fmt.Sprintf("Unrecognized chain ID %q.", req.ChainID)}
	}
	changed := w.chainID != id
	w.chainID = id
	w.mu.Unlock()

	if changed {
		w.Emit(provider.EventChainChanged, req.ChainID)
	}
	return nil, nil
}

func (w *Wallet) handleAdd(params []any) (any, error) {
	var req chain.AddChainParams
	if err := decodeParam(params, 0, &req); err != nil {
		return nil, err
	}
	if len(req.RPCURLs) == 0 || req.ChainName == "" {
		return nil, &provider.RPCError{Code: provider.CodeInvalidParams, Message: "incomplete chain parameters"}
	}
	id, err := chain.ParseChainID(req.ChainID)
	if err != nil {
		return nil, &provider.RPCError{Code: provider.CodeInvalidParams, Message: err.Error()}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.known[id] = true
	return nil, nil
}

type callObject struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
	Data string `json:"data"`
}

var (
	selGetCount  = contract.Selector("getCount()")
	selOwner     = contract.Selector("owner()")
	selIncrement = contract.Selector("increment()")
	selDecrement = contract.Selector("decrement()")
	selReset     = contract.Selector("reset()")
)

func selectorOf(data string) ([4]byte, error) {
	var sel [4]byte
	b, err := hexutil.Decode(data)
	if err != nil || len(b) < 4 {
		return sel, &provider.RPCError{Code: provider.CodeInvalidParams, Message: "invalid call data"}
	}
	copy(sel[:], b)
	return sel, nil
}

func reverted() error {
	return &provider.RPCError{Code: -32000, Message: "execution reverted"}
}

func (w *Wallet) handleCall(params []any) (any, error) {
	var call callObject
	if err := decodeParam(params, 0, &call); err != nil {
		return nil, err
	}
	sel, err := selectorOf(call.Data)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.contract.Equal(chain.Address(call.To)) {
		return "0x", nil
	}
	switch sel {
	case selGetCount:
		return word(w.count.Bytes()), nil
	case selOwner:
		return word(w.owner.Common().Bytes()), nil
	}
	return nil, reverted()
}

func (w *Wallet) handleSend(params []any) (any, error) {
	var tx callObject
	if err := decodeParam(params, 0, &tx); err != nil {
		return nil, err
	}
	sel, err := selectorOf(tx.Data)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	authorized := false
	for _, a := range w.accounts {
		if a.Equal(chain.Address(tx.From)) {
			authorized = true
		}
	}
	if !authorized {
		return nil, &provider.RPCError{Code: provider.CodeUnauthorized, Message: "the requested account has not been authorized"}
	}

	status := StatusSuccess
	switch sel {
	case selIncrement:
		w.count.Add(w.count, big.NewInt(1))
	case selDecrement:
		if w.count.Sign() == 0 {
			status = StatusFailed
		} else {
			w.count.Sub(w.count, big.NewInt(1))
		}
	case selReset:
		if !w.owner.Equal(chain.Address(tx.From)) {
			status = StatusFailed
		} else {
			w.count.SetInt64(0)
		}
	default:
		return nil, reverted()
	}

	w.txs++
	hash := fmt.Sprintf("0x%064x", w.txs)
	w.receipts[hash] = &pendingReceipt{polls: w.pendingPolls, status: status}
	return hash, nil
}

func (w *Wallet) handleReceipt(params []any) (any, error) {
	var hash string
	if err := decodeParam(params, 0, &hash); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	r, ok := w.receipts[hash]
	if !ok {
		return nil, nil
	}
	if r.polls > 0 {
		r.polls--
		return nil, nil
	}
	return map[string]string{
		"transactionHash": hash,
		"status":          r.status,
		"blockNumber":     "0x1",
	}, nil
}

func (w *Wallet) handleGasPrice([]any) (any, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gasPrice == nil {
		return nil, nil
	}
	return chain.FormatQuantity(w.gasPrice), nil
}

func word(b []byte) string {
	return hexutil.Encode(common.LeftPadBytes(b, contract.WordSize))
}

func decodeParam(params []any, i int, v any) error {
	if i >= len(params) {
		return &provider.RPCError{Code: provider.CodeInvalidParams, Message: fmt.Sprintf("missing param %d", i)}
	}
	raw, err := json.Marshal(params[i])
	if err != nil {
		return &provider.RPCError{Code: provider.CodeInvalidParams, Message: err.Error()}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &provider.RPCError{Code: provider.CodeInvalidParams, Message: err.Error()}
	}
	return nil
}
