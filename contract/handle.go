package contract

import (
	"github.com/kbukum/chaincounter/chain"
	"github.com/kbukum/chaincounter/errors"
)

// Operation is one of the contract operations the client needs.
type Operation string

const (
	OpGetCount  Operation = "getCount"
	OpOwner     Operation = "owner"
	OpIncrement Operation = "increment"
	OpDecrement Operation = "decrement"
	OpReset     Operation = "reset"
)

// Operations lists every required operation in binding order.
var Operations = []Operation{OpGetCount, OpOwner, OpIncrement, OpDecrement, OpReset}

// MethodNames maps each operation to the contract function implementing it.
type MethodNames struct {
	GetCount  string `yaml:"get_count" mapstructure:"get_count" validate:"required"`
	Owner     string `yaml:"owner" mapstructure:"owner" validate:"required"`
	Increment string `yaml:"increment" mapstructure:"increment" validate:"required"`
	Decrement string `yaml:"decrement" mapstructure:"decrement" validate:"required"`
	Reset     string `yaml:"reset" mapstructure:"reset" validate:"required"`
}

// DefaultMethodNames returns the function names of the bundled contract.
func DefaultMethodNames() MethodNames {
	return MethodNames{
		GetCount:  string(OpGetCount),
		Owner:     string(OpOwner),
		Increment: string(OpIncrement),
		Decrement: string(OpDecrement),
		Reset:     string(OpReset),
	}
}

// ApplyDefaults fills unset names with the bundled contract's names.
func (m *MethodNames) ApplyDefaults() {
	d := DefaultMethodNames()
	if m.GetCount == "" {
		m.GetCount = d.GetCount
	}
	if m.Owner == "" {
		m.Owner = d.Owner
	}
	if m.Increment == "" {
		m.Increment = d.Increment
	}
	if m.Decrement == "" {
		m.Decrement = d.Decrement
	}
	if m.Reset == "" {
		m.Reset = d.Reset
	}
}

// For returns the function name configured for op.
func (m MethodNames) For(op Operation) string {
	switch op {
	case OpGetCount:
		return m.GetCount
	case OpOwner:
		return m.Owner
	case OpIncrement:
		return m.Increment
	case OpDecrement:
		return m.Decrement
	case OpReset:
		return m.Reset
	}
	return ""
}

// Handle is a contract bound at a fixed address with all required
// operations resolved.
type Handle struct {
	address   chain.Address
	functions map[Operation]Function
}

// Bind resolves every operation against abi. The first operation whose
// function is absent, or takes inputs, fails the whole bind with
// ContractMethodMissing naming that function.
func Bind(address chain.Address, abi *ABI, names MethodNames) (*Handle, error) {
	h := &Handle{
		address:   address,
		functions: make(map[Operation]Function, len(Operations)),
	}
	for _, op := range Operations {
		name := names.For(op)
		f, ok := abi.Function(name)
		if !ok || len(f.Inputs) != 0 {
			return nil, errors.ContractMethodMissing(name)
		}
		h.functions[op] = f
	}
	return h, nil
}

// Address returns the contract address.
func (h *Handle) Address() chain.Address { return h.address }

// Function returns the resolved function for op.
func (h *Handle) Function(op Operation) Function { return h.functions[op] }

// CallData returns the encoded call for op.
func (h *Handle) CallData(op Operation) string {
	return EncodeCall(h.functions[op])
}
