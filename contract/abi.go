package contract

import (
	"bytes"
	_ "embed"
	"fmt"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
)

//go:embed counter.abi.json
var defaultABI []byte

// Function is one callable ABI entry.
type Function struct {
	gethabi.Method
}

// Signature returns the canonical signature, e.g. "getCount()".
func (f Function) Signature() string { return f.Sig }

// Selector returns the 4-byte function selector.
func (f Function) Selector() [4]byte {
	var sel [4]byte
	copy(sel[:], f.ID)
	return sel
}

// ReadOnly reports whether the function does not modify state.
func (f Function) ReadOnly() bool { return f.IsConstant() }

// ABI is the parsed function table of a contract interface.
type ABI struct {
	parsed gethabi.ABI
}

// ParseABI decodes a JSON ABI. Only functions are looked up; events,
// errors and the constructor are parsed but unused. Overloaded names keep
// the first declaration.
func ParseABI(data []byte) (*ABI, error) {
	parsed, err := gethabi.JSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse abi: %w", err)
	}
	return &ABI{parsed: parsed}, nil
}

// DefaultABI returns the bundled counter contract interface.
func DefaultABI() *ABI {
	a, err := ParseABI(defaultABI)
	if err != nil {
		panic(fmt.Sprintf("bundled counter abi: %v", err))
	}
	return a
}

// Function looks up a function by name.
func (a *ABI) Function(name string) (Function, bool) {
	m, ok := a.parsed.Methods[name]
	return Function{Method: m}, ok
}

// Len returns the number of functions.
func (a *ABI) Len() int { return len(a.parsed.Methods) }
