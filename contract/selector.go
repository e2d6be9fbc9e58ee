package contract

import (
	"fmt"
	"math/big"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/kbukum/chaincounter/chain"
)

// WordSize is the size of one ABI-encoded word.
const WordSize = 32

var (
	uint256Result = singleResult("uint256")
	addressResult = singleResult("address")
)

func singleResult(typ string) gethabi.Arguments {
	t, err := gethabi.NewType(typ, "", nil)
	if err != nil {
		panic(fmt.Sprintf("abi type %s: %v", typ, err))
	}
	return gethabi.Arguments{{Type: t}}
}

// Selector returns the first four bytes of keccak256(signature).
func Selector(signature string) [4]byte {
	var sel [4]byte
	copy(sel[:], crypto.Keccak256([]byte(signature)))
	return sel
}

// EncodeCall returns the 0x-hex call data for a zero-argument function.
func EncodeCall(f Function) string {
	return hexutil.Encode(f.ID)
}

// unpackOne decodes the first return value of an eth_call result.
func unpackOne(args gethabi.Arguments, result string) (any, error) {
	data, err := hexutil.Decode(result)
	if err != nil {
		return nil, fmt.Errorf("return data %q: %w", result, err)
	}
	values, err := args.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("return data: %w", err)
	}
	return values[0], nil
}

// DecodeUint256 decodes a single uint256 return value.
func DecodeUint256(result string) (*big.Int, error) {
	v, err := unpackOne(uint256Result, result)
	if err != nil {
		return nil, err
	}
	n, ok := v.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("return data: unexpected %T for uint256", v)
	}
	return n, nil
}

// DecodeAddress decodes a single address return value.
func DecodeAddress(result string) (chain.Address, error) {
	v, err := unpackOne(addressResult, result)
	if err != nil {
		return "", err
	}
	addr, ok := v.(common.Address)
	if !ok {
		return "", fmt.Errorf("return data: unexpected %T for address", v)
	}
	return chain.FromCommon(addr), nil
}
