package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

// Well-known provider error codes (EIP-1193, EIP-3085, JSON-RPC 2.0).
const (
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeUnsupported       = 4200
	CodeDisconnected      = 4900
	CodeChainDisconnect   = 4901
	CodeUnrecognizedChain = 4902
	CodeMethodNotFound    = -32601
	CodeInvalidParams     = -32602
	CodeInternal          = -32603
)

// RPCError is a JSON-RPC error object returned by the provider.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// AsRPCError extracts an *RPCError from err's chain.
func AsRPCError(err error) (*RPCError, bool) {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr, true
	}
	return nil, false
}

// IsRPCError reports whether err carries a JSON-RPC error object, meaning
// the provider was reached and answered.
func IsRPCError(err error) bool {
	_, ok := AsRPCError(err)
	return ok
}

var unknownChainMessage = regexp.MustCompile(`(?i)unrecognized chain|unknown chain|chain .* not (been )?added`)

// IsUnknownChain reports whether a chain switch failed because the wallet
// does not know the chain: code 4902, or a message saying so for wallets
// that use other codes.
func IsUnknownChain(err error) bool {
	if err == nil {
		return false
	}
	if rpcErr, ok := AsRPCError(err); ok {
		return rpcErr.Code == CodeUnrecognizedChain || unknownChainMessage.MatchString(rpcErr.Message)
	}
	return unknownChainMessage.MatchString(err.Error())
}

// IsUserRejected reports whether the user declined the request in the wallet.
func IsUserRejected(err error) bool {
	rpcErr, ok := AsRPCError(err)
	return ok && rpcErr.Code == CodeUserRejected
}
