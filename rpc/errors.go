package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"

	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/kbukum/chaincounter/provider"
)

// ErrorCode classifies transport errors.
type ErrorCode int

const (
	// ErrCodeTimeout indicates the request was cancelled or timed out.
	ErrCodeTimeout ErrorCode = iota
	// ErrCodeConnection indicates a connection failure (refused, DNS, reset).
	ErrCodeConnection
	// ErrCodeHTTP indicates a non-2xx HTTP status.
	ErrCodeHTTP
	// ErrCodeProtocol indicates a response that is not valid JSON-RPC.
	ErrCodeProtocol
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeTimeout:
		return "timeout"
	case ErrCodeConnection:
		return "connection"
	case ErrCodeHTTP:
		return "http"
	case ErrCodeProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// Error is a transport-level failure talking to an endpoint.
type Error struct {
	// Endpoint is the name of the endpoint.
	Endpoint string
	// StatusCode is the HTTP status (0 for connection-level errors).
	StatusCode int
	// Code classifies the error.
	Code ErrorCode
	// Message describes the error.
	Message string
	// Err is the underlying error.
	Err error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("rpc %s: %s (HTTP %d): %s", e.Endpoint, e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("rpc %s: %s: %s", e.Endpoint, e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

func newTimeoutError(endpoint string, err error) *Error {
	return &Error{Endpoint: endpoint, Code: ErrCodeTimeout, Message: err.Error(), Err: err}
}

func newConnectionError(endpoint string, err error) *Error {
	return &Error{Endpoint: endpoint, Code: ErrCodeConnection, Message: err.Error(), Err: err}
}

func newProtocolError(endpoint string, err error) *Error {
	return &Error{Endpoint: endpoint, Code: ErrCodeProtocol, Message: err.Error(), Err: err}
}

// translate maps an error from the JSON-RPC client onto *provider.RPCError
// when the endpoint answered with an error object, and onto *Error
// otherwise.
func translate(ctx context.Context, endpoint string, err error) error {
	var (
		rpcErr    gethrpc.Error
		httpErr   gethrpc.HTTPError
		urlErr    *url.Error
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &rpcErr):
		return toRPCError(rpcErr)
	case errors.As(err, &httpErr):
		// Some nodes answer JSON-RPC errors with a 4xx/5xx status; the error
		// object is authoritative.
		if obj := errorObject(httpErr.Body); obj != nil {
			return obj
		}
		msg := fmt.Sprintf("HTTP %d", httpErr.StatusCode)
		if len(httpErr.Body) > 0 && len(httpErr.Body) <= 256 {
			msg = string(httpErr.Body)
		}
		return &Error{Endpoint: endpoint, StatusCode: httpErr.StatusCode, Code: ErrCodeHTTP, Message: msg, Err: err}
	case ctx.Err() != nil:
		return newTimeoutError(endpoint, err)
	case errors.As(err, &urlErr):
		if urlErr.Timeout() {
			return newTimeoutError(endpoint, err)
		}
		return newConnectionError(endpoint, err)
	case errors.Is(err, gethrpc.ErrNoResult),
		errors.As(err, &syntaxErr),
		errors.As(err, &typeErr),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return newProtocolError(endpoint, err)
	default:
		return newConnectionError(endpoint, err)
	}
}

func toRPCError(e gethrpc.Error) *provider.RPCError {
	out := &provider.RPCError{Code: e.ErrorCode(), Message: e.Error()}
	var dataErr gethrpc.DataError
	if errors.As(e, &dataErr) && dataErr.ErrorData() != nil {
		if data, err := json.Marshal(dataErr.ErrorData()); err == nil {
			out.Data = data
		}
	}
	return out
}

// errorObject extracts a JSON-RPC error object from a response body.
func errorObject(body []byte) *provider.RPCError {
	var resp struct {
		Error *provider.RPCError `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil
	}
	return resp.Error
}

// IsTimeout reports whether err is a transport timeout.
func IsTimeout(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeTimeout
}

// IsConnection reports whether err is a connection failure.
func IsConnection(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeConnection
}

// IsTransport reports whether err is any transport-level failure.
func IsTransport(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
