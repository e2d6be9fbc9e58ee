package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Provider resolution ---

// NoBrowserContext is returned when there is no host environment to locate a provider in.
func NoBrowserContext() *AppError {
	return New(ErrCodeNoBrowserContext, "No wallet host environment is available.", http.StatusServiceUnavailable)
}

// ProviderNotDetected is returned when no provider was injected within the detection window.
func ProviderNotDetected(waited string) *AppError {
	return New(ErrCodeProviderNotDetected, "No wallet provider detected. Install or start a wallet and try again.", http.StatusServiceUnavailable).
		WithDetail("waited", waited)
}

// ProviderNotSelected is returned when several providers are present and none is the target wallet.
func ProviderNotSelected(flag string, candidates int) *AppError {
	return New(ErrCodeProviderNotSelected, "Several wallet providers are installed but none is the supported wallet.", http.StatusConflict).
		WithDetail("target_flag", flag).
		WithDetail("candidates", candidates)
}

// NetworkSwitchFailed wraps the failure of a chain switch or chain registration request.
func NetworkSwitchFailed(chainID string, cause error) *AppError {
	return New(ErrCodeNetworkSwitchFailed, fmt.Sprintf("Could not switch the wallet to chain %s.", chainID), http.StatusBadGateway).
		WithDetail("chain_id", chainID).
		WithCause(cause)
}

// ContractMethodMissing is returned when the bound contract interface lacks a required operation.
func ContractMethodMissing(method string) *AppError {
	return New(ErrCodeContractMethodMissing, fmt.Sprintf("Contract interface is missing required method %q.", method), http.StatusUnprocessableEntity).
		WithDetail("method", method)
}

// --- Session and actions ---

// NotConnected is returned by every session operation while no session is live.
func NotConnected() *AppError {
	return New(ErrCodeNotConnected, "Wallet is not connected.", http.StatusPreconditionFailed)
}

// Unauthorized creates a new AppError for an action the signer may not perform.
func Unauthorized(reason string) *AppError {
	if reason == "" {
		reason = "The connected account is not allowed to perform this action."
	}
	return New(ErrCodeUnauthorized, reason, http.StatusForbidden)
}

// TransactionFailed is returned when a transaction could not be submitted or was reverted.
func TransactionFailed(txHash string, cause error) *AppError {
	e := New(ErrCodeTransactionFailed, "The transaction failed.", http.StatusBadGateway).WithCause(cause)
	if txHash != "" {
		e.WithDetail("tx_hash", txHash)
	}
	return e
}

// ActionInProgress is returned when an action is triggered while another is still running.
func ActionInProgress(running string) *AppError {
	return New(ErrCodeActionInProgress, "Another action is still in progress.", http.StatusConflict).
		WithDetail("running", running)
}

// --- Input ---

// ImportMalformed is returned when ledger import data does not have the expected shape.
func ImportMalformed(reason string) *AppError {
	return New(ErrCodeImportMalformed, fmt.Sprintf("Import data is malformed: %s", reason), http.StatusBadRequest)
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	e := New(ErrCodeInvalidInput, fmt.Sprintf("Invalid input: %s", reason), http.StatusBadRequest)
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message, http.StatusBadRequest)
}

// --- Transport and internal ---

// ProviderError wraps a failed provider request.
func ProviderError(method string, cause error) *AppError {
	return New(ErrCodeProviderError, fmt.Sprintf("Wallet request %s failed.", method), http.StatusBadGateway).
		WithDetail("method", method).
		WithCause(cause)
}

// Timeout creates a new AppError for a request that timed out.
func Timeout(operation string) *AppError {
	return New(ErrCodeTimeout, "The request took too long. Please try again.", http.StatusGatewayTimeout).
		WithDetail("operation", operation)
}

// Internal creates a new AppError for an internal error.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred.", http.StatusInternalServerError).WithCause(cause)
}
