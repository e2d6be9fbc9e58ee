package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Provider resolution errors
const (
	// ErrCodeNoBrowserContext indicates there is no host able to inject a provider.
	ErrCodeNoBrowserContext ErrorCode = "NO_BROWSER_CONTEXT"
	// ErrCodeProviderNotDetected indicates no provider appeared within the detection window.
	ErrCodeProviderNotDetected ErrorCode = "PROVIDER_NOT_DETECTED"
	// ErrCodeProviderNotSelected indicates none of the co-installed providers is the target wallet.
	ErrCodeProviderNotSelected ErrorCode = "PROVIDER_NOT_SELECTED"
	// ErrCodeNetworkSwitchFailed indicates the wallet could not be moved to the required chain.
	ErrCodeNetworkSwitchFailed ErrorCode = "NETWORK_SWITCH_FAILED"
	// ErrCodeContractMethodMissing indicates the contract interface lacks a required operation.
	ErrCodeContractMethodMissing ErrorCode = "CONTRACT_METHOD_MISSING"
)

// Session and action errors
const (
	// ErrCodeNotConnected indicates there is no live session.
	ErrCodeNotConnected ErrorCode = "NOT_CONNECTED"
	// ErrCodeUnauthorized indicates the signer is not allowed to perform the action.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeTransactionFailed indicates a transaction was mined but reverted, or could not be submitted.
	ErrCodeTransactionFailed ErrorCode = "TRANSACTION_FAILED"
	// ErrCodeActionInProgress indicates another action is still being executed.
	ErrCodeActionInProgress ErrorCode = "ACTION_IN_PROGRESS"
)

// Input errors
const (
	// ErrCodeImportMalformed indicates ledger import data has the wrong shape.
	ErrCodeImportMalformed ErrorCode = "IMPORT_MALFORMED"
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Transport and internal errors
const (
	// ErrCodeProviderError indicates a JSON-RPC request to the provider failed.
	ErrCodeProviderError ErrorCode = "PROVIDER_ERROR"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeProviderNotDetected: true,
	ErrCodeProviderError:       true,
	ErrCodeTimeout:             true,
	ErrCodeActionInProgress:    true,
	ErrCodeInternal:            false,
}

// IsRetryableCode returns true if the error code indicates the caller may try again.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
