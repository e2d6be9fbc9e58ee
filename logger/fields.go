package logger

import "time"

// Standard field key constants for structured logging.
const (
	FieldComponent = "component"
	FieldSessionID = "session_id"
	FieldAccount   = "account"
	FieldChainID   = "chain_id"
	FieldProvider  = "provider"
	FieldMethod    = "method"
	FieldAction    = "action"
	FieldTxHash    = "tx_hash"
	FieldValue     = "value"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldCode      = "code"
	FieldDuration  = "duration_ms"
	FieldRequestID = "request_id"
)

// Fields builds a map from alternating key-value pairs.
//
//	log.Info("tx confirmed", logger.Fields(logger.FieldTxHash, hash, logger.FieldAction, "increment"))
func Fields(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for an operation that failed.
func ErrorFields(op string, err error) map[string]any {
	return map[string]any{
		FieldOperation: op,
		FieldError:     err.Error(),
	}
}

// DurationFields creates fields for a timed operation.
func DurationFields(op string, d time.Duration) map[string]any {
	return map[string]any{
		FieldOperation: op,
		FieldDuration:  d.Milliseconds(),
	}
}
