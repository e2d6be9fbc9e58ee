package validation

import (
	"fmt"
	"math/big"
	"slices"
	"strings"
	"time"

	"github.com/kbukum/chaincounter/errors"
)

// Validator collects validation errors.
type Validator struct {
	errors []FieldError
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{
		errors: make([]FieldError, 0),
	}
}

// AddError adds a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Validate returns an AppError if there are validation errors, nil otherwise.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}

	messages := make([]string, len(v.errors))
	for i, e := range v.errors {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}

	return errors.Validation(strings.Join(messages, "; ")).WithDetail("fields", v.errors)
}

// Required checks if a string is non-empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// OneOf checks that a non-empty value is one of the allowed values.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value != "" && !slices.Contains(allowed, value) {
		v.AddError(field, "must be one of: "+strings.Join(allowed, ", "))
	}
	return v
}

// Decimal checks that value is a base-10 non-negative integer of any size.
func (v *Validator) Decimal(field, value string) *Validator {
	if value == "" {
		return v
	}
	n, ok := new(big.Int).SetString(value, 10)
	if !ok {
		v.AddError(field, "must be a decimal integer")
		return v
	}
	if n.Sign() < 0 {
		v.AddError(field, "must not be negative")
	}
	return v
}

// Timestamp checks that value is an RFC 3339 timestamp.
func (v *Validator) Timestamp(field, value string) *Validator {
	if value == "" {
		return v
	}
	if _, err := time.Parse(time.RFC3339Nano, value); err != nil {
		v.AddError(field, "must be an RFC 3339 timestamp")
	}
	return v
}

// Address checks that a non-empty value is a hex account address.
func (v *Validator) Address(field, value string) *Validator {
	if value == "" {
		return v
	}
	if err := Var(value, "eth_addr"); err != nil {
		v.AddError(field, "must be a 0x-prefixed 20-byte hex address")
	}
	return v
}

// Custom adds an error if the condition is false.
func (v *Validator) Custom(field string, valid bool, message string) *Validator {
	if !valid {
		v.AddError(field, message)
	}
	return v
}
