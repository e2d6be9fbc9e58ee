package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/chaincounter/errors"
)

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("action", "")
	v.Required("value", "  ")
	v.Required("timestamp", "2024-01-01T00:00:00Z")
	if len(v.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(v.Errors()))
	}
	if v.Errors()[0].Field != "action" {
		t.Errorf("expected first error on 'action', got %q", v.Errors()[0].Field)
	}
}

func TestValidatorDecimal(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"0", false},
		{"123456789012345678901234567890", false},
		{"", false},
		{"-1", true},
		{"12a", true},
		{"1.5", true},
	}
	for _, tc := range tests {
		v := New().Decimal("value", tc.value)
		if v.HasErrors() != tc.wantErr {
			t.Errorf("Decimal(%q) errors=%v, want %v", tc.value, v.Errors(), tc.wantErr)
		}
	}
}

func TestValidatorTimestamp(t *testing.T) {
	if New().Timestamp("ts", "2024-05-01T10:00:00.123456789Z").HasErrors() {
		t.Error("expected nano-precision timestamp to be valid")
	}
	if !New().Timestamp("ts", "yesterday").HasErrors() {
		t.Error("expected invalid timestamp to be rejected")
	}
}

func TestValidatorOneOf(t *testing.T) {
	allowed := []string{"increment", "decrement"}
	if New().OneOf("action", "increment", allowed).HasErrors() {
		t.Error("expected allowed value to pass")
	}
	if !New().OneOf("action", "explode", allowed).HasErrors() {
		t.Error("expected unknown value to fail")
	}
}

func TestValidatorAddress(t *testing.T) {
	if New().Address("owner", "0x5FbDB2315678afecb367f032d93F642f64180aa3").HasErrors() {
		t.Error("expected valid address to pass")
	}
	if !New().Address("owner", "0x1234").HasErrors() {
		t.Error("expected short address to fail")
	}
}

func TestValidatorValidate(t *testing.T) {
	if err := New().Validate(); err != nil {
		t.Errorf("expected nil for no errors, got %v", err)
	}

	v := New()
	v.Custom("goal", false, "must be positive")
	err := v.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", err.Code)
	}
	if !strings.Contains(err.Message, "goal: must be positive") {
		t.Errorf("unexpected message %q", err.Message)
	}
}

type sample struct {
	Name    string   `json:"name" validate:"required"`
	Owner   string   `json:"owner" validate:"omitempty,eth_addr"`
	Mirrors []string `json:"mirrors" validate:"min=1,dive,url"`
}

func TestStructValidateValid(t *testing.T) {
	s := sample{Name: "counter", Mirrors: []string{"https://example.org"}}
	if err := Validate(s); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStructValidateInvalid(t *testing.T) {
	s := sample{Owner: "0xnope", Mirrors: []string{"not a url"}}
	err := Validate(s)
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"name: is required", "owner: must be a 0x-prefixed", "mirrors[0]: must be a valid URL"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}

func TestStructValidateEmptySlice(t *testing.T) {
	err := Validate(sample{Name: "x"})
	if err == nil || !strings.Contains(err.Error(), "mirrors: must have at least 1 entries") {
		t.Errorf("expected min slice error, got %v", err)
	}
}
