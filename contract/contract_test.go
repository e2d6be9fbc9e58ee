package contract

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/kbukum/chaincounter/chain"
	"github.com/kbukum/chaincounter/errors"
)

const counterAddr = chain.Address("0x5FbDB2315678afecb367f032d93F642f64180aa3")

func TestSelectorKnownValues(t *testing.T) {
	tests := []struct {
		signature string
		want      string
	}{
		{"transfer(address,uint256)", "a9059cbb"},
		{"balanceOf(address)", "70a08231"},
		{"owner()", "8da5cb5b"},
		{"increment()", "d09de08a"},
	}
	for _, tc := range tests {
		t.Run(tc.signature, func(t *testing.T) {
			sel := Selector(tc.signature)
			if got := hex.EncodeToString(sel[:]); got != tc.want {
				t.Errorf("Selector(%q) = %s, want %s", tc.signature, got, tc.want)
			}
		})
	}
}

func TestDefaultABIHasCounterFunctions(t *testing.T) {
	a := DefaultABI()
	if a.Len() != 5 {
		t.Errorf("expected 5 functions, got %d", a.Len())
	}
	f, ok := a.Function("getCount")
	if !ok {
		t.Fatal("getCount missing from bundled abi")
	}
	if !f.ReadOnly() {
		t.Error("getCount should be read-only")
	}
	if f.Signature() != "getCount()" {
		t.Errorf("unexpected signature %q", f.Signature())
	}
}

func TestBindSucceeds(t *testing.T) {
	h, err := Bind(counterAddr, DefaultABI(), DefaultMethodNames())
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	if h.Address() != counterAddr {
		t.Errorf("unexpected address %s", h.Address())
	}
	if got := h.CallData(OpOwner); got != "0x8da5cb5b" {
		t.Errorf("expected owner selector, got %s", got)
	}
}

func TestBindMissingMethod(t *testing.T) {
	abi, err := ParseABI([]byte(`[
		{"type":"function","name":"getCount","inputs":[],"outputs":[{"type":"uint256"}],"stateMutability":"view"},
		{"type":"function","name":"owner","inputs":[],"outputs":[{"type":"address"}],"stateMutability":"view"},
		{"type":"function","name":"increment","inputs":[],"outputs":[],"stateMutability":"nonpayable"},
		{"type":"function","name":"decrement","inputs":[],"outputs":[],"stateMutability":"nonpayable"}
	]`))
	if err != nil {
		t.Fatal(err)
	}

	_, err = Bind(counterAddr, abi, DefaultMethodNames())
	if !errors.HasCode(err, errors.ErrCodeContractMethodMissing) {
		t.Fatalf("expected CONTRACT_METHOD_MISSING, got %v", err)
	}
	appErr, _ := errors.AsAppError(err)
	if appErr.Details["method"] != "reset" {
		t.Errorf("expected method detail 'reset', got %v", appErr.Details["method"])
	}
}

func TestBindRejectsFunctionWithInputs(t *testing.T) {
	abi, _ := ParseABI([]byte(`[
		{"type":"function","name":"getCount","inputs":[{"name":"slot","type":"uint256"}],"outputs":[],"stateMutability":"view"}
	]`))
	_, err := Bind(counterAddr, abi, DefaultMethodNames())
	if !errors.HasCode(err, errors.ErrCodeContractMethodMissing) {
		t.Fatalf("expected CONTRACT_METHOD_MISSING, got %v", err)
	}
}

func TestParseABIOverloadKeepsFirstDeclaration(t *testing.T) {
	abi, err := ParseABI([]byte(`[
		{"type":"function","name":"reset","inputs":[],"outputs":[],"stateMutability":"nonpayable"},
		{"type":"function","name":"reset","inputs":[{"name":"to","type":"uint256"}],"outputs":[],"stateMutability":"nonpayable"}
	]`))
	if err != nil {
		t.Fatal(err)
	}
	f, ok := abi.Function("reset")
	if !ok || f.Signature() != "reset()" {
		t.Fatalf("expected reset() to keep its name, got %q", f.Signature())
	}
	if sel := f.Selector(); sel != Selector("reset()") {
		t.Errorf("selector mismatch %x", sel)
	}
}

func TestBindCustomNames(t *testing.T) {
	abi, _ := ParseABI([]byte(`[
		{"type":"function","name":"value","inputs":[],"outputs":[{"type":"uint256"}],"stateMutability":"view"},
		{"type":"function","name":"admin","inputs":[],"outputs":[{"type":"address"}],"stateMutability":"view"},
		{"type":"function","name":"up","inputs":[],"outputs":[],"stateMutability":"nonpayable"},
		{"type":"function","name":"down","inputs":[],"outputs":[],"stateMutability":"nonpayable"},
		{"type":"function","name":"clear","inputs":[],"outputs":[],"stateMutability":"nonpayable"}
	]`))
	names := MethodNames{GetCount: "value", Owner: "admin", Increment: "up", Decrement: "down", Reset: "clear"}

	h, err := Bind(counterAddr, abi, names)
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	if h.Function(OpReset).Name != "clear" {
		t.Errorf("expected reset bound to clear, got %s", h.Function(OpReset).Name)
	}
}

func TestMethodNamesApplyDefaults(t *testing.T) {
	m := MethodNames{Increment: "up"}
	m.ApplyDefaults()
	if m.Increment != "up" || m.GetCount != "getCount" || m.Reset != "reset" {
		t.Errorf("unexpected names after defaults: %+v", m)
	}
}

func TestDecodeUint256(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"seven", "0x" + strings.Repeat("0", 63) + "7", "7", false},
		{"large", "0x" + strings.Repeat("0", 48) + "ffffffffffffffff", "18446744073709551615", false},
		{"short", "0x01", "", true},
		{"empty", "0x", "", true},
		{"no prefix", strings.Repeat("0", 64), "", true},
		{"bad hex", "0x" + strings.Repeat("z", 64), "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeUint256(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("DecodeUint256 error = %v, wantErr %v", err, tc.wantErr)
			}
			if !tc.wantErr && got.String() != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestDecodeAddress(t *testing.T) {
	word := "0x000000000000000000000000f39fd6e51aad88f6f4ce6ab8827279cfffb92266"
	got, err := DecodeAddress(word)
	if err != nil {
		t.Fatalf("DecodeAddress failed: %v", err)
	}
	if got != "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266" {
		t.Errorf("expected checksummed address, got %s", got)
	}
}
