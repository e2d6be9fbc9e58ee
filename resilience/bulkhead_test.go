package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBulkhead_SingleFlightRejectsSecondCaller(t *testing.T) {
	rejected := ""
	gate := NewBulkhead(BulkheadConfig{
		Name:          "executor",
		MaxConcurrent: 1,
		OnReject:      func(name string) { rejected = name },
	})

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- gate.Execute(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	if gate.InUse() != 1 || gate.Available() != 0 {
		t.Errorf("expected slot in use, got inUse=%d available=%d", gate.InUse(), gate.Available())
	}

	called := false
	err := gate.Execute(context.Background(), func() error { called = true; return nil })
	if !errors.Is(err, ErrBulkheadFull) {
		t.Errorf("expected ErrBulkheadFull, got %v", err)
	}
	if called {
		t.Error("second action must not run")
	}
	if rejected != "executor" {
		t.Errorf("expected OnReject with name, got %q", rejected)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first action failed: %v", err)
	}
	if gate.InUse() != 0 {
		t.Errorf("expected slot released, got %d in use", gate.InUse())
	}
}

func TestBulkhead_ReleasesSlotOnError(t *testing.T) {
	gate := NewBulkhead(BulkheadConfig{MaxConcurrent: 1})
	errTx := errors.New("tx failed")

	if err := gate.Execute(context.Background(), func() error { return errTx }); !errors.Is(err, errTx) {
		t.Fatalf("expected errTx, got %v", err)
	}
	if gate.Available() != 1 {
		t.Errorf("expected slot released after error, got %d available", gate.Available())
	}
}

func TestBulkhead_ReleasesSlotOnPanic(t *testing.T) {
	gate := NewBulkhead(BulkheadConfig{MaxConcurrent: 1})

	func() {
		defer func() { _ = recover() }()
		_ = gate.Execute(context.Background(), func() error { panic("boom") })
	}()

	if gate.Available() != 1 {
		t.Errorf("expected slot released after panic, got %d available", gate.Available())
	}
}

func TestBulkhead_WaitTimeout(t *testing.T) {
	gate := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: 10 * time.Millisecond})

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = gate.Execute(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started
	defer close(release)

	err := gate.Execute(context.Background(), func() error { return nil })
	if !errors.Is(err, ErrBulkheadTimeout) {
		t.Errorf("expected ErrBulkheadTimeout, got %v", err)
	}
}

func TestNewBulkhead_DefaultsToOneSlot(t *testing.T) {
	gate := NewBulkhead(BulkheadConfig{})
	if gate.Available() != 1 {
		t.Errorf("expected 1 slot by default, got %d", gate.Available())
	}
}
