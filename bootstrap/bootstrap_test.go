package bootstrap

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/chaincounter/logger"
	"github.com/kbukum/chaincounter/observability"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(ev string) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.Join(r.events, ",")
}

func (r *recorder) hook(name string, err error) Hook {
	return func(context.Context) error {
		r.add(name)
		return err
	}
}

type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	status   observability.HealthStatus
	rec      *recorder
}

func (m *mockComponent) Name() string { return m.name }

func (m *mockComponent) Start(context.Context) error {
	m.rec.add("start:" + m.name)
	return m.startErr
}

func (m *mockComponent) Stop(context.Context) error {
	m.rec.add("stop:" + m.name)
	return m.stopErr
}

func (m *mockComponent) Health(context.Context) observability.Health {
	status := m.status
	if status == "" {
		status = observability.HealthStatusUp
	}
	return observability.Health{Name: m.name, Status: status, Message: "msg-" + m.name}
}

func newTestApp(t *testing.T, rec *recorder, comps ...*mockComponent) *App {
	t.Helper()
	app := New("test-svc", "1.0.0", WithLogger(logger.Nop()), WithGracefulTimeout(time.Second))
	for _, c := range comps {
		c.rec = rec
		if err := app.RegisterComponent(c); err != nil {
			t.Fatalf("RegisterComponent(%s) failed: %v", c.name, err)
		}
	}
	return app
}

func TestNew(t *testing.T) {
	app := New("test-svc", "1.0.0")
	if app.Name != "test-svc" || app.Version != "1.0.0" {
		t.Errorf("unexpected name/version %q/%q", app.Name, app.Version)
	}
	if app.Components == nil || app.Logger == nil {
		t.Fatal("expected registry and logger")
	}
	if app.gracefulTimeout != defaultGracefulTimeout {
		t.Errorf("expected default graceful timeout, got %v", app.gracefulTimeout)
	}

	app = New("x", "y", WithGracefulTimeout(3*time.Second), WithGracefulTimeout(0), WithLogger(nil))
	if app.gracefulTimeout != 3*time.Second {
		t.Errorf("expected non-positive timeout to be ignored, got %v", app.gracefulTimeout)
	}
	if app.Logger == nil {
		t.Error("nil logger option must keep the default")
	}
}

func TestRunTaskLifecycleOrder(t *testing.T) {
	rec := &recorder{}
	app := newTestApp(t, rec, &mockComponent{name: "host"}, &mockComponent{name: "server"})
	app.OnStart(rec.hook("hook:start", nil))
	app.OnReady(rec.hook("hook:ready", nil))
	app.OnStop(rec.hook("hook:stop", nil))

	err := app.RunTask(context.Background(), func(context.Context) error {
		rec.add("task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask() error = %v", err)
	}

	want := "start:host,start:server,hook:start,hook:ready,task,hook:stop,stop:server,stop:host"
	if got := rec.String(); got != want {
		t.Errorf("lifecycle order\n got: %s\nwant: %s", got, want)
	}
}

func TestRunTaskErrors(t *testing.T) {
	taskErr := errors.New("task failed")
	stopErr := errors.New("stop failed")

	tests := []struct {
		name    string
		taskErr error
		stopErr error
		want    error
	}{
		{"success", nil, nil, nil},
		{"task error", taskErr, nil, taskErr},
		{"task error wins over stop error", taskErr, stopErr, taskErr},
		{"stop error surfaces", nil, stopErr, stopErr},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := &recorder{}
			app := newTestApp(t, rec, &mockComponent{name: "c", stopErr: tc.stopErr})
			err := app.RunTask(context.Background(), func(context.Context) error { return tc.taskErr })
			if tc.want == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestStartFailureSkipsTask(t *testing.T) {
	rec := &recorder{}
	app := newTestApp(t, rec,
		&mockComponent{name: "a"},
		&mockComponent{name: "b", startErr: errors.New("bind failed")},
	)
	app.OnStop(rec.hook("hook:stop", nil))

	ran := false
	err := app.RunTask(context.Background(), func(context.Context) error {
		ran = true
		return nil
	})
	if err == nil || !strings.Contains(err.Error(), "bind failed") {
		t.Fatalf("expected start error, got %v", err)
	}
	if ran {
		t.Error("task must not run after a failed start")
	}
	if got := rec.String(); got != "start:a,start:b,stop:a,hook:stop" {
		t.Errorf("unexpected events %s", got)
	}
}

func TestHookFailureStopsComponents(t *testing.T) {
	rec := &recorder{}
	app := newTestApp(t, rec, &mockComponent{name: "a"})
	app.OnReady(rec.hook("hook:ready", errors.New("connect refused")))

	err := app.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "onReady hook") {
		t.Fatalf("expected onReady error, got %v", err)
	}
	if got := rec.String(); got != "start:a,hook:ready,stop:a" {
		t.Errorf("unexpected events %s", got)
	}
}

func TestReadyCheck(t *testing.T) {
	tests := []struct {
		name    string
		status  observability.HealthStatus
		wantErr bool
	}{
		{"up", observability.HealthStatusUp, false},
		{"degraded is still ready", observability.HealthStatusDegraded, false},
		{"down", observability.HealthStatusDown, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t, &recorder{}, &mockComponent{name: "rpc-host", status: tc.status})
			err := app.ReadyCheck(context.Background())
			if (err != nil) != tc.wantErr {
				t.Fatalf("ReadyCheck() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), "rpc-host (msg-rpc-host)") {
				t.Errorf("expected component name and message in %q", err)
			}
		})
	}
}

func TestRunReturnsOnContextCancel(t *testing.T) {
	rec := &recorder{}
	app := newTestApp(t, rec, &mockComponent{name: "server"})
	ready := make(chan struct{})
	app.OnReady(func(context.Context) error {
		close(ready)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	<-ready
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if got := rec.String(); got != "start:server,stop:server" {
		t.Errorf("unexpected events %s", got)
	}
}
