package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kbukum/chaincounter/component"
	"github.com/kbukum/chaincounter/logger"
	"github.com/kbukum/chaincounter/observability"
)

const defaultGracefulTimeout = 15 * time.Second

// App owns the component registry and the lifecycle hooks of one process.
type App struct {
	Name       string
	Version    string
	Components *component.Registry
	Logger     *logger.Logger

	gracefulTimeout time.Duration
	signals         []os.Signal

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// New creates an application with an empty registry.
func New(name, version string, opts ...Option) *App {
	a := &App{
		Name:            name,
		Version:         version,
		Components:      component.NewRegistry(),
		Logger:          logger.Get("bootstrap"),
		gracefulTimeout: defaultGracefulTimeout,
		signals:         []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RegisterComponent adds a component to the registry.
func (a *App) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// ReadyCheck fails when any registered component reports down.
func (a *App) ReadyCheck(ctx context.Context) error {
	var down []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status != observability.HealthStatusDown {
			continue
		}
		detail := h.Name
		if h.Message != "" {
			detail += " (" + h.Message + ")"
		}
		down = append(down, detail)
	}
	if len(down) > 0 {
		return fmt.Errorf("components down: %s", strings.Join(down, ", "))
	}
	return nil
}

// Run starts the application and blocks until a shutdown signal arrives or
// ctx is canceled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		_ = a.stop()
		return err
	}

	a.Logger.Info("application ready")
	a.WaitForSignal(ctx)

	return a.stop()
}

// RunTask starts the application, runs task, and shuts down when the task
// returns. A shutdown signal cancels the task's context. The task error
// takes precedence over shutdown errors.
func (a *App) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		_ = a.stop()
		return err
	}

	taskCtx, cancel := signal.NotifyContext(ctx, a.signals...)
	taskErr := task(taskCtx)
	cancel()

	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

func (a *App) startup(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("starting application", logger.Fields("name", a.Name, "version", a.Version))

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("start components: %w", err)
	}
	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook: %w", err)
	}
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
	}
	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook: %w", err)
	}

	a.logSummary(ctx, time.Since(start))
	return nil
}

// logSummary logs one line per component with its current health.
func (a *App) logSummary(ctx context.Context, took time.Duration) {
	for _, h := range a.Components.HealthAll(ctx) {
		fields := logger.Fields(logger.FieldComponent, h.Name, "status", string(h.Status))
		for k, v := range h.Details {
			fields[k] = v
		}
		if h.Message != "" {
			fields["message"] = h.Message
		}
		a.Logger.Debug("component", fields)
	}
	a.Logger.Info("startup complete", logger.Fields(
		"components", len(a.Components.All()),
		logger.FieldDuration, took.Milliseconds(),
	))
}

// WaitForSignal blocks until a shutdown signal or ctx cancellation.
func (a *App) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, a.signals...)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("received shutdown signal", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("context canceled, shutting down")
		return nil
	}
}

// Shutdown stops the application. Use when managing the lifecycle manually.
func (a *App) Shutdown() error {
	return a.stop()
}

func (a *App) stop() error {
	a.Logger.Info("shutting down", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var errs []error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("onStop hook error", logger.Fields(logger.FieldError, err.Error()))
		errs = append(errs, err)
	}
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("shutdown completed with errors", logger.Fields(logger.FieldError, err.Error()))
		errs = append(errs, err)
	}

	a.Logger.Info("shutdown complete")
	return errors.Join(errs...)
}
