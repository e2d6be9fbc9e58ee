package component

import (
	"context"
	"sync"
	"time"

	"github.com/kbukum/chaincounter/logger"
	"github.com/kbukum/chaincounter/observability"
)

// Ticker is a component that runs fn every interval until stopped.
// The first run happens immediately on Start. Errors from fn are logged
// and reported through Health; they never stop the loop.
type Ticker struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context) error
	log      *logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	lastErr error
	lastRun time.Time
}

// NewTicker creates a periodic component.
func NewTicker(name string, interval time.Duration, fn func(ctx context.Context) error) *Ticker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Ticker{
		name:     name,
		interval: interval,
		fn:       fn,
		log:      logger.Get(name),
	}
}

// Name returns the component name.
func (t *Ticker) Name() string { return t.name }

// Start launches the loop.
func (t *Ticker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return nil
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	t.cancel = cancel
	t.done = make(chan struct{})
	go t.loop(loopCtx, t.done)
	return nil
}

func (t *Ticker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.runOnce(ctx)
		}
	}
}

func (t *Ticker) runOnce(ctx context.Context) {
	err := t.fn(ctx)
	if err != nil && ctx.Err() == nil {
		t.log.Warn("periodic run failed", logger.ErrorFields(t.name, err))
	}
	t.mu.Lock()
	t.lastErr = err
	t.lastRun = time.Now()
	t.mu.Unlock()
}

// Stop cancels the loop and waits for the current run to finish or ctx to expire.
func (t *Ticker) Stop(ctx context.Context) error {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Health reports degraded after a failed run.
func (t *Ticker) Health(context.Context) observability.Health {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := observability.Health{Name: t.name, Status: observability.HealthStatusUp}
	switch {
	case t.cancel == nil:
		h.Status = observability.HealthStatusDown
		h.Message = "not running"
	case t.lastErr != nil:
		h.Status = observability.HealthStatusDegraded
		h.Message = t.lastErr.Error()
	}
	if !t.lastRun.IsZero() {
		h.Details = map[string]string{"last_run": t.lastRun.UTC().Format(time.RFC3339)}
	}
	return h
}
