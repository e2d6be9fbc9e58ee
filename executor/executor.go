package executor

import (
	"context"
	stderrors "errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/chaincounter/errors"
	"github.com/kbukum/chaincounter/ledger"
	"github.com/kbukum/chaincounter/logger"
	"github.com/kbukum/chaincounter/observability"
	"github.com/kbukum/chaincounter/resilience"
)

// Kind is a mutating counter action.
type Kind string

const (
	KindIncrement Kind = Kind(ledger.ActionIncrement)
	KindDecrement Kind = Kind(ledger.ActionDecrement)
	KindReset     Kind = Kind(ledger.ActionReset)
)

// ParseKind returns the Kind named s.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindIncrement, KindDecrement, KindReset:
		return k, nil
	}
	return "", errors.InvalidInput("kind", fmt.Sprintf("unknown action %q", s))
}

// Session is the part of the session manager the executor drives.
type Session interface {
	CurrentID() string
	Counter() *big.Int
	ReadCounter(ctx context.Context) (*big.Int, error)
	Increment(ctx context.Context) (string, error)
	Decrement(ctx context.Context) (string, error)
	Reset(ctx context.Context) (string, error)
}

// State is Idle (Busy false) or Busy with one action.
type State struct {
	Busy  bool      `json:"busy"`
	Kind  Kind      `json:"kind,omitempty"`
	Since time.Time `json:"since,omitzero"`
}

// Outcome is the result of one action.
type Outcome struct {
	Action    Kind             `json:"action"`
	Succeeded bool             `json:"succeeded"`
	Discarded bool             `json:"discarded,omitempty"`
	Value     *big.Int         `json:"value,omitempty"`
	TxHash    string           `json:"tx_hash,omitempty"`
	Code      errors.ErrorCode `json:"code,omitempty"`
	Message   string           `json:"message,omitempty"`
}

// GoalProgress is the goal view derived from the cached counter.
type GoalProgress struct {
	Set     bool     `json:"set"`
	Target  *big.Int `json:"target,omitempty"`
	Current *big.Int `json:"current,omitempty"`
	Percent int      `json:"percent"`
	Reached bool     `json:"reached"`
}

// Executor serializes counter actions.
type Executor struct {
	session  Session
	ledger   *ledger.Ledger
	notifier *Notifier
	metrics  *observability.Metrics
	log      *logger.Logger
	now      func() time.Time
	gate     *resilience.Bulkhead

	mu    sync.Mutex
	state State
	runs  uint64
	goal  ledger.Goal
}

// Option configures an Executor.
type Option func(*Executor)

// WithNotifier replaces the default notifier.
func WithNotifier(n *Notifier) Option {
	return func(e *Executor) { e.notifier = n }
}

// WithMetrics records every outcome.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(e *Executor) { e.log = log }
}

// WithClock replaces time.Now for ledger timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

// New creates an idle Executor.
func New(session Session, l *ledger.Ledger, opts ...Option) *Executor {
	e := &Executor{
		session: session,
		ledger:  l,
		log:     logger.Get("executor"),
		now:     time.Now,
		gate:    resilience.NewBulkhead(resilience.BulkheadConfig{Name: "executor", MaxConcurrent: 1}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.notifier == nil {
		e.notifier = NewNotifier(DefaultNotificationTTL)
	}
	return e
}

// Notifier returns the executor's notifier.
func (e *Executor) Notifier() *Notifier { return e.notifier }

// Ledger returns the executor's ledger.
func (e *Executor) Ledger() *ledger.Ledger { return e.ledger }

// State returns the current state.
func (e *Executor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Increment runs KindIncrement.
func (e *Executor) Increment(ctx context.Context) (Outcome, error) { return e.Run(ctx, KindIncrement) }

// Decrement runs KindDecrement.
func (e *Executor) Decrement(ctx context.Context) (Outcome, error) { return e.Run(ctx, KindDecrement) }

// Reset runs KindReset.
func (e *Executor) Reset(ctx context.Context) (Outcome, error) { return e.Run(ctx, KindReset) }

// Run executes kind if the executor is Idle. The returned error is
// ActionInProgress when Busy, and otherwise the action's failure, which is
// also reflected in the Outcome.
func (e *Executor) Run(ctx context.Context, kind Kind) (Outcome, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return Outcome{}, err
	}

	var (
		out    Outcome
		runErr error
		run    uint64
	)
	// e.mu is held from admission until the state names the new action, so
	// a rejected caller always sees which action is running.
	e.mu.Lock()
	err := e.gate.Execute(ctx, func() error {
		e.runs++
		run = e.runs
		e.state = State{Busy: true, Kind: kind, Since: e.now()}
		e.mu.Unlock()
		out, runErr = e.run(ctx, kind)
		return nil
	})
	if err != nil {
		running := e.state.Kind
		e.mu.Unlock()
		if stderrors.Is(err, resilience.ErrBulkheadFull) {
			e.log.WithContext(ctx).Debug("action rejected, executor busy", logger.Fields(
				logger.FieldAction, string(kind),
				"running", string(running),
			))
			return Outcome{}, errors.ActionInProgress(string(running))
		}
		return Outcome{}, err
	}

	e.mu.Lock()
	if e.runs == run {
		e.state = State{}
	}
	e.mu.Unlock()
	return out, runErr
}

func (e *Executor) run(ctx context.Context, kind Kind) (out Outcome, err error) {
	sessionID := e.session.CurrentID()

	e.notifier.Clear()

	ctx, op := observability.StartOperation(ctx, observability.SpanAction, string(kind),
		attribute.String(observability.AttrAction, string(kind)))
	log := e.log.WithContext(ctx).WithFields(logger.Fields(
		logger.FieldAction, string(kind),
		logger.FieldSessionID, sessionID,
	))

	defer func() {
		if r := recover(); r != nil {
			err = errors.Internal(fmt.Errorf("action %s panicked: %v", kind, r))
			log.Error("action panicked", logger.Fields(logger.FieldError, err.Error()))
			out = e.fail(kind, err)
		}
		status := "ok"
		switch {
		case out.Discarded:
			status = "discarded"
		case err != nil:
			status = "error"
			e.metrics.RecordError(ctx, string(errors.CodeOf(err)), "executor")
		}
		duration := op.End(status, err)
		e.metrics.RecordAction(ctx, string(kind), status, duration)
	}()

	if sessionID == "" {
		err = errors.NotConnected()
		return e.fail(kind, err), err
	}

	hash, err := e.invoke(ctx, kind)
	var value *big.Int
	if err == nil {
		op.SetAttributes(attribute.String(observability.AttrTxHash, hash))
		value, err = e.session.ReadCounter(ctx)
	}

	if current := e.session.CurrentID(); current != sessionID {
		log.Info("session changed during action, result discarded", logger.Fields("current_session", current))
		return Outcome{Action: kind, Discarded: true, TxHash: hash}, nil
	}

	if err != nil {
		log.Warn("action failed", logger.Fields(
			logger.FieldCode, string(errors.CodeOf(err)),
			logger.FieldError, err.Error(),
			logger.FieldTxHash, hash,
		))
		out = e.fail(kind, err)
		out.TxHash = hash
		return out, err
	}

	entry := e.ledger.Append(ledger.Entry{
		Value:     value,
		Action:    ledger.Action(kind),
		Timestamp: e.now(),
		TxHash:    hash,
	})
	e.notifier.Publish(LevelSuccess, kind, successMessage(kind, value))
	log.Info("action succeeded", logger.Fields(logger.FieldTxHash, hash, logger.FieldValue, value.String()))

	if p := e.progress(value); p.Set && p.Reached {
		e.notifier.Publish(LevelAchievement, kind, fmt.Sprintf("Goal of %s reached!", p.Target))
	}

	return Outcome{Action: kind, Succeeded: true, Value: entry.Value, TxHash: hash}, nil
}

func (e *Executor) invoke(ctx context.Context, kind Kind) (string, error) {
	switch kind {
	case KindIncrement:
		return e.session.Increment(ctx)
	case KindDecrement:
		return e.session.Decrement(ctx)
	default:
		return e.session.Reset(ctx)
	}
}

func (e *Executor) fail(kind Kind, err error) Outcome {
	msg := errors.MessageOf(err)
	e.notifier.Publish(LevelError, kind, msg)
	return Outcome{Action: kind, Code: errors.CodeOf(err), Message: msg}
}

func successMessage(kind Kind, value *big.Int) string {
	switch kind {
	case KindIncrement:
		return fmt.Sprintf("Counter incremented to %s.", value)
	case KindDecrement:
		return fmt.Sprintf("Counter decremented to %s.", value)
	default:
		return fmt.Sprintf("Counter reset to %s.", value)
	}
}

// Seed appends the initial ledger entry with a fresh counter read when the
// ledger is empty. It is called after the first successful connect.
func (e *Executor) Seed(ctx context.Context) error {
	if e.ledger.Len() > 0 {
		return nil
	}
	v, err := e.session.ReadCounter(ctx)
	if err != nil {
		return err
	}
	if e.ledger.SeedInitial(v, e.now()) {
		e.log.WithContext(ctx).Info("ledger seeded", logger.Fields(logger.FieldValue, v.String()))
	}
	return nil
}

// SetGoal sets the goal.
func (e *Executor) SetGoal(g ledger.Goal) {
	e.mu.Lock()
	e.goal = g
	e.mu.Unlock()
}

// ClearGoal removes the goal.
func (e *Executor) ClearGoal() {
	e.SetGoal(ledger.Goal{})
}

// GoalProgress compares the goal with the cached counter. It is
// recomputed on every call.
func (e *Executor) GoalProgress() GoalProgress {
	return e.progress(e.session.Counter())
}

func (e *Executor) progress(current *big.Int) GoalProgress {
	e.mu.Lock()
	goal := e.goal
	e.mu.Unlock()

	percent, reached, ok := ledger.Progress(current, goal)
	if !ok {
		return GoalProgress{}
	}
	return GoalProgress{
		Set:     true,
		Target:  goal.Target(),
		Current: current,
		Percent: percent,
		Reached: reached,
	}
}
