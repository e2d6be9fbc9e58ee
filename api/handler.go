package api

import (
	"context"
	"math/big"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/chaincounter/chain"
	"github.com/kbukum/chaincounter/executor"
	"github.com/kbukum/chaincounter/logger"
	"github.com/kbukum/chaincounter/session"
	"github.com/kbukum/chaincounter/sse"
)

// EventsPattern matches every event stream client.
const EventsPattern = "events:*"

// DefaultActionTimeout bounds one action from request to confirmation.
const DefaultActionTimeout = 5 * time.Minute

// Sessions is the session surface the HTTP bridge drives.
type Sessions interface {
	Connect(ctx context.Context) (*session.Session, error)
	Disconnect()
	Current() *session.Session
	ReadCounter(ctx context.Context) (*big.Int, error)
	ReadOwner(ctx context.Context) (chain.Address, error)
	ReadSignerAddress(ctx context.Context) (chain.Address, error)
	ReadNetworkInfo(ctx context.Context) (session.NetworkInfo, error)
	ReadGasPrice(ctx context.Context) (string, error)
	Refresh(ctx context.Context) session.Status
	Status() session.Status
}

// Handler serves the counter API.
type Handler struct {
	sessions Sessions
	exec     *executor.Executor
	hub      *sse.Hub
	log      *logger.Logger
	now      func() time.Time

	actionTimeout time.Duration
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(h *Handler) { h.log = log }
}

// WithActionTimeout bounds each action, including transaction confirmation.
func WithActionTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.actionTimeout = d
		}
	}
}

// WithClock replaces time.Now for ledger statistics.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// New creates a Handler. hub may be nil, which disables GET /events.
func New(sessions Sessions, exec *executor.Executor, hub *sse.Hub, opts ...Option) *Handler {
	h := &Handler{
		sessions: sessions,
		exec:     exec,
		hub:      hub,
		log:      logger.Get("api"),
		now:      time.Now,

		actionTimeout: DefaultActionTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/session", h.connect)
	r.DELETE("/session", h.disconnect)
	r.GET("/session", h.currentSession)

	r.GET("/counter", h.counter)
	r.GET("/owner", h.owner)
	r.GET("/signer", h.signer)
	r.GET("/network", h.network)
	r.GET("/gas-price", h.gasPrice)
	r.GET("/status", h.status)

	r.POST("/actions/:kind", h.action)
	r.GET("/executor", h.executorState)

	r.PUT("/goal", h.setGoal)
	r.DELETE("/goal", h.clearGoal)
	r.GET("/goal", h.goal)

	r.GET("/ledger", h.entries)
	r.GET("/ledger/stats", h.stats)
	r.GET("/ledger/export", h.export)
	r.POST("/ledger/import", h.importLedger)

	if h.hub != nil {
		r.GET("/events", h.events)
	}
}

// ForwardNotifications publishes every notifier event to the event stream
// until the returned function is called.
func (h *Handler) ForwardNotifications() func() {
	if h.hub == nil {
		return func() {}
	}
	return h.exec.Notifier().Subscribe(func(e executor.Event) {
		h.publish(sse.EventTypeNotification, e)
	})
}

func (h *Handler) publish(eventType string, v any) {
	if h.hub == nil {
		return
	}
	if err := sse.PublishJSON(h.hub, EventsPattern, eventType, v); err != nil {
		h.log.Warn("event not published", logger.Fields("event", eventType, logger.FieldError, err.Error()))
	}
}
