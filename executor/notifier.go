package executor

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultNotificationTTL is how long a notification stays active.
const DefaultNotificationTTL = 5 * time.Second

// Level classifies a notification.
type Level string

const (
	LevelSuccess     Level = "success"
	LevelError       Level = "error"
	LevelAchievement Level = "achievement"
)

// Notification is a transient user-facing message.
type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Action    Kind      `json:"action,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// EventType says what happened to a notification.
type EventType string

const (
	EventPublished EventType = "published"
	EventDismissed EventType = "dismissed"
	EventExpired   EventType = "expired"
)

// Event is delivered to Notifier subscribers.
type Event struct {
	Type         EventType    `json:"type"`
	Notification Notification `json:"notification"`
}

type active struct {
	n     Notification
	timer *time.Timer
}

// Notifier holds the active notifications and fans out their lifecycle
// events. It is safe for concurrent use.
type Notifier struct {
	ttl time.Duration
	now func() time.Time

	mu     sync.Mutex
	active map[string]*active
	subs   map[int]func(Event)
	nextID int
}

// NewNotifier creates a Notifier whose notifications expire after ttl.
func NewNotifier(ttl time.Duration) *Notifier {
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}
	return &Notifier{
		ttl:    ttl,
		now:    time.Now,
		active: make(map[string]*active),
		subs:   make(map[int]func(Event)),
	}
}

// Publish activates a notification and schedules its expiry.
func (n *Notifier) Publish(level Level, action Kind, message string) Notification {
	now := n.now()
	note := Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Action:    action,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(n.ttl),
	}

	n.mu.Lock()
	a := &active{n: note}
	a.timer = time.AfterFunc(n.ttl, func() { n.remove(note.ID, EventExpired) })
	n.active[note.ID] = a
	subs := n.subscribers()
	n.mu.Unlock()

	deliver(subs, Event{Type: EventPublished, Notification: note})
	return note
}

// Dismiss removes a notification before it expires.
func (n *Notifier) Dismiss(id string) bool {
	return n.remove(id, EventDismissed)
}

// Clear dismisses every active notification.
func (n *Notifier) Clear() {
	for _, note := range n.Active() {
		n.remove(note.ID, EventDismissed)
	}
}

// Active returns the active notifications, oldest first.
func (n *Notifier) Active() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, 0, len(n.active))
	for _, a := range n.active {
		out = append(out, a.n)
	}
	slices.SortFunc(out, func(a, b Notification) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out
}

// Subscribe registers fn for every notification event and returns a
// function removing it. fn must not block.
func (n *Notifier) Subscribe(fn func(Event)) func() {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subs[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

func (n *Notifier) remove(id string, why EventType) bool {
	n.mu.Lock()
	a, ok := n.active[id]
	if ok {
		delete(n.active, id)
		a.timer.Stop()
	}
	subs := n.subscribers()
	n.mu.Unlock()

	if ok {
		deliver(subs, Event{Type: why, Notification: a.n})
	}
	return ok
}

// subscribers snapshots the subscriber list; n.mu must be held.
func (n *Notifier) subscribers() []func(Event) {
	out := make([]func(Event), 0, len(n.subs))
	for _, fn := range n.subs {
		out = append(out, fn)
	}
	return out
}

func deliver(subs []func(Event), e Event) {
	for _, fn := range subs {
		fn(e)
	}
}
