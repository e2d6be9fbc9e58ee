package ledger

import (
	"math/big"
	"time"

	"github.com/kbukum/chaincounter/errors"
)

// Stats are derived from the history at the time of the call.
type Stats struct {
	Counts        map[Action]int `json:"counts"`
	Mutating      int            `json:"mutating"`
	Days          int            `json:"days"`
	AveragePerDay float64        `json:"average_per_day"`
}

// Stats counts entries per action and averages mutating entries over the
// calendar days (UTC) elapsed since the first entry, with a divisor of at
// least one.
func (l *Ledger) Stats(now time.Time) Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Stats{Counts: make(map[Action]int, len(Actions)), Days: 1}
	for _, a := range Actions {
		s.Counts[a] = 0
	}
	for _, e := range l.entries {
		s.Counts[e.Action]++
		if e.Action.Mutating() {
			s.Mutating++
		}
	}
	if len(l.entries) > 0 {
		if days := calendarDays(l.entries[0].Timestamp, now); days > 1 {
			s.Days = days
		}
	}
	s.AveragePerDay = float64(s.Mutating) / float64(s.Days)
	return s
}

func calendarDays(from, to time.Time) int {
	y1, m1, d1 := from.UTC().Date()
	y2, m2, d2 := to.UTC().Date()
	start := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	end := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

// Goal is an optional local target for the counter.
type Goal struct {
	target *big.Int
}

// NewGoal returns a goal for target, which must be positive.
func NewGoal(target *big.Int) (Goal, error) {
	if target == nil || target.Sign() <= 0 {
		return Goal{}, errors.InvalidInput("target", "goal must be a positive integer")
	}
	return Goal{target: new(big.Int).Set(target)}, nil
}

// ParseGoal parses a decimal goal.
func ParseGoal(s string) (Goal, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Goal{}, errors.InvalidInput("target", "goal must be a decimal integer")
	}
	return NewGoal(v)
}

// IsSet reports whether the goal is present.
func (g Goal) IsSet() bool { return g.target != nil }

// Target returns a copy of the target, or nil when absent.
func (g Goal) Target() *big.Int {
	if g.target == nil {
		return nil
	}
	return new(big.Int).Set(g.target)
}

// Progress returns min(100, round(100*current/goal)) and whether current
// has reached the goal. ok is false when the goal is absent.
func Progress(current *big.Int, goal Goal) (percent int, reached bool, ok bool) {
	if !goal.IsSet() {
		return 0, false, false
	}
	if current == nil || current.Sign() < 0 {
		current = new(big.Int)
	}
	reached = current.Cmp(goal.target) >= 0
	if reached {
		return 100, true, true
	}

	// round half up: (200*current + goal) / (2*goal)
	num := new(big.Int).Mul(current, big.NewInt(200))
	num.Add(num, goal.target)
	den := new(big.Int).Mul(goal.target, big.NewInt(2))
	p := num.Quo(num, den)
	if p.Cmp(big.NewInt(100)) > 0 {
		return 100, false, true
	}
	return int(p.Int64()), false, true
}
