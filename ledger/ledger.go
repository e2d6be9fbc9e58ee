package ledger

import (
	"math/big"
	"sync"
	"time"
)

// Ledger is an append-only ordered history. It is safe for concurrent use.
type Ledger struct {
	mu      sync.RWMutex
	entries []Entry
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// Append adds e, clamping its timestamp to the last entry's when it is
// earlier, and returns the stored entry.
func (l *Ledger) Append(e Entry) Entry {
	e = e.clone()
	if e.Value == nil {
		e.Value = new(big.Int)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if n := len(l.entries); n > 0 && e.Timestamp.Before(l.entries[n-1].Timestamp) {
		e.Timestamp = l.entries[n-1].Timestamp
	}
	l.entries = append(l.entries, e)
	return e.clone()
}

// SeedInitial appends an initial entry with value only when the ledger is
// empty, and reports whether it did.
func (l *Ledger) SeedInitial(value *big.Int, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) > 0 {
		return false
	}
	e := Entry{Value: new(big.Int), Action: ActionInitial, Timestamp: now}
	if value != nil {
		e.Value.Set(value)
	}
	l.entries = append(l.entries, e)
	return true
}

// Entries returns a copy of the history, oldest first.
func (l *Ledger) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.clone()
	}
	return out
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Last returns the newest entry.
func (l *Ledger) Last() (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1].clone(), true
}

// replace swaps the whole history.
func (l *Ledger) replace(entries []Entry) {
	l.mu.Lock()
	l.entries = entries
	l.mu.Unlock()
}
