package ledger

import (
	"math/big"
	"time"
)

// Action is the provenance of an entry.
type Action string

const (
	ActionInitial   Action = "initial"
	ActionIncrement Action = "increment"
	ActionDecrement Action = "decrement"
	ActionReset     Action = "reset"
)

// Actions lists every action kind.
var Actions = []Action{ActionInitial, ActionIncrement, ActionDecrement, ActionReset}

// Mutating reports whether the action changed the counter on-chain.
func (a Action) Mutating() bool {
	return a == ActionIncrement || a == ActionDecrement || a == ActionReset
}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	return a == ActionInitial || a.Mutating()
}

// Entry is one recorded counter value.
type Entry struct {
	Value     *big.Int  `json:"value"`
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	TxHash    string    `json:"tx_hash,omitempty"`
}

func (e Entry) clone() Entry {
	if e.Value != nil {
		e.Value = new(big.Int).Set(e.Value)
	}
	return e
}
