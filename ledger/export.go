package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/kbukum/chaincounter/errors"
	"github.com/kbukum/chaincounter/validation"
)

// record is the exported form of an Entry.
type record struct {
	Value     string `json:"value" validate:"required,numeric"`
	Action    string `json:"action" validate:"required,oneof=initial increment decrement reset"`
	Timestamp string `json:"timestamp" validate:"required"`
	TxHash    string `json:"txHash,omitempty" validate:"omitempty,hexadecimal"`
}

// Export writes the history as a JSON array.
func (l *Ledger) Export(w io.Writer) error {
	entries := l.Entries()
	records := make([]record, len(entries))
	for i, e := range entries {
		records[i] = record{
			Value:     e.Value.String(),
			Action:    string(e.Action),
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339Nano),
			TxHash:    e.TxHash,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// Import replaces the history with the records read from r. On any
// malformed record the ledger is left untouched and ImportMalformed is
// returned.
func (l *Ledger) Import(r io.Reader) (int, error) {
	dec := json.NewDecoder(r)
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return 0, errors.ImportMalformed("expected a JSON array of entries").WithCause(err)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
		return 0, errors.ImportMalformed("expected a JSON array of entries")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return 0, errors.ImportMalformed("unexpected content after the entries array")
	}
	var records []record
	if err := json.Unmarshal(raw, &records); err != nil {
		return 0, errors.ImportMalformed("expected a JSON array of entries").WithCause(err)
	}

	entries := make([]Entry, 0, len(records))
	for i, rec := range records {
		e, err := rec.entry()
		if err != nil {
			return 0, errors.ImportMalformed(fmt.Sprintf("entry %d: %s", i, errors.MessageOf(err))).WithCause(err)
		}
		if i > 0 && e.Timestamp.Before(entries[i-1].Timestamp) {
			return 0, errors.ImportMalformed(fmt.Sprintf("entry %d: timestamps are not in chronological order", i))
		}
		entries = append(entries, e)
	}

	l.replace(entries)
	return len(entries), nil
}

func (rec record) entry() (Entry, error) {
	if err := validation.Validate(rec); err != nil {
		return Entry{}, err
	}
	v, ok := new(big.Int).SetString(rec.Value, 10)
	if !ok || v.Sign() < 0 {
		return Entry{}, fmt.Errorf("value %q is not a non-negative integer", rec.Value)
	}
	ts, err := time.Parse(time.RFC3339Nano, rec.Timestamp)
	if err != nil {
		return Entry{}, fmt.Errorf("timestamp %q is not RFC 3339", rec.Timestamp)
	}
	return Entry{Value: v, Action: Action(rec.Action), Timestamp: ts, TxHash: rec.TxHash}, nil
}
