package ledger

import (
	"bytes"
	"encoding/json"
	"math"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/chaincounter/errors"
)

var t0 = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func TestAppendKeepsChronologicalOrder(t *testing.T) {
	l := New()
	if !l.SeedInitial(big.NewInt(4), t0) {
		t.Fatal("expected the initial entry to be seeded")
	}
	if l.SeedInitial(big.NewInt(9), t0) {
		t.Fatal("seeding a non-empty ledger must be a no-op")
	}

	actions := []Action{ActionIncrement, ActionIncrement, ActionDecrement}
	stamps := []time.Time{t0.Add(time.Minute), t0.Add(-time.Hour), t0.Add(2 * time.Minute)}
	for i, a := range actions {
		l.Append(Entry{Value: big.NewInt(int64(5 + i)), Action: a, Timestamp: stamps[i], TxHash: "0xabc"})
	}

	entries := l.Entries()
	if len(entries) != len(actions)+1 {
		t.Fatalf("expected %d entries, got %d", len(actions)+1, len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Timestamp.Before(entries[i-1].Timestamp) {
			t.Errorf("entry %d is earlier than entry %d", i, i-1)
		}
	}
	if !entries[2].Timestamp.Equal(entries[1].Timestamp) {
		t.Errorf("expected the early timestamp clamped, got %s", entries[2].Timestamp)
	}
}

func TestEntriesAreCopies(t *testing.T) {
	l := New()
	l.Append(Entry{Value: big.NewInt(1), Action: ActionIncrement, Timestamp: t0})

	got := l.Entries()
	got[0].Value.SetInt64(99)
	if last, _ := l.Last(); last.Value.Int64() != 1 {
		t.Errorf("ledger entry was mutated through a copy: %s", last.Value)
	}
}

func TestLastOnEmpty(t *testing.T) {
	if _, ok := New().Last(); ok {
		t.Error("expected no last entry")
	}
}

func TestStats(t *testing.T) {
	l := New()
	l.SeedInitial(big.NewInt(0), t0)
	l.Append(Entry{Value: big.NewInt(1), Action: ActionIncrement, Timestamp: t0})
	l.Append(Entry{Value: big.NewInt(2), Action: ActionIncrement, Timestamp: t0.Add(time.Hour)})
	l.Append(Entry{Value: big.NewInt(1), Action: ActionDecrement, Timestamp: t0.Add(25 * time.Hour)})
	l.Append(Entry{Value: big.NewInt(0), Action: ActionReset, Timestamp: t0.Add(49 * time.Hour)})

	s := l.Stats(t0.Add(72 * time.Hour))
	if s.Counts[ActionInitial] != 1 || s.Counts[ActionIncrement] != 2 || s.Counts[ActionDecrement] != 1 || s.Counts[ActionReset] != 1 {
		t.Errorf("unexpected counts %v", s.Counts)
	}
	if s.Mutating != 4 {
		t.Errorf("expected 4 mutating entries, got %d", s.Mutating)
	}
	if s.Days != 3 || s.AveragePerDay != 4.0/3.0 {
		t.Errorf("expected 4/3 per day over 3 days, got %v over %d", s.AveragePerDay, s.Days)
	}
}

func TestStatsSameInstant(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		l.Append(Entry{Value: big.NewInt(int64(i)), Action: ActionIncrement, Timestamp: t0})
	}
	s := l.Stats(t0)
	if math.IsInf(s.AveragePerDay, 0) || math.IsNaN(s.AveragePerDay) {
		t.Fatalf("expected a finite average, got %v", s.AveragePerDay)
	}
	if s.AveragePerDay != 3 {
		t.Errorf("expected 3 per day, got %v", s.AveragePerDay)
	}
}

func TestStatsEmpty(t *testing.T) {
	s := New().Stats(t0)
	if s.Mutating != 0 || s.AveragePerDay != 0 || s.Days != 1 {
		t.Errorf("unexpected stats %+v", s)
	}
}

func TestProgress(t *testing.T) {
	goal, err := NewGoal(big.NewInt(10))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		current     int64
		wantPercent int
		wantReached bool
	}{
		{0, 0, false},
		{5, 50, false},
		{10, 100, true},
		{12, 100, true},
		{9, 90, false},
	}
	for _, tc := range tests {
		percent, reached, ok := Progress(big.NewInt(tc.current), goal)
		if !ok {
			t.Fatal("expected progress with a goal set")
		}
		if percent != tc.wantPercent || reached != tc.wantReached {
			t.Errorf("Progress(%d) = %d, %v; want %d, %v", tc.current, percent, reached, tc.wantPercent, tc.wantReached)
		}
	}
}

func TestProgressRounding(t *testing.T) {
	goal, _ := NewGoal(big.NewInt(3))
	if percent, _, _ := Progress(big.NewInt(1), goal); percent != 33 {
		t.Errorf("expected 33, got %d", percent)
	}
	if percent, _, _ := Progress(big.NewInt(2), goal); percent != 67 {
		t.Errorf("expected 67, got %d", percent)
	}

	goal, _ = NewGoal(big.NewInt(1000))
	if percent, reached, _ := Progress(big.NewInt(999), goal); percent != 100 || reached {
		t.Errorf("expected 100%% without reaching, got %d %v", percent, reached)
	}
}

func TestProgressWithoutGoal(t *testing.T) {
	if _, _, ok := Progress(big.NewInt(5), Goal{}); ok {
		t.Error("expected no progress without a goal")
	}
}

func TestGoalValidation(t *testing.T) {
	for _, in := range []string{"0", "-3", "abc", "1.5", ""} {
		if _, err := ParseGoal(in); !errors.HasCode(err, errors.ErrCodeInvalidInput) {
			t.Errorf("ParseGoal(%q): expected INVALID_INPUT, got %v", in, err)
		}
	}
	g, err := ParseGoal("115792089237316195423570985008687907853269984665640564039457584007913129639935")
	if err != nil || !g.IsSet() || g.Target().BitLen() != 256 {
		t.Errorf("expected a 256-bit goal, got %v %v", g.Target(), err)
	}
}

var bigIntEqual = cmp.Comparer(func(a, b *big.Int) bool { return a.Cmp(b) == 0 })

func TestExportImportRoundTrip(t *testing.T) {
	src := New()
	big256, _ := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)
	src.SeedInitial(big.NewInt(41), t0)
	src.Append(Entry{Value: big.NewInt(42), Action: ActionIncrement, Timestamp: t0.Add(1500 * time.Millisecond), TxHash: "0x" + strings.Repeat("ab", 32)})
	src.Append(Entry{Value: big256, Action: ActionReset, Timestamp: t0.Add(time.Hour), TxHash: "0x" + strings.Repeat("cd", 32)})

	var buf bytes.Buffer
	if err := src.Export(&buf); err != nil {
		t.Fatal(err)
	}

	var raw []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	if raw[0]["value"] != "41" || raw[0]["action"] != "initial" || raw[0]["timestamp"] != "2026-03-14T09:30:00Z" {
		t.Errorf("unexpected exported record %v", raw[0])
	}
	if _, ok := raw[0]["txHash"]; ok {
		t.Error("empty tx hash must be omitted")
	}

	dst := New()
	n, err := dst.Import(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("expected 3 imported entries, got %d", n)
	}
	if diff := cmp.Diff(src.Entries(), dst.Entries(), bigIntEqual); diff != "" {
		t.Errorf("imported entries differ (-want +got):\n%s", diff)
	}
}

func TestImportMalformedLeavesLedgerUntouched(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `hello`},
		{"object", `{"value":"1"}`},
		{"null", `null`},
		{"trailing object", `[] {"junk": true}`},
		{"trailing garbage", `[{"value":"1","action":"increment","timestamp":"2026-03-14T09:30:00Z"}] xyz`},
		{"second array", `[] []`},
		{"missing value", `[{"action":"increment","timestamp":"2026-03-14T09:30:00Z"}]`},
		{"negative value", `[{"value":"-1","action":"increment","timestamp":"2026-03-14T09:30:00Z"}]`},
		{"fractional value", `[{"value":"1.5","action":"increment","timestamp":"2026-03-14T09:30:00Z"}]`},
		{"numeric value", `[{"value":1,"action":"increment","timestamp":"2026-03-14T09:30:00Z"}]`},
		{"unknown action", `[{"value":"1","action":"double","timestamp":"2026-03-14T09:30:00Z"}]`},
		{"bad timestamp", `[{"value":"1","action":"increment","timestamp":"yesterday"}]`},
		{"bad tx hash", `[{"value":"1","action":"increment","timestamp":"2026-03-14T09:30:00Z","txHash":"nothex"}]`},
		{"out of order", `[
			{"value":"1","action":"increment","timestamp":"2026-03-14T10:00:00Z"},
			{"value":"2","action":"increment","timestamp":"2026-03-14T09:00:00Z"}
		]`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := New()
			l.SeedInitial(big.NewInt(7), t0)

			_, err := l.Import(strings.NewReader(tc.input))
			if !errors.HasCode(err, errors.ErrCodeImportMalformed) {
				t.Fatalf("expected IMPORT_MALFORMED, got %v", err)
			}
			if last, _ := l.Last(); l.Len() != 1 || last.Value.Int64() != 7 {
				t.Error("ledger must be left untouched")
			}
		})
	}
}

func TestImportEmptyArrayClears(t *testing.T) {
	l := New()
	l.SeedInitial(big.NewInt(7), t0)
	n, err := l.Import(strings.NewReader(`[]`))
	if err != nil || n != 0 || l.Len() != 0 {
		t.Errorf("expected an empty ledger, got n=%d len=%d err=%v", n, l.Len(), err)
	}
}
