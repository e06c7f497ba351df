package aggregator

import (
	"encoding/json"
	"testing"

	"github.com/atikulmunna/logtally/internal/model"
)

func entries(levels ...string) []model.LogEntry {
	out := make([]model.LogEntry, len(levels))
	for i, l := range levels {
		out[i] = model.LogEntry{Date: "d", Time: "t", Level: l, Message: "m"}
	}
	return out
}

func TestLevelCounts(t *testing.T) {
	counts := Count(entries("INFO", "INFO", "ERROR", "WARN", "ERROR"))

	if counts.Get("INFO") != 2 {
		t.Errorf("expected 2 INFO, got %d", counts.Get("INFO"))
	}
	if counts.Get("ERROR") != 2 {
		t.Errorf("expected 2 ERROR, got %d", counts.Get("ERROR"))
	}
	if counts.Get("WARN") != 1 {
		t.Errorf("expected 1 WARN, got %d", counts.Get("WARN"))
	}
	if counts.Get("DEBUG") != 0 {
		t.Errorf("expected 0 DEBUG, got %d", counts.Get("DEBUG"))
	}
	if counts.Total() != 5 {
		t.Errorf("expected total 5, got %d", counts.Total())
	}
}

func TestFirstSeenOrder(t *testing.T) {
	counts := Count(entries("WARN", "INFO", "WARN", "ERROR", "INFO"))

	want := []string{"WARN", "INFO", "ERROR"}
	got := counts.Levels()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestNoCaseNormalization(t *testing.T) {
	counts := Count(entries("info", "INFO", "Info"))
	if counts.Len() != 3 {
		t.Errorf("expected 3 distinct levels, got %d (%v)", counts.Len(), counts.Levels())
	}
}

func TestSumEqualsBatchSize(t *testing.T) {
	batches := [][]string{
		nil,
		{"INFO"},
		{"A", "B", "C", "A", "A", "B"},
	}
	for _, b := range batches {
		counts := Count(entries(b...))
		sum := 0
		for _, row := range counts.Rows() {
			sum += row.Count
		}
		if sum != len(b) || counts.Total() != len(b) {
			t.Errorf("batch %v: sum %d, total %d, want %d", b, sum, counts.Total(), len(b))
		}
	}
}

func TestSnapshotIsolated(t *testing.T) {
	a := New()
	a.Add(model.LogEntry{Level: "INFO"})
	snap := a.Snapshot()
	a.Add(model.LogEntry{Level: "INFO"})
	a.Add(model.LogEntry{Level: "ERROR"})

	if snap.Get("INFO") != 1 || snap.Len() != 1 {
		t.Errorf("snapshot changed after Add: %v", snap.Rows())
	}
}

func TestSorted(t *testing.T) {
	counts := Count(entries("WARN", "INFO", "ERROR", "INFO", "ERROR", "DEBUG"))

	byCount := counts.Sorted(OrderCount)
	wantCount := []string{"INFO", "ERROR", "WARN", "DEBUG"}
	for i, w := range wantCount {
		if byCount[i].Level != w {
			t.Errorf("count order position %d: expected %s, got %s", i, w, byCount[i].Level)
		}
	}

	byLevel := counts.Sorted(OrderLevel)
	wantLevel := []string{"DEBUG", "ERROR", "INFO", "WARN"}
	for i, w := range wantLevel {
		if byLevel[i].Level != w {
			t.Errorf("level order position %d: expected %s, got %s", i, w, byLevel[i].Level)
		}
	}

	seen := counts.Sorted(OrderSeen)
	if seen[0].Level != "WARN" {
		t.Errorf("seen order should start with WARN, got %s", seen[0].Level)
	}
}

func TestParseOrder(t *testing.T) {
	tests := []struct {
		input string
		want  Order
		ok    bool
	}{
		{"", OrderSeen, true},
		{"seen", OrderSeen, true},
		{"COUNT", OrderCount, true},
		{" level ", OrderLevel, true},
		{"random", "", false},
	}
	for _, tt := range tests {
		got, err := ParseOrder(tt.input)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseOrder(%q) = %q, %v", tt.input, got, err)
		}
	}
}

func TestMarshalJSON(t *testing.T) {
	raw, err := json.Marshal(Count(entries("INFO", "ERROR", "INFO")))
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"level":"INFO","count":2},{"level":"ERROR","count":1}]`
	if string(raw) != want {
		t.Errorf("expected %s, got %s", want, raw)
	}
}
