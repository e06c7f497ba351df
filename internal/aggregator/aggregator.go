package aggregator

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/atikulmunna/logtally/internal/model"
)

// Order selects the iteration order of a Counts table.
type Order string

const (
	OrderSeen  Order = "seen"  // first occurrence in the batch
	OrderCount Order = "count" // descending count, ties by first occurrence
	OrderLevel Order = "level" // lexical by level token
)

// ParseOrder validates an order name. The empty string means OrderSeen.
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case "", OrderSeen:
		return OrderSeen, nil
	case OrderCount, OrderLevel:
		return o, nil
	default:
		return "", fmt.Errorf("unknown sort order %q (want seen, count or level)", s)
	}
}

// LevelCount is one row of a Counts table.
type LevelCount struct {
	Level string `json:"level"`
	Count int    `json:"count"`
}

// Counts maps level tokens to occurrence counts and remembers the order in
// which each level was first seen. It is read-only once built.
type Counts struct {
	levels []string
	counts map[string]int
	total  int
}

// Get returns the count for a level, 0 when absent.
func (c Counts) Get(level string) int {
	return c.counts[level]
}

// Len returns the number of distinct levels.
func (c Counts) Len() int {
	return len(c.levels)
}

// Total returns the sum of all counts.
func (c Counts) Total() int {
	return c.total
}

// Levels returns the level keys in first-seen order.
func (c Counts) Levels() []string {
	return append([]string(nil), c.levels...)
}

// Rows returns the table rows in first-seen order.
func (c Counts) Rows() []LevelCount {
	rows := make([]LevelCount, len(c.levels))
	for i, l := range c.levels {
		rows[i] = LevelCount{Level: l, Count: c.counts[l]}
	}
	return rows
}

// Sorted returns the table rows in the given order.
func (c Counts) Sorted(order Order) []LevelCount {
	rows := c.Rows()
	switch order {
	case OrderCount:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	case OrderLevel:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Level < rows[j].Level })
	}
	return rows
}

// MarshalJSON encodes the table as an ordered array of rows.
func (c Counts) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Rows())
}

// Aggregator tallies entries for a single pipeline run. Build a new one per run.
type Aggregator struct {
	counts Counts
}

// New creates an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{counts: Counts{counts: make(map[string]int)}}
}

// Add counts one entry under its level as parsed.
func (a *Aggregator) Add(entry model.LogEntry) {
	if _, ok := a.counts.counts[entry.Level]; !ok {
		a.counts.levels = append(a.counts.levels, entry.Level)
	}
	a.counts.counts[entry.Level]++
	a.counts.total++
}

// Snapshot returns the current counts. Later calls to Add do not affect it.
func (a *Aggregator) Snapshot() Counts {
	counts := make(map[string]int, len(a.counts.counts))
	for k, v := range a.counts.counts {
		counts[k] = v
	}
	return Counts{
		levels: a.counts.Levels(),
		counts: counts,
		total:  a.counts.total,
	}
}

// Count tallies a batch of entries with a fresh Aggregator.
func Count(entries []model.LogEntry) Counts {
	a := New()
	for _, e := range entries {
		a.Add(e)
	}
	return a.Snapshot()
}
