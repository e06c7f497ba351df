// Package filter selects log entries by severity level.
package filter

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/atikulmunna/logtally/internal/model"
)

// Normalize upper-cases a level with full Unicode case mapping, so "ß"
// becomes "SS" and "straße" matches "STRASSE".
func Normalize(level string) string {
	return cases.Upper(language.Und).String(level)
}

// ByLevel returns the entries whose level equals level after upper-casing
// both sides. Input order is kept. The result is empty, never nil, when
// nothing matches.
func ByLevel(entries []model.LogEntry, level string) []model.LogEntry {
	caser := cases.Upper(language.Und)
	want := caser.String(level)

	out := make([]model.LogEntry, 0)
	for _, e := range entries {
		if caser.String(e.Level) == want {
			out = append(out, e)
		}
	}
	return out
}
