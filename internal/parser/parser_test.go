package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/atikulmunna/logtally/internal/model"
)

func raw(text string) model.RawLine {
	return model.RawLine{Text: text}
}

func TestFieldParser(t *testing.T) {
	p := NewFieldParser()

	entry, err := p.Parse(raw("2024-01-01 10:00:01 ERROR failed to connect"))
	if err != nil {
		t.Fatal(err)
	}

	if entry.Date != "2024-01-01" {
		t.Errorf("expected date 2024-01-01, got %q", entry.Date)
	}
	if entry.Time != "10:00:01" {
		t.Errorf("expected time 10:00:01, got %q", entry.Time)
	}
	if entry.Level != "ERROR" {
		t.Errorf("expected level ERROR, got %q", entry.Level)
	}
	if entry.Message != "failed to connect" {
		t.Errorf("expected message 'failed to connect', got %q", entry.Message)
	}
}

func TestFieldParserKeepsMessageWhitespace(t *testing.T) {
	p := NewFieldParser()

	tests := []struct {
		line    string
		message string
	}{
		{"D T L M1 M2", "M1 M2"},
		{"D T L M1   M2", "M1   M2"},
		{"D T L M1\tM2 ", "M1\tM2 "},
		{"D  T\tL   M", "M"},
		{"  D T L M", "M"},
	}

	for _, tt := range tests {
		entry, err := p.Parse(raw(tt.line))
		if err != nil {
			t.Errorf("Parse(%q): unexpected error %v", tt.line, err)
			continue
		}
		if entry.Date != "D" || entry.Time != "T" || entry.Level != "L" {
			t.Errorf("Parse(%q): unexpected fields %+v", tt.line, entry)
		}
		if entry.Message != tt.message {
			t.Errorf("Parse(%q): expected message %q, got %q", tt.line, tt.message, entry.Message)
		}
	}
}

func TestFieldParserLevelCaseKept(t *testing.T) {
	entry, err := NewFieldParser().Parse(raw("d t warning disk at 90%"))
	if err != nil {
		t.Fatal(err)
	}
	if entry.Level != "warning" {
		t.Errorf("expected level as read, got %q", entry.Level)
	}
}

func TestFieldParserMalformed(t *testing.T) {
	p := NewFieldParser()

	for _, line := range []string{"", "   ", "bad line", "d t INFO", "d t INFO ", "one\ttwo\tthree"} {
		_, err := p.Parse(raw(line))
		if !errors.Is(err, ErrMalformedLine) {
			t.Errorf("Parse(%q): expected ErrMalformedLine, got %v", line, err)
		}
	}
}

func TestMalformedLineErrorMessage(t *testing.T) {
	_, err := NewFieldParser().Parse(model.RawLine{Text: "bad line", Source: "app.log", Num: 3})

	var mle *MalformedLineError
	if !errors.As(err, &mle) {
		t.Fatalf("expected *MalformedLineError, got %T", err)
	}
	if mle.Line != "bad line" || mle.Num != 3 {
		t.Errorf("unexpected error fields %+v", mle)
	}
	if !strings.Contains(err.Error(), "'bad line'") || !strings.HasPrefix(err.Error(), "app.log:3:") {
		t.Errorf("unexpected error message %q", err.Error())
	}
}

func TestRegexParser(t *testing.T) {
	p, err := NewRegexParser(`^\[(?P<date>\S+) (?P<time>\S+)\] (?P<level>\w+): (?P<message>.+)$`)
	if err != nil {
		t.Fatal(err)
	}

	entry, err := p.Parse(raw("[2024-01-01 10:00:00] WARN: disk  usage at 90%"))
	if err != nil {
		t.Fatal(err)
	}
	if entry.Level != "WARN" {
		t.Errorf("expected level WARN, got %q", entry.Level)
	}
	if entry.Message != "disk  usage at 90%" {
		t.Errorf("expected message 'disk  usage at 90%%', got %q", entry.Message)
	}

	if _, err := p.Parse(raw("2024-01-01 10:00:00 WARN plain")); !errors.Is(err, ErrMalformedLine) {
		t.Errorf("expected ErrMalformedLine for non-matching line, got %v", err)
	}
}

func TestRegexParserEmptyGroup(t *testing.T) {
	p, err := NewRegexParser(`^(?P<date>\S*) (?P<time>\S*) (?P<level>\S*) (?P<message>.*)$`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Parse(raw("d t  msg")); !errors.Is(err, ErrMalformedLine) {
		t.Errorf("expected ErrMalformedLine for empty level, got %v", err)
	}
}

func TestRegexParserInvalidPattern(t *testing.T) {
	if _, err := NewRegexParser(`[invalid`); err == nil {
		t.Error("expected error for invalid regex")
	}
}

func TestRegexParserMissingGroup(t *testing.T) {
	_, err := NewRegexParser(`^(?P<date>\S+) (?P<level>\w+) (?P<message>.+)$`)
	if err == nil || !strings.Contains(err.Error(), `"time"`) {
		t.Errorf("expected missing time group error, got %v", err)
	}
}

func TestNew(t *testing.T) {
	p, err := New("")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.(*FieldParser); !ok {
		t.Errorf("expected *FieldParser for empty pattern, got %T", p)
	}

	p, err = New(`(?P<date>\S+) (?P<time>\S+) (?P<level>\S+) (?P<message>.+)`)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.(*RegexParser); !ok {
		t.Errorf("expected *RegexParser, got %T", p)
	}
}

func TestParseAllStopsAtFirstMalformed(t *testing.T) {
	lines := []model.RawLine{
		{Text: "d t INFO ok", Num: 1},
		{Text: "bad line", Num: 2},
		{Text: "also bad", Num: 3},
	}

	entries, err := ParseAll(NewFieldParser(), lines)
	if entries != nil {
		t.Errorf("expected no entries on failure, got %v", entries)
	}
	var mle *MalformedLineError
	if !errors.As(err, &mle) || mle.Num != 2 {
		t.Fatalf("expected failure on line 2, got %v", err)
	}
}

func TestParseAll(t *testing.T) {
	lines := []model.RawLine{{Text: "d t INFO a"}, {Text: "d t ERROR b"}}
	entries, err := ParseAll(NewFieldParser(), lines)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[1].Level != "ERROR" {
		t.Errorf("unexpected entries %+v", entries)
	}
}
