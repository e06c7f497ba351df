package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/atikulmunna/logtally/internal/model"
)

// ErrMalformedLine is matched by every error returned for a line that does
// not split into date, time, level and message.
var ErrMalformedLine = errors.New("malformed log line")

// MalformedLineError reports the offending line.
type MalformedLineError struct {
	Line   string
	Source string
	Num    int
}

func (e *MalformedLineError) Error() string {
	msg := fmt.Sprintf("log line '%s' is not in the expected format", e.Line)
	if e.Source != "" {
		return fmt.Sprintf("%s:%d: %s", e.Source, e.Num, msg)
	}
	return msg
}

func (e *MalformedLineError) Is(target error) bool {
	return target == ErrMalformedLine
}

func malformed(line model.RawLine) error {
	return &MalformedLineError{Line: line.Text, Source: line.Source, Num: line.Num}
}

// Parser converts a raw log line into a structured LogEntry.
type Parser interface {
	Parse(line model.RawLine) (model.LogEntry, error)
}

// New returns the regex parser for pattern, or the whitespace field parser
// when pattern is empty.
func New(pattern string) (Parser, error) {
	if pattern == "" {
		return NewFieldParser(), nil
	}
	return NewRegexParser(pattern)
}

// ---------------------------------------------------------------------------
// Field Parser
// ---------------------------------------------------------------------------

// FieldParser handles "date time level message..." lines.
// Only the first three whitespace runs separate fields; the message keeps
// the rest of the line byte for byte.
type FieldParser struct{}

func NewFieldParser() *FieldParser { return &FieldParser{} }

func (p *FieldParser) Parse(line model.RawLine) (model.LogEntry, error) {
	var fields [3]string
	rest := skipSpace(line.Text)
	for i := range fields {
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end <= 0 {
			return model.LogEntry{}, malformed(line)
		}
		fields[i] = rest[:end]
		rest = skipSpace(rest[end:])
	}
	if rest == "" {
		return model.LogEntry{}, malformed(line)
	}

	return model.LogEntry{
		Date:    fields[0],
		Time:    fields[1],
		Level:   fields[2],
		Message: rest,
	}, nil
}

// skipSpace drops the leading whitespace run of s.
func skipSpace(s string) string {
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if !unicode.IsSpace(r) {
			break
		}
		s = s[size:]
	}
	return s
}

// ---------------------------------------------------------------------------
// Regex Parser (user-defined patterns)
// ---------------------------------------------------------------------------

var requiredGroups = []string{"date", "time", "level", "message"}

// RegexParser uses a user-supplied regex with the named capture groups
// date, time, level and message. All four groups are required.
type RegexParser struct {
	re    *regexp.Regexp
	index map[string]int
}

func NewRegexParser(pattern string) (*RegexParser, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern: %w", err)
	}

	index := make(map[string]int, len(requiredGroups))
	for _, name := range requiredGroups {
		i := re.SubexpIndex(name)
		if i < 0 {
			return nil, fmt.Errorf("regex pattern is missing the %q group", name)
		}
		index[name] = i
	}
	return &RegexParser{re: re, index: index}, nil
}

func (p *RegexParser) Parse(line model.RawLine) (model.LogEntry, error) {
	matches := p.re.FindStringSubmatch(line.Text)
	if matches == nil {
		return model.LogEntry{}, malformed(line)
	}

	entry := model.LogEntry{
		Date:    matches[p.index["date"]],
		Time:    matches[p.index["time"]],
		Level:   matches[p.index["level"]],
		Message: matches[p.index["message"]],
	}
	if entry.Date == "" || entry.Time == "" || entry.Level == "" || entry.Message == "" {
		return model.LogEntry{}, malformed(line)
	}
	return entry, nil
}

// ParseAll parses lines in order and stops at the first malformed line.
func ParseAll(p Parser, lines []model.RawLine) ([]model.LogEntry, error) {
	entries := make([]model.LogEntry, 0, len(lines))
	for _, line := range lines {
		entry, err := p.Parse(line)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
