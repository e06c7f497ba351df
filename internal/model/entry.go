package model

// LogEntry represents a single parsed log line.
type LogEntry struct {
	Date    string `json:"date"`
	Time    string `json:"time"`
	Level   string `json:"level"`   // as read, case preserved
	Message string `json:"message"` // remainder of the line, whitespace kept
}

// Fields returns the four fields in line order.
func (e LogEntry) Fields() []string {
	return []string{e.Date, e.Time, e.Level, e.Message}
}

// RawLine is one line of input without its trailing newline.
type RawLine struct {
	Text   string
	Source string // originating file path
	Num    int    // 1-based line number within Source
}
