package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/atikulmunna/logtally/internal/aggregator"
	"github.com/atikulmunna/logtally/internal/model"
)

// Report is the complete result of one pipeline run.
type Report struct {
	Counts   aggregator.Counts
	Order    aggregator.Order
	Filtered bool   // a level filter was requested
	Level    string // selected level, upper-cased for display
	Entries  []model.LogEntry
}

// Rows returns the count table rows in the report's order.
func (r Report) Rows() []aggregator.LevelCount {
	return r.Counts.Sorted(r.Order)
}

type reportJSON struct {
	Total  int                     `json:"total"`
	Counts []aggregator.LevelCount `json:"counts"`
	Detail *detailJSON             `json:"detail,omitempty"`
}

type detailJSON struct {
	Level   string           `json:"level"`
	Entries []model.LogEntry `json:"entries"`
}

// MarshalJSON encodes the report as the document written by JSONRenderer.
func (r Report) MarshalJSON() ([]byte, error) {
	doc := reportJSON{
		Total:  r.Counts.Total(),
		Counts: r.Rows(),
	}
	if r.Filtered {
		entries := r.Entries
		if entries == nil {
			entries = []model.LogEntry{}
		}
		doc.Detail = &detailJSON{Level: r.Level, Entries: entries}
	}
	return json.Marshal(doc)
}

// Renderer writes a Report to an output stream.
type Renderer interface {
	Render(w io.Writer, r Report) error
}

// New returns the renderer for a format name ("text" or "json").
func New(format string, labels Labels, color bool) (Renderer, error) {
	switch format {
	case "", "text":
		return NewTextRenderer(labels, color), nil
	case "json":
		return NewJSONRenderer(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want text or json)", format)
	}
}

// ---------------------------------------------------------------------------
// JSON Renderer (structured output for piping)
// ---------------------------------------------------------------------------

// JSONRenderer prints the report as a single indented JSON document.
type JSONRenderer struct{}

func NewJSONRenderer() *JSONRenderer { return &JSONRenderer{} }

func (r *JSONRenderer) Render(w io.Writer, rep Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
