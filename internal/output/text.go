package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atikulmunna/logtally/internal/aggregator"
	"github.com/atikulmunna/logtally/internal/filter"
	"github.com/atikulmunna/logtally/internal/model"
	"github.com/charmbracelet/lipgloss"
)

var (
	styleInfo  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // gray
	styleDebug = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
	styleWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))            // yellow
	styleError = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true) // red bold
	styleFatal = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("196")).
			Bold(true) // white on red
	styleHeader = lipgloss.NewStyle().Bold(true)
)

// TextRenderer prints the count table and the optional detail section.
type TextRenderer struct {
	labels Labels
	color  bool
}

// NewTextRenderer returns a Renderer for aligned plain text. With color set,
// level cells and titles are styled after padding so alignment is kept.
func NewTextRenderer(labels Labels, color bool) *TextRenderer {
	return &TextRenderer{labels: labels, color: color}
}

func (r *TextRenderer) Render(w io.Writer, rep Report) error {
	if _, err := io.WriteString(w, r.FormatCounts(rep.Rows())); err != nil {
		return err
	}
	if !rep.Filtered {
		return nil
	}
	_, err := io.WriteString(w, r.FormatDetail(rep.Level, rep.Entries))
	return err
}

// FormatCounts renders rows as a two-column table. Each column is as wide as
// the wider of its title and its longest value. With no rows only the title
// row and the separator are produced.
func (r *TextRenderer) FormatCounts(rows []aggregator.LevelCount) string {
	levelWidth := lipgloss.Width(r.labels.Level)
	countWidth := lipgloss.Width(r.labels.Count)
	for _, row := range rows {
		levelWidth = max(levelWidth, lipgloss.Width(row.Level))
		countWidth = max(countWidth, len(strconv.Itoa(row.Count)))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s | %s\n",
		r.header(pad(r.labels.Level, levelWidth)),
		r.header(pad(r.labels.Count, countWidth)))
	b.WriteString(strings.Repeat("-", levelWidth+1) + "|" + strings.Repeat("-", countWidth+1) + "\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "%s | %s\n",
			r.level(row.Level, pad(row.Level, levelWidth)),
			pad(strconv.Itoa(row.Count), countWidth))
	}
	return b.String()
}

// FormatDetail renders the detail header for level followed by one line per
// entry, its four fields joined by a single space.
func (r *TextRenderer) FormatDetail(level string, entries []model.LogEntry) string {
	var b strings.Builder
	b.WriteString(r.header(fmt.Sprintf(r.labels.Detail, level)))
	b.WriteByte('\n')
	for _, e := range entries {
		b.WriteString(strings.Join(e.Fields(), " "))
		b.WriteByte('\n')
	}
	return b.String()
}

func (r *TextRenderer) header(s string) string {
	if !r.color {
		return s
	}
	return styleHeader.Render(s)
}

func (r *TextRenderer) level(level, cell string) string {
	if !r.color {
		return cell
	}
	return styleLevel(level).Render(cell)
}

func styleLevel(level string) lipgloss.Style {
	switch filter.Normalize(level) {
	case "DEBUG", "TRACE":
		return styleDebug
	case "WARN", "WARNING":
		return styleWarn
	case "ERROR", "ERR":
		return styleError
	case "FATAL", "CRITICAL":
		return styleFatal
	default:
		return styleInfo
	}
}

// pad left-aligns s in a cell of the given display width.
func pad(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
