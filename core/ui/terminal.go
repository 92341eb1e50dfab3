// Package ui - Terminal user interface
// CLI output with progress bars, tables, and colors.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"
)

// Colors for terminal output
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Cyan   = "\033[36m"
)

// Writer is the UI output destination
type Writer struct {
	out       io.Writer
	noColor   bool
	verbosity int
}

// NewWriter creates a UI writer
func NewWriter(out io.Writer, noColor bool) *Writer {
	if out == nil {
		out = os.Stdout
	}
	return &Writer{
		out:       out,
		noColor:   noColor,
		verbosity: 1,
	}
}

// SetVerbosity sets output verbosity (0=quiet, 1=normal, 2=verbose)
func (w *Writer) SetVerbosity(level int) {
	w.verbosity = level
}

// color applies color if enabled
func (w *Writer) color(c, text string) string {
	if w.noColor {
		return text
	}
	return c + text + Reset
}

// Print writes formatted text
func (w *Writer) Print(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format, args...)
}

// Println writes a line with newline
func (w *Writer) Println(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Header prints a section header
func (w *Writer) Header(title string) {
	w.Println("")
	w.Println("%s", w.color(Bold+Cyan, "━━━ "+title+" ━━━"))
	w.Println("")
}

// SubHeader prints a subsection header
func (w *Writer) SubHeader(title string) {
	w.Println("%s", w.color(Bold, "▸ "+title))
}

// Success prints a success message
func (w *Writer) Success(format string, args ...interface{}) {
	w.Println("%s%s", w.color(Green, "✓ "), fmt.Sprintf(format, args...))
}

// Warning prints a warning
func (w *Writer) Warning(format string, args ...interface{}) {
	w.Println("%s%s", w.color(Yellow, "⚠ "), fmt.Sprintf(format, args...))
}

// Error prints an error
func (w *Writer) Error(format string, args ...interface{}) {
	w.Println("%s%s", w.color(Red, "✗ "), fmt.Sprintf(format, args...))
}

// Info prints an info message
func (w *Writer) Info(format string, args ...interface{}) {
	if w.verbosity < 1 {
		return
	}
	w.Println("%s%s", w.color(Blue, "ℹ "), fmt.Sprintf(format, args...))
}

// Debug prints a debug message
func (w *Writer) Debug(format string, args ...interface{}) {
	if w.verbosity < 2 {
		return
	}
	w.Println("%s", w.color(Dim, "  "+fmt.Sprintf(format, args...)))
}

// ProgressBar renders a progress bar
type ProgressBar struct {
	w         *Writer
	total     int
	current   int
	width     int
	label     string
	startTime time.Time
}

// NewProgressBar creates a progress bar
func (w *Writer) NewProgressBar(total int, label string) *ProgressBar {
	return &ProgressBar{
		w:         w,
		total:     total,
		width:     40,
		label:     label,
		startTime: time.Now(),
	}
}

// Increment increments the progress bar
func (p *ProgressBar) Increment() {
	p.current++
	p.render()
}

func (p *ProgressBar) render() {
	if p.total == 0 {
		return
	}

	percent := float64(p.current) / float64(p.total)
	filled := int(percent * float64(p.width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)

	eta := ""
	if p.current > 0 {
		elapsed := time.Since(p.startTime)
		remaining := time.Duration(float64(elapsed) / float64(p.current) * float64(p.total-p.current))
		eta = fmt.Sprintf(" ETA: %s", formatDuration(remaining))
	}

	fmt.Fprintf(p.w.out, "\r%s [%s] %3.0f%% (%d/%d)%s",
		p.label, bar, percent*100, p.current, p.total, eta)
}

// Done completes the progress bar
func (p *ProgressBar) Done() {
	fmt.Fprintln(p.w.out)
}

// Align is a table column alignment
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Table renders a table
type Table struct {
	w       *Writer
	headers []string
	align   []Align
	rows    [][]string
	widths  []int
	sep     string
}

// NewTable creates a table
func (w *Writer) NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	return &Table{
		w:       w,
		headers: headers,
		align:   make([]Align, len(headers)),
		rows:    [][]string{},
		widths:  widths,
		sep:     " │ ",
	}
}

// SetAlign sets the alignment of column i
func (t *Table) SetAlign(i int, a Align) *Table {
	if i >= 0 && i < len(t.align) {
		t.align[i] = a
	}
	return t
}

// SetSeparator sets the column separator
func (t *Table) SetSeparator(sep string) *Table {
	t.sep = sep
	return t
}

// AddRow adds a row to the table
func (t *Table) AddRow(cells ...string) {
	// Pad or truncate cells to match header count
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		}
		if n := utf8.RuneCountInString(row[i]); n > t.widths[i] {
			t.widths[i] = n
		}
	}
	t.rows = append(t.rows, row)
}

func (t *Table) line(cells []string) string {
	var b strings.Builder
	for i, cell := range cells {
		if i > 0 {
			b.WriteString(t.sep)
		}
		pad := strings.Repeat(" ", t.widths[i]-utf8.RuneCountInString(cell))
		if t.align[i] == AlignRight {
			b.WriteString(pad + cell)
		} else {
			b.WriteString(cell + pad)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Render prints the table
func (t *Table) Render() {
	t.w.Println("%s", t.w.color(Bold, t.line(t.headers)))

	crossing := strings.Replace(strings.Replace(t.sep, "│", "┼", 1), " ", "─", -1)
	sep := ""
	for i, w := range t.widths {
		if i > 0 {
			sep += crossing
		}
		sep += strings.Repeat("─", w)
	}
	t.w.Println("%s", sep)

	for _, row := range t.rows {
		t.w.Println("%s", t.line(row))
	}
}

// AreaSummary renders the outcome of a batch
type AreaSummary struct {
	w              *Writer
	RunID          string
	Configurations int
	Failures       int
	TotalArea      string
	Duration       time.Duration
}

// NewAreaSummary creates an area summary
func (w *Writer) NewAreaSummary() *AreaSummary {
	return &AreaSummary{w: w}
}

// Render prints the summary
func (s *AreaSummary) Render() {
	s.w.Header("Area Estimation Summary")
	s.w.Println("%s", s.w.color(Green, fmt.Sprintf("  Total area: %s μm²", s.TotalArea)))
	s.w.Println("%s", s.w.color(Dim, fmt.Sprintf("  Configurations: %d", s.Configurations)))
	s.w.Println("%s", s.w.color(Dim, fmt.Sprintf("  Run: %s (%s)", s.RunID, formatDuration(s.Duration))))
	if s.Failures > 0 {
		s.w.Warning("%d configuration(s) failed", s.Failures)
	}
}

// AreaDiff shows per-configuration area changes between two runs
type AreaDiff struct {
	w           *Writer
	Added       []DiffItem
	Removed     []DiffItem
	Changed     []DiffItem
	TotalChange string
	IsIncrease  bool
}

// DiffItem is a single diff item
type DiffItem struct {
	Configuration string
	OldArea       string
	NewArea       string
	Change        string
	IsIncrease    bool
}

// NewAreaDiff creates a diff view
func (w *Writer) NewAreaDiff() *AreaDiff {
	return &AreaDiff{w: w}
}

// Render prints the diff
func (d *AreaDiff) Render() {
	d.w.Header("Area Changes")

	if len(d.Added) > 0 {
		d.w.SubHeader(fmt.Sprintf("Added (%d)", len(d.Added)))
		for _, item := range d.Added {
			d.w.Println("%s%s: %s", d.w.color(Green, "+ "), item.Configuration, item.NewArea)
		}
		d.w.Println("")
	}

	if len(d.Removed) > 0 {
		d.w.SubHeader(fmt.Sprintf("Removed (%d)", len(d.Removed)))
		for _, item := range d.Removed {
			d.w.Println("%s%s: %s", d.w.color(Red, "- "), item.Configuration, item.OldArea)
		}
		d.w.Println("")
	}

	if len(d.Changed) > 0 {
		d.w.SubHeader(fmt.Sprintf("Changed (%d)", len(d.Changed)))
		for _, item := range d.Changed {
			arrow := d.w.color(Yellow, "→")
			change := item.Change
			if item.IsIncrease {
				change = d.w.color(Red, "+"+change)
			} else {
				change = d.w.color(Green, change)
			}
			d.w.Println("  %s: %s %s %s (%s)", item.Configuration, item.OldArea, arrow, item.NewArea, change)
		}
		d.w.Println("")
	}

	d.w.Println("%s", strings.Repeat("─", 40))
	changeColor := Green
	changePrefix := ""
	if d.IsIncrease {
		changeColor = Red
		changePrefix = "+"
	}
	d.w.Println("%s%s", d.w.color(Bold, "Total Change: "), d.w.color(changeColor, changePrefix+d.TotalChange))
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "< 1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
}
