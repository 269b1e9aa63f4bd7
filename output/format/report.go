package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ansel1/tally/identifier"
	"github.com/ansel1/tally/results"
)

// SeparatorWidth is the width of the line that opens the report.
const SeparatorWidth = 70

// Title is the report title line.
const Title = "Summary:"

const columnSeparator = " | "

// LineWriter receives the report one line at a time.
type LineWriter interface {
	WriteLine(line string) error
}

type ioLineWriter struct {
	w io.Writer
}

// NewLineWriter adapts an io.Writer, terminating each line with a newline.
func NewLineWriter(w io.Writer) LineWriter {
	return ioLineWriter{w: w}
}

func (l ioLineWriter) WriteLine(line string) error {
	_, err := fmt.Fprintln(l.w, line)
	return err
}

// Report is the layout of a summary table, computed from a results.State.
//
// Columns holds only outcomes with a non-zero total. Every value column
// shares ValueWidth, the length of the longest column name; counts wider
// than that overflow the column. Widths are character counts, independent
// of the terminal and locale.
type Report struct {
	Mode       identifier.Mode
	Columns    []results.Outcome
	KeyWidth   int
	ValueWidth int
	Rows       []*results.Row
}

// ComputeReport lays out the table for state.
//
// Rows with an empty key are counted toward the column totals and the key
// width but are not part of Rows.
func ComputeReport(state *results.State, mode identifier.Mode) *Report {
	report := &Report{
		Mode:    mode,
		Columns: make([]results.Outcome, 0, len(results.Outcomes)),
		Rows:    make([]*results.Row, 0, len(state.Rows)),
	}

	totals := state.Totals()
	for _, o := range results.Outcomes {
		if totals.Get(o) == 0 {
			continue
		}
		report.Columns = append(report.Columns, o)
		if w := utf8.RuneCountInString(o.String()); w > report.ValueWidth {
			report.ValueWidth = w
		}
	}

	for _, row := range state.Rows {
		if w := utf8.RuneCountInString(row.Key); w > report.KeyWidth {
			report.KeyWidth = w
		}
		if row.Key != "" {
			report.Rows = append(report.Rows, row)
		}
	}

	return report
}

// ReportFormatter renders a Report as fixed-width lines.
type ReportFormatter struct {
	useColors  bool
	titleStyle lipgloss.Style
}

// NewReportFormatter creates a formatter. With colors off the output is plain text.
func NewReportFormatter(useColors bool) *ReportFormatter {
	return &ReportFormatter{
		useColors:  useColors,
		titleStyle: lipgloss.NewStyle().Bold(true),
	}
}

// Lines renders the report.
func (rf *ReportFormatter) Lines(r *Report) []string {
	lines := make([]string, 0, 4+len(r.Rows))
	lines = append(lines, strings.Repeat("-", SeparatorWidth))
	lines = append(lines, rf.title())
	lines = append(lines, rf.header(r))
	lines = append(lines, "   "+strings.Repeat("-", r.KeyWidth+len(r.Columns)*(r.ValueWidth+len(columnSeparator))))
	for _, row := range r.Rows {
		lines = append(lines, rf.row(r, row))
	}
	return lines
}

// Write renders the report onto w, one line per call.
func (rf *ReportFormatter) Write(w LineWriter, r *Report) error {
	for _, line := range rf.Lines(r) {
		if err := w.WriteLine(line); err != nil {
			return err
		}
	}
	return nil
}

func (rf *ReportFormatter) title() string {
	if rf.useColors {
		return rf.titleStyle.Render(Title)
	}
	return Title
}

func (rf *ReportFormatter) header(r *Report) string {
	var b strings.Builder
	b.WriteString(padLeft(r.Mode.String(), r.KeyWidth))
	for _, o := range r.Columns {
		b.WriteString(columnSeparator)
		b.WriteString(padRight(o.String(), r.ValueWidth))
	}
	return b.String()
}

func (rf *ReportFormatter) row(r *Report, row *results.Row) string {
	values := make([]string, len(r.Columns))
	for i, o := range r.Columns {
		values[i] = padRight(strconv.Itoa(row.Counts.Get(o)), r.ValueWidth)
	}
	return padLeft(row.Key, r.KeyWidth) + columnSeparator + strings.Join(values, columnSeparator)
}

func padLeft(s string, width int) string {
	if n := width - utf8.RuneCountInString(s); n > 0 {
		return strings.Repeat(" ", n) + s
	}
	return s
}

func padRight(s string, width int) string {
	if n := width - utf8.RuneCountInString(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

// RenderReport renders the aggregator's current state as plain text, one
// newline-terminated line per report line. The aggregator is not modified.
func RenderReport(agg *results.Aggregator) string {
	var b strings.Builder
	_ = WriteReport(NewLineWriter(&b), agg)
	return b.String()
}

// WriteReport writes the aggregator's current state to w as plain text.
func WriteReport(w LineWriter, agg *results.Aggregator) error {
	return NewReportFormatter(false).Write(w, ComputeReport(agg.State(), agg.Mode()))
}
