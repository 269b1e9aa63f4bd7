package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	log "github.com/sirupsen/logrus"

	"github.com/ansel1/tally/engine"
	"github.com/ansel1/tally/output/format"
	"github.com/ansel1/tally/results"
)

// cells measures terminal cells with a fixed condition so the status line
// does not depend on LANG.
var cells = &runewidth.Condition{EastAsianWidth: false}

// EngineEventMsg wraps engine events for bubbletea
type EngineEventMsg engine.Event

// EOFMsg signals that the engine channel has been drained
type EOFMsg struct{}

// Model shows the summary table while the run is in progress.
//
// The Model owns the aggregator for the duration of the program: every
// outcome is recorded from Update, so no other goroutine may touch the
// aggregator until the program exits.
type Model struct {
	aggregator *results.Aggregator
	formatter  *format.ReportFormatter

	// Terminal state
	TerminalWidth  int
	TerminalHeight int

	// Styles
	statusStyle lipgloss.Style
	failStyle   lipgloss.Style

	// State tracking
	Recorded  int       // Outcomes recorded so far
	Finished  bool      // True once the stream completed or the user quit
	Err       error     // Set when an outcome could not be recorded or input was cut short
	StartTime time.Time // When the TUI started
	spinner   spinner.Model
}

// NewModel creates a new TUI model
func NewModel(aggregator *results.Aggregator, useColors bool) *Model {
	s := spinner.New()
	s.Spinner = spinner.Jump

	return &Model{
		aggregator:     aggregator,
		formatter:      format.NewReportFormatter(useColors),
		TerminalWidth:  80, // Default width, will be updated by Bubbletea
		TerminalHeight: 24, // Default height, will be updated by Bubbletea
		statusStyle:    lipgloss.NewStyle().Faint(true),
		failStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("1")), // red
		StartTime:      time.Now(),
		spinner:        s,
	}
}

// Init initializes the model and returns the initial command
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EngineEventMsg:
		return m, m.handleEngineEvent(engine.Event(msg))

	case tea.WindowSizeMsg:
		m.TerminalWidth = msg.Width
		m.TerminalHeight = msg.Height

	case EOFMsg:
		m.Finished = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.Finished = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) handleEngineEvent(evt engine.Event) tea.Cmd {
	switch evt.Type {
	case engine.EventRawLine:
		// Printed above the live view
		return tea.Println(string(evt.RawLine))

	case engine.EventTest:
		recorded, err := m.aggregator.Observe(evt.TestEvent)
		if err != nil {
			m.Err = err
			m.Finished = true
			return tea.Quit
		}
		if recorded {
			m.Recorded++
		}

	case engine.EventError:
		if evt.Fatal {
			m.Err = evt.Error
			m.Finished = true
			return tea.Quit
		}
		log.WithError(evt.Error).Warn("output error")

	case engine.EventComplete:
		m.Finished = true
		return tea.Quit
	}
	return nil
}

// View renders the live table. It is empty once finished; the final report
// is written by DisplaySummary after the program exits.
func (m *Model) View() string {
	if m.Finished {
		return ""
	}

	report := format.ComputeReport(m.aggregator.State(), m.aggregator.Mode())
	lines := m.formatter.Lines(report)

	// Keep the status line visible on short terminals
	if limit := m.TerminalHeight - 1; limit > 0 && len(lines) > limit {
		lines = lines[:limit]
	}

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(truncateLine(line, m.TerminalWidth))
		b.WriteString("\n")
	}
	b.WriteString(m.renderStatusLine())
	return b.String()
}

func (m *Model) renderStatusLine() string {
	status := fmt.Sprintf("%s %d outcomes recorded (%s)",
		m.spinner.View(), m.Recorded, formatElapsedTime(time.Since(m.StartTime).Seconds()))
	if m.TerminalWidth > 0 {
		status = cells.Truncate(status, m.TerminalWidth, "…")
	}
	if m.aggregator.HasFailures() {
		return m.failStyle.Render(status)
	}
	return m.statusStyle.Render(status)
}

// HasFailures returns true if any tests failed or errored
func (m *Model) HasFailures() bool {
	return m.aggregator.HasFailures()
}

// DisplaySummary writes the final report to w.
//
// Called after the TUI exits, either when the stream completes or when the
// user interrupts. Nothing is written if recording failed.
func (m *Model) DisplaySummary(w io.Writer) error {
	if m.Err != nil {
		return nil
	}
	report := format.ComputeReport(m.aggregator.State(), m.aggregator.Mode())
	return m.formatter.Write(format.NewLineWriter(w), report)
}

// formatElapsedTime formats elapsed time as X.Xs below a minute, X.Xm above.
func formatElapsedTime(seconds float64) string {
	if seconds < 0.05 {
		return "0.0s"
	}
	if seconds >= 60 {
		return fmt.Sprintf("%.1fm", seconds/60)
	}
	return fmt.Sprintf("%.1fs", seconds)
}

// truncateLine cuts a line to the terminal width.
func truncateLine(line string, width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(line)
}
