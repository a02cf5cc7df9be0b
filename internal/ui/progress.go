package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"tsconform/internal/runner"
)

// maxActiveLines bounds the per-fixture portion of the board. A conformance
// corpus has thousands of fixtures; only the ones currently being checked
// are listed.
const maxActiveLines = 12

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	passedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	crashedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	skippedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	checkingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

type boardModel struct {
	title   string
	events  <-chan runner.Event
	spinner spinner.Model
	bar     progress.Model

	total    int
	finished int
	passed   int
	failed   int
	crashed  int
	skipped  int
	active   []string

	width int
	done  bool
}

type eventMsg runner.Event
type doneMsg struct{}

// NewBoardModel returns a Bubble Tea model that renders conformance-run
// progress from the runner's event stream.
func NewBoardModel(title string, events <-chan runner.Event) tea.Model {
	m := &boardModel{
		title:   title,
		events:  events,
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(checkingStyle)),
		bar:     progress.New(progress.WithDefaultGradient()),
	}
	m.resize(80)
	return m
}

func (m *boardModel) resize(width int) {
	if width <= 0 {
		return
	}
	m.width = width
	m.bar.Width = width - 4
	if m.bar.Width > 76 {
		m.bar.Width = 76
	}
}

func (m *boardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.nextEvent())
}

// nextEvent blocks on the runner's event channel; channel close means the
// run is over.
func (m *boardModel) nextEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(runner.Event(msg))
		return m, tea.Batch(cmd, m.nextEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.resize(msg.Width)
		return m, nil
	case progress.FrameMsg:
		updated, cmd := m.bar.Update(msg)
		m.bar = updated.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *boardModel) applyEvent(ev runner.Event) tea.Cmd {
	switch ev.Status {
	case runner.StatusQueued:
		m.total++
	case runner.StatusSkipped:
		m.skipped++
	case runner.StatusWorking:
		m.active = append(m.active, ev.File)
	case runner.StatusPassed:
		m.finished++
		m.passed++
		m.dropActive(ev.File)
	case runner.StatusFailed:
		m.finished++
		m.failed++
		m.dropActive(ev.File)
	case runner.StatusCrashed:
		m.finished++
		m.failed++
		m.crashed++
		m.dropActive(ev.File)
	}

	if m.total == 0 {
		return nil
	}
	return m.bar.SetPercent(float64(m.finished) / float64(m.total))
}

func (m *boardModel) dropActive(file string) {
	for i, path := range m.active {
		if path == file {
			m.active = append(m.active[:i], m.active[i+1:]...)
			return
		}
	}
}

func (m *boardModel) View() string {
	var b strings.Builder
	b.WriteString(m.headerLine())
	b.WriteString("\n\n")
	b.WriteString(m.countsLine())
	b.WriteString("\n\n")
	m.writeActive(&b)
	b.WriteString("\n")
	b.WriteString(m.barLine())
	b.WriteString("\n")
	return b.String()
}

func (m *boardModel) headerLine() string {
	header := fmt.Sprintf("%s (%d/%d)", m.title, m.finished, m.total)
	if m.done {
		return headerStyle.Render("done: " + header)
	}
	return headerStyle.Render(m.spinner.View() + " " + header)
}

func (m *boardModel) countsLine() string {
	parts := []string{
		passedStyle.Render(fmt.Sprintf("passed %d", m.passed)),
		failedStyle.Render(fmt.Sprintf("failed %d", m.failed)),
	}
	if m.crashed > 0 {
		parts = append(parts, crashedStyle.Render(fmt.Sprintf("crashed %d", m.crashed)))
	}
	parts = append(parts, skippedStyle.Render(fmt.Sprintf("skipped %d", m.skipped)))
	return "  " + strings.Join(parts, "  ")
}

func (m *boardModel) writeActive(b *strings.Builder) {
	nameWidth := m.width - 14
	if nameWidth < 20 {
		nameWidth = 20
	}
	shown := m.active
	if len(shown) > maxActiveLines {
		shown = shown[:maxActiveLines]
	}
	for _, path := range shown {
		label := checkingStyle.Render(fmt.Sprintf("%10s", "checking"))
		fmt.Fprintf(b, "  %s %s\n", label, clipPath(path, nameWidth))
	}
	if hidden := len(m.active) - len(shown); hidden > 0 {
		fmt.Fprintf(b, "  %10s … and %d more\n", "", hidden)
	}
}

func (m *boardModel) barLine() string {
	if m.done {
		return m.bar.ViewAs(1.0)
	}
	return m.bar.View()
}

// clipPath shortens long fixture paths from the left so the discriminating
// tail (directory leaf and file name) stays visible.
func clipPath(path string, width int) string {
	w := runewidth.StringWidth(path)
	if width <= 0 || w <= width {
		return path
	}
	return runewidth.TruncateLeft(path, w-width+1, "…")
}
