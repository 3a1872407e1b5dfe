package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"indentguard/internal/driver"
	"indentguard/internal/observ"
)

type progressModel struct {
	title   string
	events  <-chan driver.PhaseEvent
	spinner spinner.Model
	prog    progress.Model
	items   []fileItem
	index   map[string]int
	width   int
	done    bool
}

type fileItem struct {
	path     string
	status   string
	stage    string
	finished bool
	problems int
}

type eventMsg driver.PhaseEvent
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders per-file progress.
func NewProgressModel(title string, files []string, events <-chan driver.PhaseEvent) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76 // Default width

	items := make([]fileItem, 0, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		items = append(items, fileItem{path: file, status: "queued"})
		index[file] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(driver.PhaseEvent(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
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
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	finished, problems := m.totals()
	header := fmt.Sprintf("%s %d/%d", m.title, finished, len(m.items))
	if problems > 0 {
		header += fmt.Sprintf(", %d problem(s)", problems)
	}
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 12
	nameWidth := m.width - statusWidth - 4
	if nameWidth < 20 {
		nameWidth = 20
	}

	for _, item := range m.items {
		name := truncate(item.path, nameWidth)
		statusStyled := styleStatus(item).Render(fmt.Sprintf("%12s", item.status))
		b.WriteString(fmt.Sprintf("  %s %s\n", statusStyled, name))
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")

	return b.String()
}

func (m *progressModel) totals() (finished, problems int) {
	for _, item := range m.items {
		if item.finished {
			finished++
			problems += item.problems
		}
	}
	return finished, problems
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev driver.PhaseEvent) tea.Cmd {
	idx, ok := m.index[ev.Path]
	if !ok {
		return nil
	}
	item := &m.items[idx]
	switch {
	case ev.Done:
		item.finished = true
		item.problems = ev.Problems
		item.stage = ev.Name
		item.status = doneLabel(ev)
	case ev.Status == driver.PhaseStart && !item.finished:
		item.stage = ev.Name
		item.status = stageLabel(ev.Name)
	}

	totalProgress := 0.0
	for _, it := range m.items {
		if it.finished {
			totalProgress += 1.0
		} else {
			totalProgress += progressFromStage(it.stage)
		}
	}
	return m.prog.SetPercent(totalProgress / float64(len(m.items)))
}

func doneLabel(ev driver.PhaseEvent) string {
	switch {
	case ev.Name == observ.StageLoad:
		return "error"
	case ev.Problems == 0:
		return "ok"
	case ev.Problems == 1:
		return "1 problem"
	default:
		return fmt.Sprintf("%d problems", ev.Problems)
	}
}

func progressFromStage(stage string) float64 {
	switch stage {
	case observ.StageLoad:
		return 0.1
	case observ.StageParse:
		return 0.3
	case observ.StageCheck:
		return 0.6
	case observ.StageFix:
		return 0.8
	default:
		return 0.0
	}
}

func stageLabel(stage string) string {
	switch stage {
	case observ.StageLoad:
		return "loading"
	case observ.StageParse:
		return "parsing"
	case observ.StageCheck:
		return "checking"
	case observ.StageFix:
		return "fixing"
	default:
		return ""
	}
}

func styleStatus(item fileItem) lipgloss.Style {
	switch {
	case item.status == "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case item.finished && item.problems > 0:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	case item.finished:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case item.status == "queued":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
