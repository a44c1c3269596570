// Package tui renders the window presenter as a bubbletea program. The
// program's update goroutine drains the UI loop, which makes it the UI
// context.
package tui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"stocktracker/internal/calc"
	"stocktracker/internal/uiloop"
	"stocktracker/internal/window"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("0")).Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("0"))
	gainStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
)

type (
	taskMsg     func()
	loopDoneMsg struct{}
	tickMsg     time.Time
)

// Model is the bubbletea model of the main window.
type Model struct {
	ctx      context.Context
	loop     *uiloop.Loop
	win      *window.Presenter
	interval time.Duration

	open   bool // dropdown expanded
	cursor int
	shown  bool // alternate screen active
	err    string
}

func New(ctx context.Context, loop *uiloop.Loop, win *window.Presenter, interval time.Duration) Model {
	return Model{ctx: ctx, loop: loop, win: win, interval: interval, shown: true}
}

// Program wraps m in a bubbletea program on the alternate screen.
func Program(m Model, opts ...tea.ProgramOption) *tea.Program {
	return tea.NewProgram(m, append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(m.ctx)}, opts...)...)
}

func (m Model) waitForTask() tea.Cmd {
	return func() tea.Msg {
		fn, ok := m.loop.Next(m.ctx)
		if !ok {
			return loopDoneMsg{}
		}
		return taskMsg(fn)
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForTask(), m.tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case taskMsg:
		msg()
		cmd = m.waitForTask()
	case loopDoneMsg:
		return m, tea.Quit
	case tickMsg:
		cmd = m.tick()
	case tea.KeyMsg:
		if m.win.Visible() {
			m.handleKey(msg)
		}
	}
	screen := m.syncScreen()
	return m, tea.Batch(cmd, screen)
}

// syncScreen leaves or re-enters the alternate screen when the presenter's
// visibility changed.
func (m *Model) syncScreen() tea.Cmd {
	switch v := m.win.Visible(); {
	case v && !m.shown:
		m.shown = true
		return tea.EnterAltScreen
	case !v && m.shown:
		m.shown = false
		m.open = false
		return tea.ExitAltScreen
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	key := msg.String()
	if !m.open {
		switch key {
		case "enter", " ":
			m.open = true
			m.cursor = indexOf(m.win.Options(), m.win.Selected())
		case "q", "esc", "ctrl+c":
			m.win.Close()
		}
		return
	}

	opts := m.win.Options()
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(opts)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.open = false
		m.err = ""
		if err := m.win.Select(opts[m.cursor]); err != nil {
			m.err = err.Error()
		}
	case "esc":
		m.open = false
	case "ctrl+c":
		m.open = false
		m.win.Close()
	}
}

func indexOf(items []string, s string) int {
	for i, it := range items {
		if it == s {
			return i
		}
	}
	return 0
}

func (m Model) View() string {
	if !m.win.Visible() {
		return ""
	}
	v := m.win.View()

	var b strings.Builder
	b.WriteString(titleStyle.Render(v.Title))
	b.WriteString("\n\n")
	b.WriteString(renderChange(v.Today, v.Loading))
	b.WriteString("\n")
	b.WriteString(renderChange(v.Yesterday, v.Loading))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Instrument:") + " " + m.win.Selected() + " ▾")
	if m.open {
		for i, name := range m.win.Options() {
			b.WriteString("\n")
			if i == m.cursor {
				b.WriteString(cursorStyle.Render("> " + name))
			} else {
				b.WriteString("  " + name)
			}
		}
	}
	if m.err != "" {
		b.WriteString("\n" + lossStyle.Render(m.err))
	}
	if !v.AsOf.IsZero() {
		b.WriteString("\n" + dimStyle.Render("as of "+v.AsOf.Local().Format(time.TimeOnly)))
	}
	b.WriteString("\n" + dimStyle.Render("enter: choose instrument  q: close"))
	return boxStyle.Render(b.String())
}

func renderChange(c window.Change, loading bool) string {
	label := labelStyle.Render(c.Label + ":")
	if loading {
		return label + " " + dimStyle.Render(c.Text)
	}
	style := lossStyle
	if c.Trend == calc.Up {
		style = gainStyle
	}
	return label + " " + style.Render(c.Text)
}
