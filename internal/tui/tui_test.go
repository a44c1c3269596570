package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"stocktracker/internal/catalog"
	"stocktracker/internal/display"
	"stocktracker/internal/logger"
	"stocktracker/internal/uiloop"
	"stocktracker/internal/window"
)

type fakeSelector struct{ selected catalog.Instrument }

func (f *fakeSelector) Select(inst catalog.Instrument) { f.selected = inst }
func (f *fakeSelector) Selected() catalog.Instrument  { return f.selected }

func newModel(t *testing.T, withTray bool) (Model, *window.Presenter, *fakeSelector, *bool) {
	t.Helper()
	cat, err := catalog.New([]catalog.Instrument{
		{Name: "S&P 500", Symbol: "^GSPC"},
		{Name: "Apple", Symbol: "AAPL"},
	})
	require.NoError(t, err)
	sel := &fakeSelector{selected: cat.At(0)}
	quit := false
	win := window.New(cat, &display.State{}, sel, func() { quit = true }, logger.Nop())
	if withTray {
		win.AttachTray()
	}
	return New(context.Background(), uiloop.New(), win, 0), win, sel, &quit
}

func press(m Model, key tea.KeyMsg) Model {
	next, _ := m.Update(key)
	return next.(Model)
}

func TestDropdownSelectsInstrument(t *testing.T) {
	t.Parallel()

	// Arrange
	m, _, sel, _ := newModel(t, true)

	// Act: open, move down, confirm
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.open)
	require.Contains(t, m.View(), "> S&P 500")
	m = press(m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})

	// Assert
	require.False(t, m.open)
	require.Equal(t, "Apple", sel.selected.Name)
	require.Contains(t, m.View(), "Apple Loading...")
}

func TestDropdownEscapeKeepsSelection(t *testing.T) {
	t.Parallel()

	m, _, sel, _ := newModel(t, true)
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	m = press(m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(m, tea.KeyMsg{Type: tea.KeyEsc})

	require.False(t, m.open)
	require.Equal(t, "S&P 500", sel.selected.Name)
}

func TestCloseGestureHidesWithTray(t *testing.T) {
	t.Parallel()

	m, win, _, quit := newModel(t, true)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m = next.(Model)

	require.False(t, win.Visible())
	require.False(t, *quit)
	require.False(t, m.shown)
	require.NotNil(t, cmd)
	require.Empty(t, m.View())

	// restoring through the presenter re-enters the screen on the next update
	win.Show()
	next, _ = m.Update(tickMsg{})
	require.True(t, next.(Model).shown)
}

func TestCloseGestureQuitsWithoutTray(t *testing.T) {
	t.Parallel()

	m, win, _, quit := newModel(t, false)
	press(m, tea.KeyMsg{Type: tea.KeyCtrlC})

	require.True(t, *quit)
	require.True(t, win.Visible())
}

func TestTaskMsgRunsOnUpdate(t *testing.T) {
	t.Parallel()

	m, _, _, _ := newModel(t, true)
	ran := false
	_, cmd := m.Update(taskMsg(func() { ran = true }))

	require.True(t, ran)
	require.NotNil(t, cmd)

	_, cmd = m.Update(loopDoneMsg{})
	require.NotNil(t, cmd)
}
