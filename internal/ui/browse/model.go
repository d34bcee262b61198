package browse

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model is the Bubble Tea tree browser.
type Model struct {
	state   State
	table   table.Model
	noColor bool
}

// Options configures the browser model.
type Options struct {
	NoColor bool
}

// NewModel constructs a browser over state.
func NewModel(state State, opts Options) Model {
	t := table.New(
		table.WithColumns(defaultColumns()),
		table.WithRows(rowsForState(state)),
		table.WithFocused(true),
	)
	t.SetStyles(tableStyles(opts.NoColor))
	m := Model{state: state, table: t, noColor: opts.NoColor}
	m.table.SetCursor(state.Cursor)
	return m
}

// State returns the current browser state.
func (m Model) State() State {
	return m.state
}

// Init has no startup work.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles window resizes and key presses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetWidth(typed.Width)
		m.table.SetHeight(max(typed.Height-5, 1))
		m.table.SetColumns(columnsForWidth(typed.Width))
		return m, nil
	case tea.KeyMsg:
		if typed.String() == "q" || typed.String() == "ctrl+c" || typed.String() == "esc" {
			return m, tea.Quit
		}
		action, ok := keyAction(typed.String())
		if !ok {
			return m, nil
		}
		m.state = Reduce(m.state, action)
		m.table.SetRows(rowsForState(m.state))
		m.table.SetCursor(m.state.Cursor)
		return m, nil
	}
	return m, nil
}

// View renders the browser.
func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		renderHeader(m.state, m.noColor),
		m.table.View(),
		renderFooter(m.state, m.noColor),
	)
}

// keyAction maps a key to a browser action.
func keyAction(key string) (Action, bool) {
	switch key {
	case "up", "k":
		return ActionUp, true
	case "down", "j":
		return ActionDown, true
	case "right", "l":
		return ActionExpand, true
	case "left", "h":
		return ActionCollapse, true
	case "enter", " ":
		return ActionToggle, true
	case "e":
		return ActionExpandAll, true
	case "c":
		return ActionCollapseAll, true
	case "g", "home":
		return ActionTop, true
	case "G", "end":
		return ActionBottom, true
	}
	return 0, false
}
