package browse

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderPlain renders the fully expanded tree as indented text, one
// entity per line. It is used when the output is not a terminal.
func RenderPlain(state State, noColor bool) string {
	state = Reduce(state, ActionExpandAll)
	var b strings.Builder
	for _, row := range Flatten(state) {
		b.WriteString(strings.Repeat("  ", row.Depth))
		b.WriteString(stylize(typeLabel(row.Node.Type), noColor, typeColor(row.Node.Type)))
		b.WriteString(" ")
		b.WriteString(row.Node.Name)
		b.WriteString(" (")
		b.WriteString(row.Node.ID)
		b.WriteString(")")
		if row.Node.Summary != "" {
			b.WriteString(" ")
			b.WriteString(stylize(row.Node.Summary, noColor, lipgloss.Color("242")))
		}
		b.WriteString("\n")
	}
	b.WriteString(stylize(formatCounts(state), noColor, lipgloss.Color("244")))
	b.WriteString("\n")
	return b.String()
}

// renderHeader renders the counts line above the table.
func renderHeader(state State, noColor bool) string {
	return stylize(formatCounts(state), noColor, lipgloss.Color("33"))
}

// renderFooter renders the selected path and key help.
func renderFooter(state State, noColor bool) string {
	help := "up/down move  right/left expand/collapse  e/c all  q quit"
	row, ok := Selected(state)
	if !ok {
		return stylize(help, noColor, lipgloss.Color("244"))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		stylize(row.Node.Path, noColor, lipgloss.Color("240")),
		stylize(help, noColor, lipgloss.Color("244")),
	)
}
