package browse

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// tableStyles returns table styles for the browser.
func tableStyles(noColor bool) table.Styles {
	styles := table.DefaultStyles()
	if noColor {
		styles.Selected = styles.Selected.Foreground(lipgloss.NoColor{}).Reverse(true)
		return styles
	}
	styles.Header = styles.Header.Foreground(lipgloss.Color("252"))
	return styles
}

func defaultColumns() []table.Column {
	return columnsForWidth(100)
}

// columnsForWidth gives the summary column whatever the fixed columns leave.
func columnsForWidth(width int) []table.Column {
	nameWidth := 36
	typeWidth := 8
	idWidth := 10
	summaryWidth := width - nameWidth - typeWidth - idWidth - 8
	if summaryWidth < 10 {
		summaryWidth = 10
	}
	return []table.Column{
		{Title: "Name", Width: nameWidth},
		{Title: "Type", Width: typeWidth},
		{Title: "ID", Width: idWidth},
		{Title: "Summary", Width: summaryWidth},
	}
}

// rowsForState converts visible rows into table rows.
func rowsForState(state State) []table.Row {
	visible := Flatten(state)
	rows := make([]table.Row, 0, len(visible))
	for _, row := range visible {
		rows = append(rows, table.Row{
			formatName(row),
			typeLabel(row.Node.Type),
			shortID(row.Node.ID),
			row.Node.Summary,
		})
	}
	return rows
}

// shortID keeps the random tail of a uuid v7, which differs between
// siblings created in the same millisecond.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}
