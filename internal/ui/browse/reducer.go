package browse

import "maps"

// Action is a browser key action.
type Action int

const (
	ActionUp Action = iota
	ActionDown
	ActionExpand
	ActionCollapse
	ActionToggle
	ActionExpandAll
	ActionCollapseAll
	ActionTop
	ActionBottom
)

// Reduce applies an action to the browser state.
func Reduce(state State, action Action) State {
	state.Expanded = maps.Clone(state.Expanded)
	if state.Expanded == nil {
		state.Expanded = map[string]bool{}
	}
	rows := Flatten(state)
	switch action {
	case ActionUp:
		state.Cursor--
	case ActionDown:
		state.Cursor++
	case ActionTop:
		state.Cursor = 0
	case ActionBottom:
		state.Cursor = len(rows) - 1
	case ActionExpand:
		if row, ok := rowAt(rows, state.Cursor); ok && row.HasChildren {
			state.Expanded[row.Node.ID] = true
		}
	case ActionCollapse:
		state = collapse(state, rows)
	case ActionToggle:
		if row, ok := rowAt(rows, state.Cursor); ok && row.HasChildren {
			if row.Expanded {
				delete(state.Expanded, row.Node.ID)
			} else {
				state.Expanded[row.Node.ID] = true
			}
		}
	case ActionExpandAll:
		expandAll(state.Roots, state.Expanded)
	case ActionCollapseAll:
		selected, ok := rowAt(rows, state.Cursor)
		state.Expanded = map[string]bool{}
		state.Cursor = 0
		if ok {
			state.Cursor = rootIndex(state.Roots, selected.Node)
		}
	}
	return clampCursor(state)
}

// collapse closes the selected row, or moves to its parent when the row is
// already closed.
func collapse(state State, rows []Row) State {
	row, ok := rowAt(rows, state.Cursor)
	if !ok {
		return state
	}
	if row.Expanded {
		delete(state.Expanded, row.Node.ID)
		return state
	}
	for i := state.Cursor - 1; i >= 0; i-- {
		if rows[i].Depth < row.Depth {
			state.Cursor = i
			break
		}
	}
	return state
}

func expandAll(nodes []Node, expanded map[string]bool) {
	for i := range nodes {
		if len(nodes[i].Children) > 0 {
			expanded[nodes[i].ID] = true
			expandAll(nodes[i].Children, expanded)
		}
	}
}

// rootIndex finds the root holding node.
func rootIndex(roots []Node, node *Node) int {
	for i := range roots {
		if contains(&roots[i], node) {
			return i
		}
	}
	return 0
}

func contains(root *Node, node *Node) bool {
	if root == node {
		return true
	}
	for i := range root.Children {
		if contains(&root.Children[i], node) {
			return true
		}
	}
	return false
}

func rowAt(rows []Row, index int) (Row, bool) {
	if index < 0 || index >= len(rows) {
		return Row{}, false
	}
	return rows[index], true
}

func clampCursor(state State) State {
	count := len(Flatten(state))
	if state.Cursor >= count {
		state.Cursor = count - 1
	}
	if state.Cursor < 0 {
		state.Cursor = 0
	}
	return state
}
