// Package browse renders a loaded entity tree, either as a Bubble Tea
// browser or as plain indented text.
package browse

import (
	"evalstore/internal/datamodel"
	"evalstore/internal/store"
)

// Node is one entity in the browsable tree.
type Node struct {
	ID       string
	Type     datamodel.TypeName
	Name     string
	Summary  string
	Path     string
	Children []Node
}

// Row is a visible line of the tree.
type Row struct {
	Node        *Node
	Depth       int
	Expanded    bool
	HasChildren bool
}

// State captures the browser state. It is treated as a value: Reduce
// returns a new State and never mutates its input.
type State struct {
	Roots    []Node
	Expanded map[string]bool
	Cursor   int
	Problems int
}

// NewState builds the initial state with tasks collapsed.
func NewState(tree store.Tree, problems int) State {
	roots := make([]Node, 0, len(tree.Tasks))
	for _, task := range tree.Tasks {
		roots = append(roots, taskNode(task))
	}
	return State{Roots: roots, Expanded: map[string]bool{}, Problems: problems}
}

func taskNode(n store.TaskNode) Node {
	node := Node{
		ID:      n.Task.ID(),
		Type:    datamodel.TypeTask,
		Name:    n.Task.Name(),
		Summary: summarizeTask(n.Task),
		Path:    n.Task.Path(),
	}
	for _, eval := range n.Evals {
		node.Children = append(node.Children, evalNode(eval))
	}
	return node
}

func evalNode(n store.EvalNode) Node {
	node := Node{
		ID:      n.Eval.ID(),
		Type:    datamodel.TypeEval,
		Name:    n.Eval.Name(),
		Summary: summarizeEval(n.Eval),
		Path:    n.Eval.Path(),
	}
	for _, config := range n.Configs {
		node.Children = append(node.Children, configNode(config))
	}
	return node
}

func configNode(n store.ConfigNode) Node {
	node := Node{
		ID:      n.Config.ID(),
		Type:    datamodel.TypeEvalConfig,
		Name:    n.Config.Name(),
		Summary: summarizeConfig(n.Config),
		Path:    n.Config.Path(),
	}
	for _, run := range n.Runs {
		node.Children = append(node.Children, Node{
			ID:      run.ID(),
			Type:    datamodel.TypeEvalRun,
			Name:    run.DatasetID(),
			Summary: summarizeRun(run),
			Path:    run.Path(),
		})
	}
	return node
}

// Flatten lists the visible rows in display order.
func Flatten(state State) []Row {
	var rows []Row
	var walk func(nodes []Node, depth int)
	walk = func(nodes []Node, depth int) {
		for i := range nodes {
			node := &nodes[i]
			expanded := state.Expanded[node.ID]
			rows = append(rows, Row{
				Node:        node,
				Depth:       depth,
				Expanded:    expanded,
				HasChildren: len(node.Children) > 0,
			})
			if expanded {
				walk(node.Children, depth+1)
			}
		}
	}
	walk(state.Roots, 0)
	return rows
}

// Selected returns the row under the cursor.
func Selected(state State) (Row, bool) {
	rows := Flatten(state)
	if state.Cursor < 0 || state.Cursor >= len(rows) {
		return Row{}, false
	}
	return rows[state.Cursor], true
}
