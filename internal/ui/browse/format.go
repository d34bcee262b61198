package browse

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"evalstore/internal/datamodel"
)

const summaryWidth = 60

func summarizeTask(task *datamodel.Task) string {
	return truncate(task.Fields().Instruction, summaryWidth)
}

func summarizeEval(eval *datamodel.Eval) string {
	scores := eval.OutputScores()
	parts := make([]string, 0, len(scores))
	for _, score := range scores {
		parts = append(parts, score.Name+":"+string(score.Type))
	}
	summary := strings.Join(parts, " ")
	if eval.State() == datamodel.EvalStateDisabled {
		summary = "[disabled] " + summary
	}
	return truncate(summary, summaryWidth)
}

func summarizeConfig(config *datamodel.EvalConfig) string {
	summary := string(config.ConfigType()) + " / " + string(config.Model().Type)
	if name, ok := config.Model().Properties["model_name"].(string); ok && name != "" {
		summary += " " + name
	}
	return truncate(summary, summaryWidth)
}

func summarizeRun(run *datamodel.EvalRun) string {
	scores := run.Scores()
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+strconv.FormatFloat(scores[name], 'g', -1, 64))
	}
	return truncate(strings.Join(parts, " "), summaryWidth)
}

// truncate shortens text to width runes, marking the cut with "...".
func truncate(text string, width int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

// marker shows whether a row can be expanded.
func marker(row Row) string {
	switch {
	case !row.HasChildren:
		return " "
	case row.Expanded:
		return "-"
	default:
		return "+"
	}
}

// formatName indents a row's name by depth.
func formatName(row Row) string {
	return strings.Repeat("  ", row.Depth) + marker(row) + " " + row.Node.Name
}

// typeLabel is the short column label of an entity type.
func typeLabel(name datamodel.TypeName) string {
	switch name {
	case datamodel.TypeTask:
		return "task"
	case datamodel.TypeEval:
		return "eval"
	case datamodel.TypeEvalConfig:
		return "config"
	case datamodel.TypeEvalRun:
		return "run"
	}
	return string(name)
}

func typeColor(name datamodel.TypeName) lipgloss.Color {
	switch name {
	case datamodel.TypeTask:
		return lipgloss.Color("33")
	case datamodel.TypeEval:
		return lipgloss.Color("35")
	case datamodel.TypeEvalConfig:
		return lipgloss.Color("178")
	}
	return lipgloss.Color("245")
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}

func formatCounts(state State) string {
	counts := map[datamodel.TypeName]int{}
	var walk func(nodes []Node)
	walk = func(nodes []Node) {
		for _, node := range nodes {
			counts[node.Type]++
			walk(node.Children)
		}
	}
	walk(state.Roots)
	line := fmt.Sprintf("Tasks: %d Evals: %d Configs: %d Runs: %d",
		counts[datamodel.TypeTask], counts[datamodel.TypeEval], counts[datamodel.TypeEvalConfig], counts[datamodel.TypeEvalRun])
	if state.Problems > 0 {
		line += fmt.Sprintf(" Problems: %d", state.Problems)
	}
	return line
}
