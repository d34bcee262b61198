package spec

import (
	"fmt"
	"strings"
)

// Issue captures a structural problem in a definition file.
type Issue struct {
	Field   string
	Message string
}

// ValidationError reports one or more validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error returns a readable message for validation failures.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return ""
	}
	parts := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return fmt.Sprintf("definition validation failed: %s", strings.Join(parts, "; "))
}

type issueCollector struct {
	issues []Issue
}

func (collector *issueCollector) add(field, message string) {
	collector.issues = append(collector.issues, Issue{Field: field, Message: message})
}

func (collector *issueCollector) result() error {
	if len(collector.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: collector.issues}
}

// Validate checks the definition envelope. Entity rules are enforced by
// the datamodel when the definition is built.
func Validate(def Definition) error {
	collector := &issueCollector{}
	if def.Version == 0 {
		collector.add("version", "is required")
	} else if def.Version != 1 {
		collector.add("version", fmt.Sprintf("unsupported version %d", def.Version))
	}

	sections := def.sections()
	switch len(sections) {
	case 0:
		collector.add("definition", "must include one of task, eval, eval_config, eval_run")
	case 1:
	default:
		collector.add("definition", fmt.Sprintf("must include exactly one section, got %s", strings.Join(sections, ", ")))
	}

	if def.Eval != nil {
		for i, score := range def.Eval.OutputScores {
			if strings.TrimSpace(score.Type) == "" {
				collector.add(fmt.Sprintf("eval.output_scores[%d].type", i), "is required")
			}
		}
	}
	if def.EvalConfig != nil && def.EvalConfig.Prompt == nil {
		collector.add("eval_config.prompt", "is required")
	}
	return collector.result()
}

func (def Definition) sections() []string {
	var sections []string
	if def.Task != nil {
		sections = append(sections, "task")
	}
	if def.Eval != nil {
		sections = append(sections, "eval")
	}
	if def.EvalConfig != nil {
		sections = append(sections, "eval_config")
	}
	if def.EvalRun != nil {
		sections = append(sections, "eval_run")
	}
	return sections
}
