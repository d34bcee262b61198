package datamodel

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
)

func init() {
	RegisterType(func() Entity { return &EvalRun{} })
}

// EvalRunFields are the serialized fields of an EvalRun.
type EvalRunFields struct {
	DatasetID       string             `json:"dataset_id"`
	TaskRunConfigID string             `json:"task_run_config_id"`
	Input           string             `json:"input"`
	Output          string             `json:"output"`
	Scores          map[string]float64 `json:"scores"`
}

func (f EvalRunFields) clone() EvalRunFields {
	f.Scores = maps.Clone(f.Scores)
	return f
}

// EvalRun is the result of judging one dataset item with an eval config.
type EvalRun struct {
	Base
	fields EvalRunFields
}

// NewEvalRun constructs a validated eval run. When the parent chain reaches
// an Eval, scores are checked against its output scores.
func NewEvalRun(fields EvalRunFields, opts ...Option) (*EvalRun, error) {
	r := &EvalRun{fields: fields.clone()}
	if err := initEntity(r, opts); err != nil {
		return nil, err
	}
	return r, nil
}

// TypeName returns TypeEvalRun.
func (r *EvalRun) TypeName() TypeName { return TypeEvalRun }

// MaxSchemaVersion is the newest eval run schema this build reads.
func (r *EvalRun) MaxSchemaVersion() int { return 1 }

func (r *EvalRun) record() any { return &r.fields }

// Validate checks the run fields and its scores against the ancestor eval.
func (r *EvalRun) Validate() error {
	return validateEvalRun(r.fields, &r.Base)
}

func validateEvalRun(f EvalRunFields, b *Base) error {
	if strings.TrimSpace(f.DatasetID) == "" {
		return requiredError(TypeEvalRun, "dataset_id")
	}
	if strings.TrimSpace(f.TaskRunConfigID) == "" {
		return requiredError(TypeEvalRun, "task_run_config_id")
	}
	for _, name := range slices.Sorted(maps.Keys(f.Scores)) {
		value := f.Scores[name]
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fieldError(TypeEvalRun, "scores."+name, ErrScoreRange, value, "must be a finite number")
		}
	}
	eval := ancestorOf[Eval](b)
	if eval == nil {
		return nil
	}
	return validateScores(f.Scores, eval.fields.OutputScores)
}

// validateScores checks the key set and the per-rating ranges.
func validateScores(scores map[string]float64, outputs []OutputScore) error {
	expected := make(map[string]struct{}, len(outputs))
	var missing []string
	for _, output := range outputs {
		expected[output.Name] = struct{}{}
		if _, ok := scores[output.Name]; !ok {
			missing = append(missing, output.Name)
		}
	}
	var unexpected []string
	for _, name := range slices.Sorted(maps.Keys(scores)) {
		if _, ok := expected[name]; !ok {
			unexpected = append(unexpected, name)
		}
	}
	if len(missing) > 0 || len(unexpected) > 0 {
		return fieldError(TypeEvalRun, "scores", ErrScoreSchemaMismatch, nil,
			"the scores produced by the evaluator must match the scores expected by the eval (missing %v, unexpected %v)", missing, unexpected)
	}
	for _, output := range outputs {
		lo, hi, ok := output.Type.ScoreRange()
		if !ok {
			continue
		}
		value := scores[output.Name]
		if value < lo || value > hi {
			return fieldError(TypeEvalRun, "scores."+output.Name, ErrScoreRange, value,
				"%s score must be a float between %.1f and %.1f", output.Type, lo, hi)
		}
	}
	return nil
}

// Fields returns a copy of the run fields.
func (r *EvalRun) Fields() EvalRunFields { return r.fields.clone() }

// DatasetID returns the judged dataset item id.
func (r *EvalRun) DatasetID() string { return r.fields.DatasetID }

// TaskRunConfigID returns the id of the config that produced the output.
func (r *EvalRun) TaskRunConfigID() string { return r.fields.TaskRunConfigID }

// Input returns the judged input.
func (r *EvalRun) Input() string { return r.fields.Input }

// Output returns the judged output.
func (r *EvalRun) Output() string { return r.fields.Output }

// Scores returns a copy of the scores.
func (r *EvalRun) Scores() map[string]float64 { return maps.Clone(r.fields.Scores) }

// Score returns one score by name.
func (r *EvalRun) Score(name string) (float64, bool) {
	value, ok := r.fields.Scores[name]
	return value, ok
}

// Update applies fn to a copy of the fields and commits it if valid.
func (r *EvalRun) Update(fn func(*EvalRunFields)) error {
	next := r.fields.clone()
	fn(&next)
	if err := validateEvalRun(next, &r.Base); err != nil {
		return err
	}
	r.fields = next
	return nil
}

// SetScores replaces the scores.
func (r *EvalRun) SetScores(scores map[string]float64) error {
	return r.Update(func(f *EvalRunFields) { f.Scores = maps.Clone(scores) })
}

// SetParent attaches the owning eval config.
func (r *EvalRun) SetParent(parent Parent) error { return SetParent(r, parent) }

// ParentEvalConfig returns the owning eval config, or nil.
func (r *EvalRun) ParentEvalConfig() *EvalConfig { return ParentOfType[EvalConfig](r) }

// ParentEval returns the eval that governs the run's score schema, or nil.
func (r *EvalRun) ParentEval() *Eval { return ParentOfType[Eval](r) }

// String summarizes the run for logs.
func (r *EvalRun) String() string {
	return fmt.Sprintf("eval_run %s dataset=%s scores=%v", r.id, r.fields.DatasetID, r.fields.Scores)
}
