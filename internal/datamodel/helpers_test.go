package datamodel

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func validTaskFields() TaskFields {
	return TaskFields{Name: "Test Task", Instruction: "Test instruction"}
}

func validEvalFields(scores ...OutputScore) EvalFields {
	if len(scores) == 0 {
		scores = []OutputScore{{Name: "accuracy", Type: RatingFiveStar}}
	}
	return EvalFields{
		Name:                "Test Eval",
		EvalSetFilterID:     "tag::tag1",
		EvalConfigsFilterID: "tag::tag2",
		OutputScores:        scores,
	}
}

func validEvalConfigFields() EvalConfigFields {
	return EvalConfigFields{
		Name:       "Test Eval Config",
		ConfigType: EvalConfigTypeGEval,
		Properties: map[string]any{"eval_steps": []string{"step1", "step2"}},
		Model: DataSource{
			Type: DataSourceSynthetic,
			Properties: map[string]any{
				"model_name":     "gpt-4",
				"model_provider": "openai",
				"adapter_name":   "openai_compatible",
			},
		},
		Prompt: &Prompt{Name: "Test Prompt", Prompt: "Test prompt"},
	}
}

func validEvalRunFields(scores map[string]float64) EvalRunFields {
	return EvalRunFields{
		DatasetID:       "dataset123",
		TaskRunConfigID: "config456",
		Input:           "test input",
		Output:          "test output",
		Scores:          scores,
	}
}

func mustTask(t *testing.T, opts ...Option) *Task {
	t.Helper()
	task, err := NewTask(validTaskFields(), opts...)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	return task
}

func mustEval(t *testing.T, fields EvalFields, opts ...Option) *Eval {
	t.Helper()
	eval, err := NewEval(fields, opts...)
	if err != nil {
		t.Fatalf("new eval: %v", err)
	}
	return eval
}

func mustEvalConfig(t *testing.T, opts ...Option) *EvalConfig {
	t.Helper()
	config, err := NewEvalConfig(validEvalConfigFields(), opts...)
	if err != nil {
		t.Fatalf("new eval config: %v", err)
	}
	return config
}

// configUnder returns an eval config attached to an eval with the scores.
func configUnder(t *testing.T, scores ...OutputScore) *EvalConfig {
	t.Helper()
	eval := mustEval(t, validEvalFields(scores...))
	return mustEvalConfig(t, WithParent(eval))
}

// savedTree saves a task with one eval and one config under dir.
func savedTree(t *testing.T, dir string) (*Task, *Eval, *EvalConfig) {
	t.Helper()
	task := mustTask(t, WithPath(filepath.Join(dir, TypeTask.Filename())))
	if err := Save(task); err != nil {
		t.Fatalf("save task: %v", err)
	}
	eval := mustEval(t, validEvalFields(OutputScore{Name: "accuracy", Type: RatingPassFail}), WithParent(task))
	if err := Save(eval); err != nil {
		t.Fatalf("save eval: %v", err)
	}
	config := mustEvalConfig(t, WithParent(eval))
	if err := Save(config); err != nil {
		t.Fatalf("save config: %v", err)
	}
	return task, eval, config
}

// rewriteField loads the JSON file at path, sets key and writes it back.
func rewriteField(t *testing.T, path, key string, value any) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	if value == nil {
		delete(fields, key)
	} else {
		fields[key] = value
	}
	out, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal %s: %v", path, err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// dummyParent is a parent type that declares no children.
type dummyParent struct {
	Base
}

func (d *dummyParent) TypeName() TypeName           { return "dummy" }
func (d *dummyParent) MaxSchemaVersion() int        { return 1 }
func (d *dummyParent) Validate() error              { return nil }
func (d *dummyParent) record() any                  { return &struct{}{} }
func (d *dummyParent) Relationships() Relationships { return Relationships{} }
