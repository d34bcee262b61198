package datamodel

import (
	"maps"
	"strings"
)

func init() {
	RegisterType(func() Entity { return &Task{} })
}

// TaskFields are the serialized fields of a Task.
type TaskFields struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Instruction string `json:"instruction"`
}

// Task is the root of the hierarchy. It holds evals.
type Task struct {
	Base
	fields TaskFields
}

var taskRelationships = Relationships{RelationshipEvals: TypeEval}

// NewTask constructs a validated task.
func NewTask(fields TaskFields, opts ...Option) (*Task, error) {
	t := &Task{fields: fields}
	if err := initEntity(t, opts); err != nil {
		return nil, err
	}
	return t, nil
}

// TypeName returns TypeTask.
func (t *Task) TypeName() TypeName { return TypeTask }

// MaxSchemaVersion is the newest task schema this build reads.
func (t *Task) MaxSchemaVersion() int { return 1 }

// Relationships declares the evals held by a task.
func (t *Task) Relationships() Relationships { return maps.Clone(taskRelationships) }

func (t *Task) record() any { return &t.fields }

// Validate checks the task fields.
func (t *Task) Validate() error {
	return validateTask(t.fields)
}

func validateTask(f TaskFields) error {
	if strings.TrimSpace(f.Name) == "" {
		return requiredError(TypeTask, "name")
	}
	if strings.TrimSpace(f.Instruction) == "" {
		return requiredError(TypeTask, "instruction")
	}
	return nil
}

// Fields returns a copy of the task fields.
func (t *Task) Fields() TaskFields { return t.fields }

// Name returns the task name.
func (t *Task) Name() string { return t.fields.Name }

// Update applies fn to a copy of the fields and commits it if valid.
func (t *Task) Update(fn func(*TaskFields)) error {
	next := t.fields
	fn(&next)
	if err := validateTask(next); err != nil {
		return err
	}
	t.fields = next
	return nil
}

// Evals loads the task's evals from disk.
func (t *Task) Evals() ([]*Eval, error) {
	return Children[Eval](t, RelationshipEvals)
}
