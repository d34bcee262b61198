package datamodel

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

func init() {
	RegisterType(func() Entity { return &Eval{} })
}

// EvalState toggles whether an eval is in use.
type EvalState string

const (
	EvalStateEnabled  EvalState = "enabled"
	EvalStateDisabled EvalState = "disabled"
)

// OutputScore declares one score an eval produces.
type OutputScore struct {
	Name        string     `json:"name"`
	Instruction string     `json:"instruction,omitempty"`
	Type        RatingType `json:"type"`
}

// EvalFields are the serialized fields of an Eval.
type EvalFields struct {
	Name                string        `json:"name"`
	Description         string        `json:"description,omitempty"`
	State               EvalState     `json:"state"`
	CurrentConfigID     string        `json:"current_config_id,omitempty"`
	EvalSetFilterID     string        `json:"eval_set_filter_id"`
	EvalConfigsFilterID string        `json:"eval_configs_filter_id"`
	OutputScores        []OutputScore `json:"output_scores"`
}

func (f EvalFields) clone() EvalFields {
	f.OutputScores = slices.Clone(f.OutputScores)
	return f
}

// Eval defines what is scored for a task. It holds eval configs.
type Eval struct {
	Base
	fields EvalFields
}

var evalRelationships = Relationships{RelationshipConfigs: TypeEvalConfig}

// NewEval constructs a validated eval. State defaults to enabled.
func NewEval(fields EvalFields, opts ...Option) (*Eval, error) {
	e := &Eval{fields: fields.clone()}
	if err := initEntity(e, opts); err != nil {
		return nil, err
	}
	return e, nil
}

// TypeName returns TypeEval.
func (e *Eval) TypeName() TypeName { return TypeEval }

// MaxSchemaVersion is the newest eval schema this build reads.
func (e *Eval) MaxSchemaVersion() int { return 1 }

// Relationships declares the configs held by an eval.
func (e *Eval) Relationships() Relationships { return maps.Clone(evalRelationships) }

func (e *Eval) record() any { return &e.fields }

func (e *Eval) applyDefaults() {
	if e.fields.State == "" {
		e.fields.State = EvalStateEnabled
	}
}

// Validate checks the eval fields.
func (e *Eval) Validate() error {
	return validateEval(e.fields)
}

func validateEval(f EvalFields) error {
	if strings.TrimSpace(f.Name) == "" {
		return requiredError(TypeEval, "name")
	}
	switch f.State {
	case EvalStateEnabled, EvalStateDisabled:
	default:
		return fieldError(TypeEval, "state", ErrInvalidValue, f.State, "must be one of %s, %s", EvalStateEnabled, EvalStateDisabled)
	}
	if strings.TrimSpace(f.EvalSetFilterID) == "" {
		return requiredError(TypeEval, "eval_set_filter_id")
	}
	if strings.TrimSpace(f.EvalConfigsFilterID) == "" {
		return requiredError(TypeEval, "eval_configs_filter_id")
	}
	return validateOutputScores(f.OutputScores)
}

func validateOutputScores(scores []OutputScore) error {
	if len(scores) == 0 {
		return fieldError(TypeEval, "output_scores", ErrEmptyOutputScores, nil, "output_scores are required, and must have at least one score")
	}
	seen := make(map[string]int, len(scores))
	for i, score := range scores {
		field := fmt.Sprintf("output_scores[%d]", i)
		name := strings.TrimSpace(score.Name)
		if name == "" {
			return requiredError(TypeEval, field+".name")
		}
		switch {
		case score.Type == RatingCustom:
			return fieldError(TypeEval, field+".type", ErrCustomScoreNotAllowed, nil, "custom scores are not supported in evaluators")
		case !score.Type.Valid():
			return fieldError(TypeEval, field+".type", ErrInvalidValue, score.Type, "must be one of %s, %s, %s", RatingFiveStar, RatingPassFail, RatingPassFailCritical)
		}
		key := strings.ToLower(name)
		if prev, dup := seen[key]; dup {
			return fieldError(TypeEval, field+".name", ErrDuplicateOutputScoreName, score.Name, "output_scores must have unique names (conflicts with output_scores[%d])", prev)
		}
		seen[key] = i
	}
	return nil
}

// Fields returns a copy of the eval fields.
func (e *Eval) Fields() EvalFields { return e.fields.clone() }

// Name returns the eval name.
func (e *Eval) Name() string { return e.fields.Name }

// State returns the eval state.
func (e *Eval) State() EvalState { return e.fields.State }

// OutputScores returns a copy of the declared output scores.
func (e *Eval) OutputScores() []OutputScore { return slices.Clone(e.fields.OutputScores) }

// OutputScore returns the declared score with the given name.
func (e *Eval) OutputScore(name string) (OutputScore, bool) {
	for _, score := range e.fields.OutputScores {
		if score.Name == name {
			return score, true
		}
	}
	return OutputScore{}, false
}

// Update applies fn to a copy of the fields and commits it if valid.
func (e *Eval) Update(fn func(*EvalFields)) error {
	next := e.fields.clone()
	fn(&next)
	if err := validateEval(next); err != nil {
		return err
	}
	e.fields = next
	return nil
}

// SetOutputScores replaces the declared output scores. Runs already attached
// in memory are not rechecked until they are next saved.
func (e *Eval) SetOutputScores(scores []OutputScore) error {
	return e.Update(func(f *EvalFields) { f.OutputScores = slices.Clone(scores) })
}

// SetParent attaches the owning task.
func (e *Eval) SetParent(parent Parent) error { return SetParent(e, parent) }

// ParentTask returns the owning task, or nil.
func (e *Eval) ParentTask() *Task { return ParentOfType[Task](e) }

// Configs loads the eval's configs from disk.
func (e *Eval) Configs() ([]*EvalConfig, error) {
	return Children[EvalConfig](e, RelationshipConfigs)
}
