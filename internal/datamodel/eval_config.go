package datamodel

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
)

func init() {
	RegisterType(func() Entity { return &EvalConfig{} })
}

// EvalConfigType selects the judging algorithm of an eval config.
type EvalConfigType string

const (
	EvalConfigTypeGEval      EvalConfigType = "g_eval"
	EvalConfigTypeLLMAsJudge EvalConfigType = "llm_as_judge"
)

// Valid reports whether t is a known config type.
func (t EvalConfigType) Valid() bool {
	return t == EvalConfigTypeGEval || t == EvalConfigTypeLLMAsJudge
}

// PropertyEvalSteps is the properties key holding g_eval steps.
const PropertyEvalSteps = "eval_steps"

// EvalConfigFields are the serialized fields of an EvalConfig.
type EvalConfigFields struct {
	Name       string         `json:"name"`
	ConfigType EvalConfigType `json:"config_type"`
	Properties map[string]any `json:"properties"`
	Model      DataSource     `json:"model"`
	Prompt     *Prompt        `json:"prompt"`
}

func (f EvalConfigFields) clone() EvalConfigFields {
	f.Properties = cloneProperties(f.Properties)
	f.Model = f.Model.clone()
	f.Prompt = f.Prompt.clone()
	return f
}

// EvalConfig is one way of running an eval: a judge model, prompt and
// algorithm. It holds eval runs.
type EvalConfig struct {
	Base
	fields EvalConfigFields
}

var evalConfigRelationships = Relationships{RelationshipRuns: TypeEvalRun}

// NewEvalConfig constructs a validated eval config.
func NewEvalConfig(fields EvalConfigFields, opts ...Option) (*EvalConfig, error) {
	c := &EvalConfig{fields: fields.clone()}
	if err := initEntity(c, opts); err != nil {
		return nil, err
	}
	return c, nil
}

// TypeName returns TypeEvalConfig.
func (c *EvalConfig) TypeName() TypeName { return TypeEvalConfig }

// MaxSchemaVersion is the newest eval config schema this build reads.
func (c *EvalConfig) MaxSchemaVersion() int { return 1 }

// Relationships declares the runs held by an eval config.
func (c *EvalConfig) Relationships() Relationships { return maps.Clone(evalConfigRelationships) }

func (c *EvalConfig) record() any { return &c.fields }

// Validate checks the eval config fields.
func (c *EvalConfig) Validate() error {
	return validateEvalConfig(c.fields)
}

func validateEvalConfig(f EvalConfigFields) error {
	if strings.TrimSpace(f.Name) == "" {
		return requiredError(TypeEvalConfig, "name")
	}
	if !f.ConfigType.Valid() {
		return fieldError(TypeEvalConfig, "config_type", ErrInvalidValue, f.ConfigType, "must be one of %s, %s", EvalConfigTypeGEval, EvalConfigTypeLLMAsJudge)
	}
	if err := validateProperties(f.Properties); err != nil {
		return err
	}
	if f.ConfigType == EvalConfigTypeGEval {
		if _, ok := evalSteps(f.Properties[PropertyEvalSteps]); !ok {
			return fieldError(TypeEvalConfig, "properties."+PropertyEvalSteps, ErrMissingEvalSteps, f.Properties[PropertyEvalSteps],
				"eval_steps is required and must be a non-empty list of strings for g_eval")
		}
	}
	switch {
	case f.Model.Type == DataSourceHuman:
		return fieldError(TypeEvalConfig, "model.type", ErrHumanDataSourceNotAllowed, nil, "eval config models must be synthetic, not human")
	case !f.Model.Type.Valid():
		return fieldError(TypeEvalConfig, "model.type", ErrInvalidValue, f.Model.Type, "must be one of %s, %s", DataSourceSynthetic, DataSourceHuman)
	}
	if err := validateProperties(f.Model.Properties); err != nil {
		err.Field = "model." + err.Field
		return err
	}
	if f.Prompt == nil {
		return requiredError(TypeEvalConfig, "prompt")
	}
	if strings.TrimSpace(f.Prompt.Name) == "" {
		return requiredError(TypeEvalConfig, "prompt.name")
	}
	if strings.TrimSpace(f.Prompt.Prompt) == "" {
		return requiredError(TypeEvalConfig, "prompt.prompt")
	}
	return nil
}

// validateProperties checks every value survives a JSON round trip.
func validateProperties(props map[string]any) *FieldError {
	for _, key := range slices.Sorted(maps.Keys(props)) {
		data, err := json.Marshal(props[key])
		if err == nil {
			var decoded any
			err = json.Unmarshal(data, &decoded)
		}
		if err != nil {
			return fieldError(TypeEvalConfig, "properties."+key, ErrNonSerializableProperty, nil, "properties must be JSON serializable: %v", err)
		}
	}
	return nil
}

func evalSteps(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return slices.Clone(v), len(v) > 0
	case []any:
		if len(v) == 0 {
			return nil, false
		}
		steps := make([]string, 0, len(v))
		for _, item := range v {
			step, ok := item.(string)
			if !ok {
				return nil, false
			}
			steps = append(steps, step)
		}
		return steps, true
	default:
		return nil, false
	}
}

// Fields returns a copy of the config fields.
func (c *EvalConfig) Fields() EvalConfigFields { return c.fields.clone() }

// Name returns the config name.
func (c *EvalConfig) Name() string { return c.fields.Name }

// ConfigType returns the judging algorithm.
func (c *EvalConfig) ConfigType() EvalConfigType { return c.fields.ConfigType }

// Model returns a copy of the judge data source.
func (c *EvalConfig) Model() DataSource { return c.fields.Model.clone() }

// Prompt returns a copy of the judge prompt.
func (c *EvalConfig) Prompt() Prompt { return *c.fields.Prompt }

// Properties returns a copy of the config properties.
func (c *EvalConfig) Properties() map[string]any { return cloneProperties(c.fields.Properties) }

// EvalSteps returns the g_eval steps, if present.
func (c *EvalConfig) EvalSteps() []string {
	steps, _ := evalSteps(c.fields.Properties[PropertyEvalSteps])
	return steps
}

// Update applies fn to a copy of the fields and commits it if valid.
func (c *EvalConfig) Update(fn func(*EvalConfigFields)) error {
	next := c.fields.clone()
	fn(&next)
	if err := validateEvalConfig(next); err != nil {
		return err
	}
	c.fields = next
	return nil
}

// SetProperties replaces the config properties.
func (c *EvalConfig) SetProperties(props map[string]any) error {
	return c.Update(func(f *EvalConfigFields) { f.Properties = cloneProperties(props) })
}

// SetPrompt replaces the judge prompt. A nil prompt is rejected.
func (c *EvalConfig) SetPrompt(prompt *Prompt) error {
	return c.Update(func(f *EvalConfigFields) { f.Prompt = prompt.clone() })
}

// SetParent attaches the owning eval.
func (c *EvalConfig) SetParent(parent Parent) error { return SetParent(c, parent) }

// ParentEval returns the owning eval, or nil.
func (c *EvalConfig) ParentEval() *Eval { return ParentOfType[Eval](c) }

// Runs loads the config's runs from disk.
func (c *EvalConfig) Runs() ([]*EvalRun, error) {
	return Children[EvalRun](c, RelationshipRuns)
}
