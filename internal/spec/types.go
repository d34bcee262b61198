package spec

// Definition describes one entity to create. Exactly one section is set.
type Definition struct {
	Version    int            `json:"version" yaml:"version"`
	Task       *TaskDef       `json:"task,omitempty" yaml:"task"`
	Eval       *EvalDef       `json:"eval,omitempty" yaml:"eval"`
	EvalConfig *EvalConfigDef `json:"eval_config,omitempty" yaml:"eval_config"`
	EvalRun    *EvalRunDef    `json:"eval_run,omitempty" yaml:"eval_run"`
}

type TaskDef struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Instruction string `json:"instruction" yaml:"instruction"`
}

type EvalDef struct {
	Name                string           `json:"name" yaml:"name"`
	Description         string           `json:"description" yaml:"description"`
	State               string           `json:"state" yaml:"state"`
	CurrentConfigID     string           `json:"current_config_id" yaml:"current_config_id"`
	EvalSetFilterID     string           `json:"eval_set_filter_id" yaml:"eval_set_filter_id"`
	EvalConfigsFilterID string           `json:"eval_configs_filter_id" yaml:"eval_configs_filter_id"`
	OutputScores        []OutputScoreDef `json:"output_scores" yaml:"output_scores"`
}

type OutputScoreDef struct {
	Name        string `json:"name" yaml:"name"`
	Instruction string `json:"instruction" yaml:"instruction"`
	Type        string `json:"type" yaml:"type"`
}

type EvalConfigDef struct {
	Name       string         `json:"name" yaml:"name"`
	ConfigType string         `json:"config_type" yaml:"config_type"`
	Properties map[string]any `json:"properties" yaml:"properties"`
	Model      DataSourceDef  `json:"model" yaml:"model"`
	Prompt     *PromptDef     `json:"prompt" yaml:"prompt"`
}

type DataSourceDef struct {
	Type       string         `json:"type" yaml:"type"`
	Properties map[string]any `json:"properties" yaml:"properties"`
}

type PromptDef struct {
	Name                       string `json:"name" yaml:"name"`
	Prompt                     string `json:"prompt" yaml:"prompt"`
	ChainOfThoughtInstructions string `json:"chain_of_thought_instructions" yaml:"chain_of_thought_instructions"`
}

type EvalRunDef struct {
	DatasetID       string             `json:"dataset_id" yaml:"dataset_id"`
	TaskRunConfigID string             `json:"task_run_config_id" yaml:"task_run_config_id"`
	Input           string             `json:"input" yaml:"input"`
	Output          string             `json:"output" yaml:"output"`
	Scores          map[string]float64 `json:"scores" yaml:"scores"`
}
