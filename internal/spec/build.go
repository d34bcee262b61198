package spec

import (
	"fmt"

	"evalstore/internal/datamodel"
)

// Kind reports the entity type the definition describes.
func (def Definition) Kind() (datamodel.TypeName, error) {
	switch {
	case def.Task != nil:
		return datamodel.TypeTask, nil
	case def.Eval != nil:
		return datamodel.TypeEval, nil
	case def.EvalConfig != nil:
		return datamodel.TypeEvalConfig, nil
	case def.EvalRun != nil:
		return datamodel.TypeEvalRun, nil
	}
	return "", fmt.Errorf("definition has no entity section")
}

// Build turns a definition into a validated entity. Options such as
// datamodel.WithParent are passed through, so eval runs are checked
// against the scores of their eval.
func Build(def Definition, opts ...datamodel.Option) (datamodel.Entity, error) {
	kind, err := def.Kind()
	if err != nil {
		return nil, err
	}
	switch kind {
	case datamodel.TypeTask:
		return datamodel.NewTask(datamodel.TaskFields{
			Name:        def.Task.Name,
			Description: def.Task.Description,
			Instruction: def.Task.Instruction,
		}, opts...)
	case datamodel.TypeEval:
		return datamodel.NewEval(evalFields(def.Eval), opts...)
	case datamodel.TypeEvalConfig:
		return datamodel.NewEvalConfig(evalConfigFields(def.EvalConfig), opts...)
	default:
		return datamodel.NewEvalRun(datamodel.EvalRunFields{
			DatasetID:       def.EvalRun.DatasetID,
			TaskRunConfigID: def.EvalRun.TaskRunConfigID,
			Input:           def.EvalRun.Input,
			Output:          def.EvalRun.Output,
			Scores:          def.EvalRun.Scores,
		}, opts...)
	}
}

func evalFields(def *EvalDef) datamodel.EvalFields {
	scores := make([]datamodel.OutputScore, 0, len(def.OutputScores))
	for _, score := range def.OutputScores {
		scores = append(scores, datamodel.OutputScore{
			Name:        score.Name,
			Instruction: score.Instruction,
			Type:        datamodel.RatingType(score.Type),
		})
	}
	return datamodel.EvalFields{
		Name:                def.Name,
		Description:         def.Description,
		State:               datamodel.EvalState(def.State),
		CurrentConfigID:     def.CurrentConfigID,
		EvalSetFilterID:     def.EvalSetFilterID,
		EvalConfigsFilterID: def.EvalConfigsFilterID,
		OutputScores:        scores,
	}
}

func evalConfigFields(def *EvalConfigDef) datamodel.EvalConfigFields {
	fields := datamodel.EvalConfigFields{
		Name:       def.Name,
		ConfigType: datamodel.EvalConfigType(def.ConfigType),
		Properties: def.Properties,
		Model: datamodel.DataSource{
			Type:       datamodel.DataSourceType(def.Model.Type),
			Properties: def.Model.Properties,
		},
	}
	if def.Prompt != nil {
		fields.Prompt = &datamodel.Prompt{
			Name:                       def.Prompt.Name,
			Prompt:                     def.Prompt.Prompt,
			ChainOfThoughtInstructions: def.Prompt.ChainOfThoughtInstructions,
		}
	}
	return fields
}
