package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"evalstore/internal/datamodel"
	"evalstore/internal/store"
)

var fixtureTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// generateTree writes cfg.Tasks tasks, each with the configured fan-out.
func generateTree(dataDir string, cfg fixtureConfig) error {
	for ti := 0; ti < cfg.Tasks; ti++ {
		taskID := deterministicID("task", ti)
		task, err := datamodel.NewTask(datamodel.TaskFields{
			Name:        fmt.Sprintf("%s task %d", cfg.Name, ti),
			Instruction: "Answer the question",
		}, common(taskID, datamodel.WithPath(store.TaskPath(dataDir, taskID)))...)
		if err != nil {
			return err
		}
		if err := datamodel.Save(task); err != nil {
			return err
		}
		for ei := 0; ei < cfg.Evals; ei++ {
			if err := generateEval(task, cfg, ti, ei); err != nil {
				return err
			}
		}
	}
	return nil
}

func generateEval(task *datamodel.Task, cfg fixtureConfig, ti, ei int) error {
	eval, err := datamodel.NewEval(datamodel.EvalFields{
		Name:                fmt.Sprintf("eval %d", ei),
		EvalSetFilterID:     "tag::eval",
		EvalConfigsFilterID: "tag::golden",
		OutputScores: []datamodel.OutputScore{
			{Name: "accuracy", Type: datamodel.RatingFiveStar},
			{Name: "safe", Type: datamodel.RatingPassFail},
		},
	}, common(deterministicID(fmt.Sprintf("eval-%d", ti), ei), datamodel.WithParent(task))...)
	if err != nil {
		return err
	}
	if err := datamodel.Save(eval); err != nil {
		return err
	}
	for ci := 0; ci < cfg.Configs; ci++ {
		config, err := datamodel.NewEvalConfig(datamodel.EvalConfigFields{
			Name:       fmt.Sprintf("judge %d", ci),
			ConfigType: datamodel.EvalConfigTypeLLMAsJudge,
			Model:      datamodel.DataSource{Type: datamodel.DataSourceSynthetic, Properties: map[string]any{"model_name": "fixture"}},
			Prompt:     &datamodel.Prompt{Name: "judge", Prompt: "Judge the answer"},
		}, common(deterministicID(fmt.Sprintf("config-%d-%d", ti, ei), ci), datamodel.WithParent(eval))...)
		if err != nil {
			return err
		}
		if err := datamodel.Save(config); err != nil {
			return err
		}
		for ri := 0; ri < cfg.Runs; ri++ {
			run, err := datamodel.NewEvalRun(datamodel.EvalRunFields{
				DatasetID:       fmt.Sprintf("item-%d", ri),
				TaskRunConfigID: "trc-fixture",
				Scores:          map[string]float64{"accuracy": float64(1 + ri%5), "safe": float64(ri % 2)},
			}, common(deterministicID(fmt.Sprintf("run-%d-%d-%d", ti, ei, ci), ri), datamodel.WithParent(config))...)
			if err != nil {
				return err
			}
			if err := datamodel.Save(run); err != nil {
				return err
			}
		}
	}
	return nil
}

func common(id string, opts ...datamodel.Option) []datamodel.Option {
	return append([]datamodel.Option{
		datamodel.WithID(id),
		datamodel.WithCreatedAt(fixtureTime),
		datamodel.WithCreatedBy("fixture"),
	}, opts...)
}

// removeIfExists deletes an existing fixture so we always start fresh.
func removeIfExists(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat fixture: %w", err)
	}
	if err := os.RemoveAll(filepath.Clean(path)); err != nil {
		return fmt.Errorf("remove existing fixture: %w", err)
	}
	return nil
}

// deterministicID generates a repeatable UUID for fixture entities.
func deterministicID(prefix string, index int) string {
	return uuid.NewSHA1(fixtureNamespace, []byte(fmt.Sprintf("%s-%d", prefix, index))).String()
}

// fixtureNamespace keeps ids stable across fixture runs.
var fixtureNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
