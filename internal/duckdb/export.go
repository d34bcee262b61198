package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"evalstore/internal/datamodel"
	"evalstore/internal/store"
)

// ExportStats counts the rows written by one export.
type ExportStats struct {
	Tasks   int
	Evals   int
	Configs int
	Runs    int
	Scores  int
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ExportTree upserts every entity of tree in a single transaction and
// removes rows whose entities are no longer in tree, so the database mirrors
// the store after every export. Re-exporting the same tree leaves the
// database unchanged.
func ExportTree(ctx context.Context, db *sql.DB, tree store.Tree) (ExportStats, error) {
	if ctx == nil {
		return ExportStats{}, errors.New("duckdb: context is nil")
	}
	if db == nil {
		return ExportStats{}, errors.New("duckdb: db is nil")
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return ExportStats{}, fmt.Errorf("begin export: %w", err)
	}
	var stats ExportStats
	var ids exportedIDs
	if err := exportTree(ctx, tx, tree, &stats, &ids); err != nil {
		_ = tx.Rollback()
		return ExportStats{}, err
	}
	if err := pruneMissing(ctx, tx, ids); err != nil {
		_ = tx.Rollback()
		return ExportStats{}, err
	}
	if err := tx.Commit(); err != nil {
		return ExportStats{}, fmt.Errorf("commit export: %w", err)
	}
	return stats, nil
}

// exportedIDs records the ids written by one export.
type exportedIDs struct {
	tasks   []string
	evals   []string
	configs []string
	runs    []string
}

func exportTree(ctx context.Context, tx execer, tree store.Tree, stats *ExportStats, ids *exportedIDs) error {
	for _, taskNode := range tree.Tasks {
		if err := UpsertTask(ctx, tx, taskNode.Task); err != nil {
			return err
		}
		stats.Tasks++
		ids.tasks = append(ids.tasks, taskNode.Task.ID())
		for _, evalNode := range taskNode.Evals {
			if err := UpsertEval(ctx, tx, taskNode.Task.ID(), evalNode.Eval); err != nil {
				return err
			}
			stats.Evals++
			ids.evals = append(ids.evals, evalNode.Eval.ID())
			for _, configNode := range evalNode.Configs {
				if err := UpsertEvalConfig(ctx, tx, evalNode.Eval.ID(), configNode.Config); err != nil {
					return err
				}
				stats.Configs++
				ids.configs = append(ids.configs, configNode.Config.ID())
				for _, run := range configNode.Runs {
					if err := UpsertEvalRun(ctx, tx, evalNode.Eval.ID(), configNode.Config.ID(), run); err != nil {
						return err
					}
					stats.Runs++
					stats.Scores += len(run.Scores())
					ids.runs = append(ids.runs, run.ID())
				}
			}
		}
	}
	return nil
}

// pruneMissing deletes rows whose ids were not exported, children first.
func pruneMissing(ctx context.Context, db execer, ids exportedIDs) error {
	for _, step := range []struct {
		table  string
		column string
		keep   []string
	}{
		{"eval_run_scores", "run_id", ids.runs},
		{"eval_runs", "run_id", ids.runs},
		{"eval_configs", "config_id", ids.configs},
		{"eval_output_scores", "eval_id", ids.evals},
		{"evals", "eval_id", ids.evals},
		{"tasks", "task_id", ids.tasks},
	} {
		query := "DELETE FROM " + step.table
		if len(step.keep) > 0 {
			query += fmt.Sprintf(" WHERE %s NOT IN (%s)", step.column, literalList(step.keep))
		}
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("prune %s: %w", step.table, err)
		}
	}
	return nil
}

// UpsertTask inserts or updates a task row by id.
func UpsertTask(ctx context.Context, db execer, task *datamodel.Task) error {
	fields := task.Fields()
	_, err := db.ExecContext(ctx,
		`INSERT INTO tasks (task_id, name, description, instruction, schema_version, created_at, created_by, path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (task_id) DO UPDATE SET
		   name = excluded.name,
		   description = excluded.description,
		   instruction = excluded.instruction,
		   schema_version = excluded.schema_version,
		   created_at = excluded.created_at,
		   created_by = excluded.created_by,
		   path = excluded.path`,
		task.ID(), fields.Name, nullableString(fields.Description), fields.Instruction,
		task.SchemaVersion(), task.CreatedAt(), nullableString(task.CreatedBy()), task.Path(),
	)
	if err != nil {
		return fmt.Errorf("upsert task %s: %w", task.ID(), err)
	}
	return nil
}

// UpsertEval inserts or updates an eval row and replaces its output scores.
func UpsertEval(ctx context.Context, db execer, taskID string, eval *datamodel.Eval) error {
	fields := eval.Fields()
	_, err := db.ExecContext(ctx,
		`INSERT INTO evals (eval_id, task_id, name, description, state, current_config_id,
		   eval_set_filter_id, eval_configs_filter_id, schema_version, created_at, created_by, path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (eval_id) DO UPDATE SET
		   task_id = excluded.task_id,
		   name = excluded.name,
		   description = excluded.description,
		   state = excluded.state,
		   current_config_id = excluded.current_config_id,
		   eval_set_filter_id = excluded.eval_set_filter_id,
		   eval_configs_filter_id = excluded.eval_configs_filter_id,
		   schema_version = excluded.schema_version,
		   created_at = excluded.created_at,
		   created_by = excluded.created_by,
		   path = excluded.path`,
		eval.ID(), taskID, fields.Name, nullableString(fields.Description), string(fields.State),
		nullableString(fields.CurrentConfigID), fields.EvalSetFilterID, fields.EvalConfigsFilterID,
		eval.SchemaVersion(), eval.CreatedAt(), nullableString(eval.CreatedBy()), eval.Path(),
	)
	if err != nil {
		return fmt.Errorf("upsert eval %s: %w", eval.ID(), err)
	}

	names := make([]string, 0, len(fields.OutputScores))
	for i, score := range fields.OutputScores {
		var minValue, maxValue any
		if lo, hi, ok := score.Type.ScoreRange(); ok {
			minValue, maxValue = lo, hi
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO eval_output_scores (eval_id, name, position, instruction, rating_type, min_value, max_value)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (eval_id, name) DO UPDATE SET
			   position = excluded.position,
			   instruction = excluded.instruction,
			   rating_type = excluded.rating_type,
			   min_value = excluded.min_value,
			   max_value = excluded.max_value`,
			eval.ID(), score.Name, i, nullableString(score.Instruction), string(score.Type), minValue, maxValue,
		); err != nil {
			return fmt.Errorf("upsert output score %s.%s: %w", eval.ID(), score.Name, err)
		}
		names = append(names, score.Name)
	}
	return deleteStale(ctx, db, "eval_output_scores", "eval_id", eval.ID(), names)
}

// UpsertEvalConfig inserts or updates an eval config row by id.
func UpsertEvalConfig(ctx context.Context, db execer, evalID string, config *datamodel.EvalConfig) error {
	fields := config.Fields()
	properties, err := nullableJSON(fields.Properties)
	if err != nil {
		return fmt.Errorf("encode properties of %s: %w", config.ID(), err)
	}
	modelProperties, err := nullableJSON(fields.Model.Properties)
	if err != nil {
		return fmt.Errorf("encode model properties of %s: %w", config.ID(), err)
	}
	prompt := config.Prompt()
	_, err = db.ExecContext(ctx,
		`INSERT INTO eval_configs (config_id, eval_id, name, config_type, properties, model_type, model_properties,
		   prompt_name, prompt, chain_of_thought_instructions, schema_version, created_at, created_by, path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (config_id) DO UPDATE SET
		   eval_id = excluded.eval_id,
		   name = excluded.name,
		   config_type = excluded.config_type,
		   properties = excluded.properties,
		   model_type = excluded.model_type,
		   model_properties = excluded.model_properties,
		   prompt_name = excluded.prompt_name,
		   prompt = excluded.prompt,
		   chain_of_thought_instructions = excluded.chain_of_thought_instructions,
		   schema_version = excluded.schema_version,
		   created_at = excluded.created_at,
		   created_by = excluded.created_by,
		   path = excluded.path`,
		config.ID(), evalID, fields.Name, string(fields.ConfigType), properties, string(fields.Model.Type), modelProperties,
		prompt.Name, prompt.Prompt, nullableString(prompt.ChainOfThoughtInstructions),
		config.SchemaVersion(), config.CreatedAt(), nullableString(config.CreatedBy()), config.Path(),
	)
	if err != nil {
		return fmt.Errorf("upsert eval config %s: %w", config.ID(), err)
	}
	return nil
}

// RunContentKey fingerprints the recorded content of a run, so identical
// runs stored under different ids can be found.
func RunContentKey(run *datamodel.EvalRun) (string, error) {
	fields := run.Fields()
	scores := make(map[string]any, len(fields.Scores))
	for name, value := range fields.Scores {
		scores[name] = value
	}
	return FingerprintJSON(map[string]any{
		"dataset_id":         fields.DatasetID,
		"task_run_config_id": fields.TaskRunConfigID,
		"input":              fields.Input,
		"output":             fields.Output,
		"scores":             scores,
	})
}

// UpsertEvalRun inserts or updates a run row and its scores.
func UpsertEvalRun(ctx context.Context, db execer, evalID, configID string, run *datamodel.EvalRun) error {
	fields := run.Fields()
	key, err := RunContentKey(run)
	if err != nil {
		return fmt.Errorf("fingerprint run %s: %w", run.ID(), err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO eval_runs (run_id, config_id, eval_id, dataset_id, task_run_config_id, input, output,
		   content_key, schema_version, created_at, created_by, path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (run_id) DO UPDATE SET
		   config_id = excluded.config_id,
		   eval_id = excluded.eval_id,
		   dataset_id = excluded.dataset_id,
		   task_run_config_id = excluded.task_run_config_id,
		   input = excluded.input,
		   output = excluded.output,
		   content_key = excluded.content_key,
		   schema_version = excluded.schema_version,
		   created_at = excluded.created_at,
		   created_by = excluded.created_by,
		   path = excluded.path`,
		run.ID(), configID, evalID, fields.DatasetID, fields.TaskRunConfigID, fields.Input, fields.Output,
		key, run.SchemaVersion(), run.CreatedAt(), nullableString(run.CreatedBy()), run.Path(),
	)
	if err != nil {
		return fmt.Errorf("upsert eval run %s: %w", run.ID(), err)
	}

	names := make([]string, 0, len(fields.Scores))
	for name := range fields.Scores {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO eval_run_scores (score_id, run_id, name, value)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT (run_id, name) DO UPDATE SET value = excluded.value`,
			uuid.NewString(), run.ID(), name, fields.Scores[name],
		); err != nil {
			return fmt.Errorf("upsert score %s.%s: %w", run.ID(), name, err)
		}
	}
	return deleteStale(ctx, db, "eval_run_scores", "run_id", run.ID(), names)
}

// deleteStale removes child rows of owner whose name is no longer present.
func deleteStale(ctx context.Context, db execer, table, ownerColumn, owner string, keep []string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, ownerColumn)
	if len(keep) > 0 {
		query += fmt.Sprintf(" AND name NOT IN (%s)", literalList(keep))
	}
	if _, err := db.ExecContext(ctx, query, owner); err != nil {
		return fmt.Errorf("prune %s for %s: %w", table, owner, err)
	}
	return nil
}

// nullableString maps empty strings to SQL NULL.
func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// literalList renders values as a comma separated list of SQL literals.
func literalList(values []string) string {
	literals := make([]string, 0, len(values))
	for _, value := range values {
		literals = append(literals, quoteLiteral(value))
	}
	return strings.Join(literals, ", ")
}

// quoteLiteral escapes a string for SQL literal use.
func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
