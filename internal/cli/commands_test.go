package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"evalstore/internal/config"
	"evalstore/internal/datamodel"
	duckdbtesting "evalstore/internal/duckdb/testing"
)

type cliResult struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()
	var out, errOut bytes.Buffer
	code := Run(args, &out, &errOut)
	return cliResult{code: code, stdout: out.String(), stderr: errOut.String()}
}

func initProject(t *testing.T) (root, configPath string) {
	t.Helper()
	t.Setenv("USER", "tester")
	root = t.TempDir()
	configPath = config.ConfigPath(root)
	res := runCLI(t, "init", "--config", configPath)
	if res.code != ExitOK {
		t.Fatalf("init failed (%d): %s", res.code, res.stderr)
	}
	return root, configPath
}

func writeFile(t *testing.T, dir, name, payload string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func create(t *testing.T, configPath, file, parent string) string {
	t.Helper()
	args := []string{"create", "--config", configPath, "--file", file}
	if parent != "" {
		args = append(args, "--parent", parent)
	}
	res := runCLI(t, args...)
	if res.code != ExitOK {
		t.Fatalf("create %s failed (%d): %s", filepath.Base(file), res.code, res.stderr)
	}
	path := strings.TrimSpace(res.stdout)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("created file missing: %v", err)
	}
	return path
}

// seedHierarchy creates one entity of every type through the CLI and
// returns their paths in task, eval, config, run order.
func seedHierarchy(t *testing.T, configPath string) []string {
	t.Helper()
	defs := t.TempDir()
	taskPath := create(t, configPath, writeFile(t, defs, "task.yml", `version: 1
task:
  name: Capitals
  instruction: Answer with the capital city
`), "")
	evalPath := create(t, configPath, writeFile(t, defs, "eval.yml", `version: 1
eval:
  name: Accuracy
  eval_set_filter_id: tag::eval
  eval_configs_filter_id: tag::golden
  output_scores:
    - name: accuracy
      type: five_star
`), filepath.Dir(taskPath))
	configEntityPath := create(t, configPath, writeFile(t, defs, "config.yml", `version: 1
eval_config:
  name: Judge
  config_type: g_eval
  properties:
    eval_steps: [read, judge]
  model:
    type: synthetic
    properties:
      model_name: gpt-4
  prompt:
    name: judge
    prompt: Judge the answer
`), evalPath)
	runPath := create(t, configPath, writeFile(t, defs, "run.json", `{
  "version": 1,
  "eval_run": {
    "dataset_id": "item-1",
    "task_run_config_id": "trc-1",
    "input": "France",
    "output": "Paris",
    "scores": {"accuracy": 4}
  }
}`), configEntityPath)
	return []string{taskPath, evalPath, configEntityPath, runPath}
}

func TestInitScaffoldsProject(t *testing.T) {
	root, configPath := initProject(t)
	if _, err := os.Stat(filepath.Join(root, config.DefaultDataDir)); err != nil {
		t.Fatalf("expected data dir: %v", err)
	}
	res := runCLI(t, "init", "--config", configPath)
	if res.code != ExitError || !strings.Contains(res.stderr, "already exists") {
		t.Fatalf("expected existing config error, got %d %q", res.code, res.stderr)
	}
}

func TestInitDefaultsToWorkingDirectory(t *testing.T) {
	root := t.TempDir()
	t.Chdir(root)
	res := runCLI(t, "init", "--data-dir", "store")
	if res.code != ExitOK {
		t.Fatalf("init failed (%d): %s", res.code, res.stderr)
	}
	if _, err := os.Stat(filepath.Join(root, "store")); err != nil {
		t.Fatalf("expected custom data dir: %v", err)
	}
	res = runCLI(t, "validate")
	if res.code != ExitOK || !strings.Contains(res.stdout, "0 entities valid") {
		t.Fatalf("expected empty project to validate, got %d %q %q", res.code, res.stdout, res.stderr)
	}
}

func TestCreateBuildsFolderPerEntity(t *testing.T) {
	root, configPath := initProject(t)
	paths := seedHierarchy(t, configPath)

	dataDir := filepath.Join(root, config.DefaultDataDir)
	if rel, err := filepath.Rel(dataDir, paths[0]); err != nil || strings.Count(rel, string(filepath.Separator)) != 1 {
		t.Fatalf("expected task at <data>/<id>/task.json, got %q", paths[0])
	}
	wantParents := []string{paths[0], paths[1], paths[2]}
	relationships := []string{datamodel.RelationshipEvals, datamodel.RelationshipConfigs, datamodel.RelationshipRuns}
	for i, child := range paths[1:] {
		want := filepath.Join(filepath.Dir(wantParents[i]), relationships[i])
		if got := filepath.Dir(filepath.Dir(child)); got != want {
			t.Fatalf("expected %s under %s, got %s", filepath.Base(child), want, got)
		}
	}

	run, err := datamodel.Load[datamodel.EvalRun](paths[3])
	if err != nil {
		t.Fatalf("load run: %v", err)
	}
	if run.ParentEval() == nil || run.ParentEval().Name() != "Accuracy" {
		t.Fatalf("expected run linked to its eval")
	}
	if run.CreatedBy() == "" {
		t.Fatalf("expected created_by from config user")
	}
}

func TestCreateRejectsScoresOutsideEval(t *testing.T) {
	_, configPath := initProject(t)
	paths := seedHierarchy(t, configPath)
	defs := t.TempDir()
	file := writeFile(t, defs, "bad-run.yml", `version: 1
eval_run:
  dataset_id: item-2
  task_run_config_id: trc-1
  scores:
    accuracy: 9
`)
	res := runCLI(t, "create", "--config", configPath, "--file", file, "--parent", paths[2])
	if res.code != ExitError || !strings.Contains(res.stderr, "accuracy") {
		t.Fatalf("expected score range error, got %d %q", res.code, res.stderr)
	}
}

func TestCreateParentErrors(t *testing.T) {
	_, configPath := initProject(t)
	paths := seedHierarchy(t, configPath)
	defs := t.TempDir()
	evalDef := writeFile(t, defs, "eval.yml", `version: 1
eval:
  name: Second
  eval_set_filter_id: a
  eval_configs_filter_id: b
  output_scores:
    - name: ok
      type: pass_fail
`)
	res := runCLI(t, "create", "--config", configPath, "--file", evalDef)
	if res.code != ExitUsage || !strings.Contains(res.stderr, "--parent is required") {
		t.Fatalf("expected missing parent usage error, got %d %q", res.code, res.stderr)
	}
	res = runCLI(t, "create", "--config", configPath, "--file", evalDef, "--parent", paths[2])
	if res.code != ExitError || !strings.Contains(res.stderr, "expected task") {
		t.Fatalf("expected parent type error, got %d %q", res.code, res.stderr)
	}
	taskDef := writeFile(t, defs, "task.yml", "version: 1\ntask:\n  name: T\n  instruction: I\n")
	res = runCLI(t, "create", "--config", configPath, "--file", taskDef, "--parent", paths[0])
	if res.code != ExitUsage {
		t.Fatalf("expected task with parent usage error, got %d %q", res.code, res.stderr)
	}
	res = runCLI(t, "create", "--config", configPath)
	if res.code != ExitUsage || !strings.Contains(res.stderr, "--file is required") {
		t.Fatalf("expected missing file usage error, got %d %q", res.code, res.stderr)
	}
}

func TestValidateReportsBrokenFiles(t *testing.T) {
	_, configPath := initProject(t)
	paths := seedHierarchy(t, configPath)

	res := runCLI(t, "validate", "--config", configPath)
	if res.code != ExitOK || !strings.Contains(res.stdout, "4 entities valid") {
		t.Fatalf("expected clean validate, got %d %q %q", res.code, res.stdout, res.stderr)
	}

	if err := os.WriteFile(paths[2], []byte(`{"type":"eval_config","v":1,"id":"x"}`), 0o644); err != nil {
		t.Fatalf("corrupt config: %v", err)
	}
	res = runCLI(t, "validate", "--config", configPath)
	if res.code != ExitError {
		t.Fatalf("expected validate failure, got %d %q", res.code, res.stdout)
	}
	if !strings.Contains(res.stdout, "FAIL") || !strings.Contains(res.stdout, paths[2]) {
		t.Fatalf("expected failing path in output, got %q", res.stdout)
	}
	if !strings.Contains(res.stdout, "2 valid entities, 1 problems") {
		t.Fatalf("expected summary, got %q", res.stdout)
	}
}

func TestValidateWithoutConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	res := runCLI(t, "validate")
	if res.code != ExitError || !strings.Contains(res.stderr, "Validation failed") {
		t.Fatalf("expected config search failure, got %d %q", res.code, res.stderr)
	}
}

func TestShowPrintsStoredForm(t *testing.T) {
	_, configPath := initProject(t)
	paths := seedHierarchy(t, configPath)

	res := runCLI(t, "show", filepath.Dir(paths[3]))
	if res.code != ExitOK {
		t.Fatalf("show failed (%d): %s", res.code, res.stderr)
	}
	data, err := os.ReadFile(paths[3])
	if err != nil {
		t.Fatalf("read run: %v", err)
	}
	if res.stdout != string(data) {
		t.Fatalf("expected show output to match file\nshow: %s\nfile: %s", res.stdout, data)
	}
	if res := runCLI(t, "show"); res.code != ExitUsage {
		t.Fatalf("expected usage error without path, got %d", res.code)
	}
}

func TestTreePlainOutput(t *testing.T) {
	_, configPath := initProject(t)
	paths := seedHierarchy(t, configPath)

	res := runCLI(t, "tree", "--config", configPath, "--ui", "plain", "--no-color")
	if res.code != ExitOK {
		t.Fatalf("tree failed (%d): %s", res.code, res.stderr)
	}
	taskID := filepath.Base(filepath.Dir(paths[0]))
	if !strings.Contains(res.stdout, "task Capitals ("+taskID+")") {
		t.Fatalf("expected task line, got %q", res.stdout)
	}
	if !strings.Contains(res.stdout, "Tasks: 1 Evals: 1 Configs: 1 Runs: 1") {
		t.Fatalf("expected counts line, got %q", res.stdout)
	}
	if res := runCLI(t, "tree", "--config", configPath, "--ui", "fancy"); res.code != ExitUsage {
		t.Fatalf("expected invalid ui usage error, got %d", res.code)
	}
}

func TestExportWritesDuckDB(t *testing.T) {
	root, configPath := initProject(t)
	seedHierarchy(t, configPath)
	out := filepath.Join(root, "evals.duckdb")

	for i := 0; i < 2; i++ {
		res := runCLI(t, "export", "--config", configPath, "--out", out)
		if res.code != ExitOK {
			t.Fatalf("export failed (%d): %s", res.code, res.stderr)
		}
		if !strings.Contains(res.stdout, "Exported 1 tasks, 1 evals, 1 configs, 1 runs, 1 scores") {
			t.Fatalf("unexpected export output %q", res.stdout)
		}
	}

	db := duckdbtesting.Open(t, out)
	if got := duckdbtesting.QueryInt(t, db, "SELECT COUNT(*) FROM eval_run_scores"); got != 1 {
		t.Fatalf("expected one score row after re-export, got %d", got)
	}
	if res := runCLI(t, "export", "--config", configPath); res.code != ExitUsage {
		t.Fatalf("expected missing --out usage error, got %d", res.code)
	}
}
