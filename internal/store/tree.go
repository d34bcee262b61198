package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"evalstore/internal/datamodel"
)

// Tree is a loaded snapshot of every task under a data directory.
type Tree struct {
	Root  string
	Tasks []TaskNode
}

type TaskNode struct {
	Task  *datamodel.Task
	Evals []EvalNode
}

type EvalNode struct {
	Eval    *datamodel.Eval
	Configs []ConfigNode
}

type ConfigNode struct {
	Config *datamodel.EvalConfig
	Runs   []*datamodel.EvalRun
}

// Problem is a file that could not be loaded.
type Problem struct {
	Path string
	Err  error
}

func (p Problem) Error() string {
	return fmt.Sprintf("%s: %v", p.Path, p.Err)
}

// Counts tallies the entities of a tree by type.
func (t Tree) Counts() map[datamodel.TypeName]int {
	counts := map[datamodel.TypeName]int{}
	for _, task := range t.Tasks {
		counts[datamodel.TypeTask]++
		for _, eval := range task.Evals {
			counts[datamodel.TypeEval]++
			for _, config := range eval.Configs {
				counts[datamodel.TypeEvalConfig]++
				counts[datamodel.TypeEvalRun] += len(config.Runs)
			}
		}
	}
	return counts
}

// TaskPath returns the file of a new task folder under dataDir.
func TaskPath(dataDir, id string) string {
	return filepath.Join(dataDir, id, datamodel.TypeTask.Filename())
}

// TaskPaths lists <dataDir>/*/task.json in folder order. A missing data
// directory has no tasks.
func TaskPaths(dataDir string) ([]string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", dataDir, err)
	}
	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate := filepath.Join(dataDir, entry.Name(), datamodel.TypeTask.Filename())
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			paths = append(paths, candidate)
		}
	}
	return paths, nil
}

// Load reads the whole hierarchy under dataDir. Files that fail to load
// are reported as problems and their subtrees are skipped; everything else
// is still returned.
func Load(dataDir string) (Tree, []Problem, error) {
	paths, err := TaskPaths(dataDir)
	if err != nil {
		return Tree{}, nil, err
	}
	loader := &treeLoader{}
	tree := Tree{Root: dataDir}
	for _, path := range paths {
		task, err := datamodel.Load[datamodel.Task](path)
		if err != nil {
			loader.fail(path, err)
			continue
		}
		tree.Tasks = append(tree.Tasks, TaskNode{Task: task, Evals: loader.evals(task)})
	}
	return tree, loader.problems, nil
}

type treeLoader struct {
	problems []Problem
}

func (l *treeLoader) fail(path string, err error) {
	l.problems = append(l.problems, Problem{Path: path, Err: err})
}

func (l *treeLoader) evals(task *datamodel.Task) []EvalNode {
	var out []EvalNode
	for _, path := range l.paths(task, datamodel.RelationshipEvals) {
		eval, err := datamodel.LoadChild[datamodel.Eval](path, task)
		if err != nil {
			l.fail(path, err)
			continue
		}
		out = append(out, EvalNode{Eval: eval, Configs: l.configs(eval)})
	}
	return out
}

func (l *treeLoader) configs(eval *datamodel.Eval) []ConfigNode {
	var out []ConfigNode
	for _, path := range l.paths(eval, datamodel.RelationshipConfigs) {
		config, err := datamodel.LoadChild[datamodel.EvalConfig](path, eval)
		if err != nil {
			l.fail(path, err)
			continue
		}
		out = append(out, ConfigNode{Config: config, Runs: l.runs(config)})
	}
	return out
}

func (l *treeLoader) runs(config *datamodel.EvalConfig) []*datamodel.EvalRun {
	var out []*datamodel.EvalRun
	for _, path := range l.paths(config, datamodel.RelationshipRuns) {
		run, err := datamodel.LoadChild[datamodel.EvalRun](path, config)
		if err != nil {
			l.fail(path, err)
			continue
		}
		out = append(out, run)
	}
	return out
}

func (l *treeLoader) paths(parent datamodel.Parent, relationship string) []string {
	paths, err := datamodel.ChildPaths(parent, relationship)
	if err != nil {
		l.fail(datamodel.ChildDir(parent, relationship), err)
		return nil
	}
	return paths
}
