// Command fixture generates a synthetic data tree for load testing the
// loaders and the DuckDB export.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"evalstore/internal/duckdb"
	"evalstore/internal/store"
)

// fixtureConfig defines the JSON config for generating a fixture tree.
type fixtureConfig struct {
	Name    string `json:"name"`
	Tasks   int    `json:"tasks"`
	Evals   int    `json:"evals"`
	Configs int    `json:"configs"`
	Runs    int    `json:"runs"`
}

func main() {
	configPath := flag.String("config", "", "path to fixture config JSON")
	dataDir := flag.String("data-dir", "", "output data directory")
	duckdbPath := flag.String("duckdb", "", "optional DuckDB file to export the tree into")
	flag.Parse()
	if *configPath == "" || *dataDir == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture --config <path> --data-dir <dir> [--duckdb <file>]")
		os.Exit(2)
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := removeIfExists(*dataDir); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if err := generateTree(*dataDir, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "generate fixture: %v\n", err)
		os.Exit(1)
	}
	if *duckdbPath == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if err := exportTree(ctx, *dataDir, *duckdbPath); err != nil {
		fmt.Fprintf(os.Stderr, "export fixture: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (fixtureConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fixtureConfig{}, err
	}
	var cfg fixtureConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fixtureConfig{}, err
	}
	if cfg.Tasks <= 0 {
		return fixtureConfig{}, fmt.Errorf("tasks must be positive")
	}
	return cfg, nil
}

func exportTree(ctx context.Context, dataDir, out string) error {
	tree, problems, err := store.Load(dataDir)
	if err != nil {
		return err
	}
	if len(problems) > 0 {
		return fmt.Errorf("generated tree has %d broken files, first: %v", len(problems), problems[0])
	}
	if err := removeIfExists(out); err != nil {
		return err
	}
	db, err := duckdb.Open(ctx, out)
	if err != nil {
		return err
	}
	defer db.Close()
	stats, err := duckdb.ExportTree(ctx, db, tree)
	if err != nil {
		return err
	}
	fmt.Printf("exported %d tasks, %d runs, %d scores\n", stats.Tasks, stats.Runs, stats.Scores)
	return nil
}
