package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"evalstore/internal/duckdb"
	"evalstore/internal/store"
)

// runExport builds the handler for the export command.
func runExport(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		configPath := flags.String("config", "", "Path to config file (default: search for .evalstore/config.yml)")
		out := flags.String("out", "", "DuckDB database file")
		verbose := flags.Bool("verbose", false, "Enable debug logging")
		if code, ok := parseFlags(cmd, flags, args, 0, stdout, stderr); !ok {
			return code
		}
		if strings.TrimSpace(*out) == "" {
			fmt.Fprintln(stderr, "--out is required")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		proj, err := loadProject(*configPath, *verbose, stderr)
		if err != nil {
			fmt.Fprintf(stderr, "Export failed: %v\n", err)
			return ExitError
		}
		tree, problems, err := store.Load(proj.DataDir)
		if err != nil {
			fmt.Fprintf(stderr, "Export failed: %v\n", err)
			return ExitError
		}
		for _, problem := range problems {
			proj.Logger.Warn("skipped entity", "path", problem.Path, "error", problem.Err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		db, err := duckdb.Open(ctx, *out)
		if err != nil {
			fmt.Fprintf(stderr, "Export failed: %v\n", err)
			return ExitError
		}
		defer db.Close()

		stats, err := duckdb.ExportTree(ctx, db, tree)
		if err != nil {
			fmt.Fprintf(stderr, "Export failed: %v\n", err)
			return ExitError
		}
		proj.Logger.Info("exported tree", "out", *out, "tasks", stats.Tasks, "runs", stats.Runs)
		fmt.Fprintf(stdout, "Exported %d tasks, %d evals, %d configs, %d runs, %d scores to %s\n",
			stats.Tasks, stats.Evals, stats.Configs, stats.Runs, stats.Scores, *out)
		if len(problems) > 0 {
			fmt.Fprintf(stdout, "Skipped %d entities that failed to load\n", len(problems))
		}
		return ExitOK
	}
}
