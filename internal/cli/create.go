package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"evalstore/internal/datamodel"
	"evalstore/internal/spec"
	"evalstore/internal/store"
)

// parentTypes maps each child type to the type it must be created under.
var parentTypes = map[datamodel.TypeName]datamodel.TypeName{
	datamodel.TypeEval:       datamodel.TypeTask,
	datamodel.TypeEvalConfig: datamodel.TypeEval,
	datamodel.TypeEvalRun:    datamodel.TypeEvalConfig,
}

type pathed interface {
	Path() string
}

// runCreate builds the handler for the create command.
func runCreate(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		configPath := flags.String("config", "", "Path to config file (default: search for .evalstore/config.yml)")
		file := flags.String("file", "", "Definition file (YAML or JSON)")
		parentPath := flags.String("parent", "", "Parent entity file or folder")
		verbose := flags.Bool("verbose", false, "Enable debug logging")
		if code, ok := parseFlags(cmd, flags, args, 0, stdout, stderr); !ok {
			return code
		}
		if strings.TrimSpace(*file) == "" {
			fmt.Fprintln(stderr, "--file is required")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		proj, err := loadProject(*configPath, *verbose, stderr)
		if err != nil {
			fmt.Fprintf(stderr, "Create failed: %v\n", err)
			return ExitError
		}
		def, err := spec.Load(*file)
		if err != nil {
			fmt.Fprintf(stderr, "Create failed: %v\n", err)
			return ExitError
		}
		kind, err := def.Kind()
		if err != nil {
			fmt.Fprintf(stderr, "Create failed: %v\n", err)
			return ExitError
		}

		opts := []datamodel.Option{datamodel.WithCreatedBy(proj.Config.User)}
		if kind == datamodel.TypeTask {
			if strings.TrimSpace(*parentPath) != "" {
				fmt.Fprintln(stderr, "tasks are created at the top of the data directory; --parent is not allowed")
				return ExitUsage
			}
			id := datamodel.NewID()
			opts = append(opts, datamodel.WithID(id), datamodel.WithPath(store.TaskPath(proj.DataDir, id)))
		} else {
			if strings.TrimSpace(*parentPath) == "" {
				fmt.Fprintf(stderr, "--parent is required for %s (expected a %s)\n", kind, parentTypes[kind])
				return ExitUsage
			}
			parent, err := loadParent(*parentPath, parentTypes[kind])
			if err != nil {
				fmt.Fprintf(stderr, "Create failed: %v\n", err)
				return ExitError
			}
			opts = append(opts, datamodel.WithParent(parent))
		}

		entity, err := spec.Build(def, opts...)
		if err != nil {
			fmt.Fprintf(stderr, "Create failed: %v\n", err)
			return ExitError
		}
		if err := datamodel.Save(entity); err != nil {
			fmt.Fprintf(stderr, "Create failed: %v\n", err)
			return ExitError
		}
		path := ""
		if p, ok := entity.(pathed); ok {
			path = p.Path()
		}
		proj.Logger.Info("created entity", "type", string(kind), "path", path)
		fmt.Fprintln(stdout, path)
		return ExitOK
	}
}

// loadParent loads the parent at path, which may be the entity file or the
// folder that holds it.
func loadParent(path string, want datamodel.TypeName) (datamodel.Parent, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("parent: %w", err)
	}
	if info.IsDir() {
		path = filepath.Join(path, want.Filename())
	}
	entity, err := datamodel.LoadAny(path)
	if err != nil {
		return nil, err
	}
	if entity.TypeName() != want {
		return nil, fmt.Errorf("parent %s is a %s, expected %s", path, entity.TypeName(), want)
	}
	parent, ok := entity.(datamodel.Parent)
	if !ok {
		return nil, fmt.Errorf("parent %s cannot hold children", path)
	}
	return parent, nil
}
