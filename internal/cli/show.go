package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"evalstore/internal/datamodel"
)

// runShow builds the handler for the show command.
func runShow(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		if code, ok := parseFlags(cmd, flags, args, 1, stdout, stderr); !ok {
			return code
		}
		if flags.NArg() != 1 {
			fmt.Fprintln(stderr, "show requires an entity path")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		path, err := entityFile(flags.Arg(0))
		if err != nil {
			fmt.Fprintf(stderr, "Show failed: %v\n", err)
			return ExitError
		}
		entity, err := datamodel.LoadAny(path)
		if err != nil {
			fmt.Fprintf(stderr, "Show failed: %v\n", err)
			return ExitError
		}
		data, err := datamodel.Encode(entity)
		if err != nil {
			fmt.Fprintf(stderr, "Show failed: %v\n", err)
			return ExitError
		}
		_, _ = stdout.Write(data)
		return ExitOK
	}
}

// entityFile returns path itself, or the single entity file of a folder.
func entityFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return path, nil
	}
	var found []string
	for _, name := range datamodel.RegisteredTypes() {
		candidate := filepath.Join(path, name.Filename())
		if _, err := os.Stat(candidate); err == nil {
			found = append(found, candidate)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("no entity file in %s", path)
	case 1:
		return found[0], nil
	}
	return "", fmt.Errorf("folder %s holds %d entity files", path, len(found))
}
