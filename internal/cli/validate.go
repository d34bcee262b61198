package cli

import (
	"flag"
	"fmt"
	"io"

	"github.com/fatih/color"

	"evalstore/internal/datamodel"
	"evalstore/internal/store"
)

// runValidate builds the handler for the validate command.
func runValidate(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		configPath := flags.String("config", "", "Path to config file (default: search for .evalstore/config.yml)")
		verbose := flags.Bool("verbose", false, "Enable debug logging")
		if code, ok := parseFlags(cmd, flags, args, 0, stdout, stderr); !ok {
			return code
		}

		proj, err := loadProject(*configPath, *verbose, stderr)
		if err != nil {
			fmt.Fprintf(stderr, "Validation failed:\n%v\n", err)
			return ExitError
		}

		tree, problems, err := store.Load(proj.DataDir)
		if err != nil {
			fmt.Fprintf(stderr, "Validation failed:\n%v\n", err)
			return ExitError
		}
		counts := tree.Counts()
		proj.Logger.Debug("loaded tree", "data_dir", proj.DataDir, "tasks", counts[datamodel.TypeTask], "problems", len(problems))

		fail := color.New(color.FgRed, color.Bold).SprintFunc()
		ok := color.New(color.FgGreen, color.Bold).SprintFunc()
		for _, problem := range problems {
			fmt.Fprintf(stdout, "%s %s\n", fail("FAIL"), problem.Error())
		}
		total := 0
		for _, n := range counts {
			total += n
		}
		if len(problems) > 0 {
			fmt.Fprintf(stdout, "\n%d valid entities, %d problems\n", total, len(problems))
			return ExitError
		}
		fmt.Fprintf(stdout, "%s %d entities valid\n", ok("OK"), total)
		return ExitOK
	}
}
