package cli

import (
	"flag"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"

	"evalstore/internal/store"
	"evalstore/internal/ui/browse"
)

// runProgram starts the live browser. Tests replace it.
var runProgram = func(model tea.Model, stdout io.Writer) error {
	_, err := tea.NewProgram(model, tea.WithOutput(stdout), tea.WithAltScreen()).Run()
	return err
}

// runTree builds the handler for the tree command.
func runTree(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		configPath := flags.String("config", "", "Path to config file (default: search for .evalstore/config.yml)")
		uiMode := flags.String("ui", "", "UI mode: auto|live|plain (default: config ui)")
		noColor := flags.Bool("no-color", false, "Disable colors")
		verbose := flags.Bool("verbose", false, "Enable debug logging")
		if code, ok := parseFlags(cmd, flags, args, 0, stdout, stderr); !ok {
			return code
		}

		proj, err := loadProject(*configPath, *verbose, stderr)
		if err != nil {
			fmt.Fprintf(stderr, "Tree failed: %v\n", err)
			return ExitError
		}
		mode := *uiMode
		if mode == "" {
			mode = proj.Config.UI
		}
		decision, err := resolveUIMode(mode, *verbose, stdout)
		if err != nil {
			fmt.Fprintf(stderr, "Tree failed: %v\n", err)
			return ExitUsage
		}
		if decision.warning != "" {
			fmt.Fprintln(stderr, decision.warning)
		}

		tree, problems, err := store.Load(proj.DataDir)
		if err != nil {
			fmt.Fprintf(stderr, "Tree failed: %v\n", err)
			return ExitError
		}
		for _, problem := range problems {
			proj.Logger.Warn("skipped entity", "path", problem.Path, "error", problem.Err)
		}

		state := browse.NewState(tree, len(problems))
		if decision.useLive {
			model := browse.NewModel(state, browse.Options{NoColor: *noColor})
			if err := runProgram(model, stdout); err != nil {
				fmt.Fprintf(stderr, "Tree failed: %v\n", err)
				return ExitError
			}
			return ExitOK
		}
		fmt.Fprint(stdout, browse.RenderPlain(state, *noColor || color.NoColor))
		return ExitOK
	}
}
