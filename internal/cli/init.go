package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"evalstore/internal/config"
)

// runInit builds the handler for the init command.
func runInit(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		configPath := flags.String("config", "", "Path to config file (default: ./.evalstore/config.yml)")
		dataDir := flags.String("data-dir", config.DefaultDataDir, "Data directory, relative to the project root")
		if code, ok := parseFlags(cmd, flags, args, 0, stdout, stderr); !ok {
			return code
		}

		target := strings.TrimSpace(*configPath)
		if target == "" {
			wd, err := os.Getwd()
			if err != nil {
				fmt.Fprintf(stderr, "Init failed: %v\n", err)
				return ExitError
			}
			target = config.ConfigPath(wd)
		}
		abs, err := filepath.Abs(target)
		if err != nil {
			fmt.Fprintf(stderr, "Init failed: %v\n", err)
			return ExitError
		}
		if err := config.Scaffold(abs, strings.TrimSpace(*dataDir)); err != nil {
			fmt.Fprintf(stderr, "Init failed: %v\n", err)
			return ExitError
		}

		fmt.Fprintf(stdout, "Created %s\n", abs)
		return ExitOK
	}
}
