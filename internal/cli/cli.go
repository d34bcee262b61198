// Package cli implements the evalstore command line.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

type Command struct {
	Name    string
	Summary string
	Usage   []string
	Run     func(args []string, stdout, stderr io.Writer) int
}

func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stdout)
		return ExitUsage
	}
	if isHelpArg(args[0]) {
		printUsage(stdout)
		return ExitOK
	}

	cmd := findCommand(args[0])
	if cmd == nil {
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return ExitUsage
	}

	return cmd.Run(args[1:], stdout, stderr)
}

func findCommand(name string) *Command {
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func isHelpArg(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	default:
		return false
	}
}

func wantsHelp(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-h", "--help":
			return true
		}
	}
	return false
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  evalstore <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-9s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintln(w, "\nUse \"evalstore <command> --help\" for more information.")
}

func printCommandUsage(cmd *Command, w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	for _, line := range cmd.Usage {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if cmd.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", cmd.Summary)
	}
}

// parseFlags parses args into flags. When ok is false the caller returns code.
// maxArgs limits positional arguments; a negative value allows any number.
func parseFlags(cmd *Command, flags *flag.FlagSet, args []string, maxArgs int, stdout, stderr io.Writer) (code int, ok bool) {
	flags.SetOutput(stderr)
	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			printCommandUsage(cmd, stdout)
			return ExitOK, false
		}
		fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
		printCommandUsage(cmd, stderr)
		return ExitUsage, false
	}
	if maxArgs >= 0 && flags.NArg() > maxArgs {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(flags.Args()[maxArgs:], " "))
		printCommandUsage(cmd, stderr)
		return ExitUsage, false
	}
	return ExitOK, true
}

func command(name, summary string, usage []string, runner func(cmd *Command) func(args []string, stdout, stderr io.Writer) int) *Command {
	cmd := &Command{
		Name:    name,
		Summary: summary,
		Usage:   usage,
	}
	cmd.Run = runner(cmd)
	return cmd
}

var commands = []*Command{
	command("init", "Scaffold .evalstore/config.yml and the data directory", []string{
		"evalstore init [--config <path>] [--data-dir <dir>]",
	}, runInit),
	command("create", "Create an entity from a definition file", []string{
		"evalstore create --file <definition.yml> [--parent <path>] [--config <path>]",
	}, runCreate),
	command("validate", "Load and validate every stored entity", []string{
		"evalstore validate [--config <path>] [--verbose]",
	}, runValidate),
	command("tree", "Browse the task hierarchy", []string{
		"evalstore tree [--ui auto|live|plain] [--no-color] [--config <path>]",
	}, runTree),
	command("show", "Print the stored form of an entity", []string{
		"evalstore show <path>",
	}, runShow),
	command("export", "Export the hierarchy to a DuckDB file", []string{
		"evalstore export --out <file.duckdb> [--config <path>] [--verbose]",
	}, runExport),
}
