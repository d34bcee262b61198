package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"evalstore/internal/config"
)

// uiModeDecision captures whether to use the live browser.
type uiModeDecision struct {
	useLive bool
	warning string
}

// isTerminal reports whether a writer is a TTY.
var isTerminal = defaultIsTerminal

// resolveUIMode determines whether to start the live browser. Verbose
// logging on the same terminal would corrupt it, so verbose means plain.
func resolveUIMode(mode string, verbose bool, stdout io.Writer) (uiModeDecision, error) {
	normalized := strings.ToLower(strings.TrimSpace(mode))
	if normalized == "" {
		normalized = config.UIAuto
	}
	switch normalized {
	case config.UIAuto:
		return uiModeDecision{useLive: !verbose && isTerminal(stdout)}, nil
	case config.UILive:
		if verbose {
			return uiModeDecision{warning: "Live UI disabled by --verbose; using plain output."}, nil
		}
		if isTerminal(stdout) {
			return uiModeDecision{useLive: true}, nil
		}
		return uiModeDecision{
			useLive: false,
			warning: "Live UI requested but stdout is not a TTY; falling back to plain output.",
		}, nil
	case config.UIPlain:
		return uiModeDecision{useLive: false}, nil
	default:
		return uiModeDecision{}, fmt.Errorf("invalid ui mode %q (expected auto|live|plain)", mode)
	}
}

// defaultIsTerminal inspects a writer for TTY support.
func defaultIsTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}
	if file, ok := w.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	if fder, ok := w.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(fder.Fd()))
	}
	return false
}
