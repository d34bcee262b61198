package cli

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"evalstore/internal/config"
	"evalstore/internal/logging"
)

// resolveConfigPath normalizes a config path or finds it from CWD.
func resolveConfigPath(configPath string) (string, error) {
	if strings.TrimSpace(configPath) == "" {
		return config.FindConfigPath("")
	}
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return abs, nil
}

// project is a loaded configuration plus the paths derived from it.
type project struct {
	Config  config.Config
	Root    string
	DataDir string
	Logger  *slog.Logger
}

// loadProject resolves and loads the config and builds the command logger
// on stderr. verbose forces debug logging.
func loadProject(configPath string, verbose bool, stderr io.Writer) (project, error) {
	resolved, err := resolveConfigPath(configPath)
	if err != nil {
		return project{}, err
	}
	cfg, err := config.Load(resolved)
	if err != nil {
		return project{}, err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return project{}, err
	}
	if verbose {
		level = slog.LevelDebug
	}
	root := config.RootFromConfigPath(resolved)
	logger := logging.New(stderr, level, color.NoColor || !isTerminal(stderr))
	logger.Debug("loaded config", "path", resolved, "data_dir", cfg.DataDir)
	return project{
		Config:  cfg,
		Root:    root,
		DataDir: config.DataPath(cfg, root),
		Logger:  logger,
	}, nil
}
