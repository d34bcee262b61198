package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const defaultConfig = `version: 1
# Directory holding task folders, relative to the project root.
data_dir: "%s"
# Recorded as created_by on new entities. Defaults to $USER.
# user: "jane"
log_level: info
ui: auto
`

// Scaffold writes a default config at configPath and creates the data
// directory next to it. Existing files are never overwritten.
func Scaffold(configPath, dataDir string) error {
	if configPath == "" {
		return fmt.Errorf("config path is required")
	}
	if dataDir == "" {
		dataDir = DefaultDataDir
	}
	if info, err := os.Stat(configPath); err == nil {
		if info.IsDir() {
			return fmt.Errorf("config path %q is a directory", configPath)
		}
		return fmt.Errorf("config file already exists at %q", configPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	dataPath := dataDir
	if !filepath.IsAbs(dataPath) {
		dataPath = filepath.Join(RootFromConfigPath(configPath), dataDir)
	}
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(fmt.Sprintf(defaultConfig, dataDir)), 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
