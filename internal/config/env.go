package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// DotEnvFileName is read from the project root when present.
const DotEnvFileName = ".env"

// Environment overrides, applied after the config file is parsed.
const (
	EnvDataDir  = "EVALSTORE_DATA_DIR"
	EnvUser     = "EVALSTORE_USER"
	EnvLogLevel = "EVALSTORE_LOG_LEVEL"
	EnvUI       = "EVALSTORE_UI"
)

// lookupFunc resolves an environment variable.
type lookupFunc func(key string) (string, bool)

// envLookup layers the process environment over the project .env file.
// The process environment is never modified.
func envLookup(root string) (lookupFunc, error) {
	fileValues := map[string]string{}
	path := filepath.Join(root, DotEnvFileName)
	values, err := godotenv.Read(path)
	switch {
	case err == nil:
		fileValues = values
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return func(key string) (string, bool) {
		if value, ok := os.LookupEnv(key); ok {
			return value, true
		}
		value, ok := fileValues[key]
		return value, ok
	}, nil
}

// ApplyEnv overrides config fields from the environment.
func ApplyEnv(cfg *Config, lookup lookupFunc) {
	if value, ok := lookup(EnvDataDir); ok && value != "" {
		cfg.DataDir = value
	}
	if value, ok := lookup(EnvUser); ok && value != "" {
		cfg.User = value
	}
	if value, ok := lookup(EnvLogLevel); ok && value != "" {
		cfg.LogLevel = value
	}
	if value, ok := lookup(EnvUI); ok && value != "" {
		cfg.UI = value
	}
}
