package config

import (
	"os"
	"strings"
)

// Normalize trims values and fills defaults.
func Normalize(cfg *Config) {
	cfg.DataDir = strings.TrimSpace(cfg.DataDir)
	cfg.User = strings.TrimSpace(cfg.User)
	if cfg.User == "" {
		cfg.User = strings.TrimSpace(os.Getenv("USER"))
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = LogLevelInfo
	}
	cfg.UI = strings.ToLower(strings.TrimSpace(cfg.UI))
	if cfg.UI == "" {
		cfg.UI = UIAuto
	}
}
