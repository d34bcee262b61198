package config

// Config is the project configuration stored in .evalstore/config.yml.
type Config struct {
	Version  int    `yaml:"version"`
	DataDir  string `yaml:"data_dir"`
	User     string `yaml:"user"`
	LogLevel string `yaml:"log_level"`
	UI       string `yaml:"ui"`
}

// Log levels accepted by log_level.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// UI modes accepted by ui.
const (
	UIAuto  = "auto"
	UILive  = "live"
	UIPlain = "plain"
)
