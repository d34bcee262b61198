package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		Version:  1,
		DataDir:  "evals",
		User:     "tester",
		LogLevel: LogLevelInfo,
		UI:       UIAuto,
	}
}

func TestNormalizeDefaults(t *testing.T) {
	t.Setenv("USER", "envuser")
	cfg := Config{Version: 1, DataDir: "  evals ", LogLevel: " DEBUG "}

	Normalize(&cfg)

	if cfg.DataDir != "evals" {
		t.Fatalf("expected trimmed data dir, got %q", cfg.DataDir)
	}
	if cfg.User != "envuser" {
		t.Fatalf("expected user from $USER, got %q", cfg.User)
	}
	if cfg.LogLevel != LogLevelDebug {
		t.Fatalf("expected lowercased level, got %q", cfg.LogLevel)
	}
	if cfg.UI != UIAuto {
		t.Fatalf("expected default ui auto, got %q", cfg.UI)
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	cfg := validConfig()
	if err := Validate(&cfg); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateCollectsIssues(t *testing.T) {
	cfg := Config{Version: 3, LogLevel: "loud", UI: "fancy"}

	err := Validate(&cfg)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	fields := map[string]bool{}
	for _, issue := range validationErr.Issues {
		fields[issue.Field] = true
	}
	for _, field := range []string{"version", "data_dir", "log_level", "ui"} {
		if !fields[field] {
			t.Fatalf("expected issue for %s, got %+v", field, validationErr.Issues)
		}
	}
	if len(strings.Split(err.Error(), "\n")) != 4 {
		t.Fatalf("expected one line per issue, got %q", err.Error())
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("version: 1\ndata_dir: evals\nextra: true\n"))
	if err == nil || !strings.Contains(err.Error(), "extra") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestParseRejectsMultipleDocuments(t *testing.T) {
	_, err := Parse([]byte("version: 1\ndata_dir: evals\n---\nversion: 1\n"))
	if err == nil || !strings.Contains(err.Error(), "multiple documents") {
		t.Fatalf("expected multiple documents error, got %v", err)
	}
	if _, err := Parse(nil); err == nil {
		t.Fatalf("expected empty document error")
	}
}

func TestScaffoldThenLoad(t *testing.T) {
	root := t.TempDir()
	path := ConfigPath(root)
	if err := Scaffold(path, ""); err != nil {
		t.Fatalf("scaffold: %v", err)
	}
	if info, err := os.Stat(filepath.Join(root, DefaultDataDir)); err != nil || !info.IsDir() {
		t.Fatalf("expected data dir, got %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load scaffold: %v", err)
	}
	if cfg.DataDir != DefaultDataDir || cfg.LogLevel != LogLevelInfo || cfg.UI != UIAuto {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if got := DataPath(cfg, RootFromConfigPath(path)); got != filepath.Join(root, DefaultDataDir) {
		t.Fatalf("unexpected data path %q", got)
	}
	if err := Scaffold(path, ""); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected existing file error, got %v", err)
	}
}

func TestFindConfigPathSearchesUpward(t *testing.T) {
	root := t.TempDir()
	if err := Scaffold(ConfigPath(root), ""); err != nil {
		t.Fatalf("scaffold: %v", err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	found, err := FindConfigPath(nested)
	if err != nil {
		t.Fatalf("find config: %v", err)
	}
	want, _ := filepath.EvalSymlinks(ConfigPath(root))
	got, _ := filepath.EvalSymlinks(found)
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFindConfigPathMissingFile(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(ConfigDir(root), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	_, err := FindConfigPath(root)
	if err == nil || !strings.Contains(err.Error(), "is missing") {
		t.Fatalf("expected missing config error, got %v", err)
	}
}

func TestLoadAppliesDotEnvAndEnvironment(t *testing.T) {
	root := t.TempDir()
	path := ConfigPath(root)
	if err := Scaffold(path, ""); err != nil {
		t.Fatalf("scaffold: %v", err)
	}
	dotEnv := "EVALSTORE_DATA_DIR=from-dotenv\nEVALSTORE_LOG_LEVEL=debug\n"
	if err := os.WriteFile(filepath.Join(root, DotEnvFileName), []byte(dotEnv), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "from-dotenv" {
		t.Fatalf("expected data dir from .env, got %q", cfg.DataDir)
	}
	if cfg.LogLevel != LogLevelWarn {
		t.Fatalf("expected process env to win over .env, got %q", cfg.LogLevel)
	}
}
