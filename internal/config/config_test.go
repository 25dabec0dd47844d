package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"

	"github.com/alexbrand/stepexport/internal/step"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return cfgPath
}

func TestInit_WithValidConfig(t *testing.T) {
	cfgPath := writeConfig(t, `
format: markdown
module_version: 1.2.0
features: ./spec/features
unclassified: then
include_tests: true
step_imports:
  - github.com/cucumber/godog
  - example.com/steps
write_mode: replace
gist:
  public: true
  description: Supported steps
`)

	if err := Init(cfgPath); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	cfg := Get()
	if cfg == nil {
		t.Fatal("Get() returned nil")
	}
	if cfg.Format != "markdown" {
		t.Errorf("expected format 'markdown', got %q", cfg.Format)
	}
	if cfg.ModuleVersion != "1.2.0" {
		t.Errorf("expected module_version '1.2.0', got %q", cfg.ModuleVersion)
	}
	if cfg.Features != "./spec/features" {
		t.Errorf("expected features './spec/features', got %q", cfg.Features)
	}
	if !cfg.IncludeTests {
		t.Error("expected include_tests to be true")
	}
	if len(cfg.StepImports) != 2 || cfg.StepImports[1] != "example.com/steps" {
		t.Errorf("unexpected step_imports %v", cfg.StepImports)
	}
	if cfg.WriteMode != "replace" {
		t.Errorf("expected write_mode 'replace', got %q", cfg.WriteMode)
	}
	if !cfg.Gist.Public || cfg.Gist.Description != "Supported steps" {
		t.Errorf("unexpected gist settings %+v", cfg.Gist)
	}

	fallback, err := cfg.Fallback()
	if err != nil || fallback != step.CategoryThen {
		t.Errorf("Fallback() = %q, %v; want then", fallback, err)
	}
	if ConfigFilePath() != cfgPath {
		t.Errorf("ConfigFilePath() = %q, want %q", ConfigFilePath(), cfgPath)
	}
}

func TestInit_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()
	defer xdg.Reload()

	if err := Init(""); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	cfg := Get()
	if cfg.Format != "html" {
		t.Errorf("expected default format 'html', got %q", cfg.Format)
	}
	if cfg.Unclassified != UnclassifiedSkip {
		t.Errorf("expected default unclassified 'skip', got %q", cfg.Unclassified)
	}
	if cfg.WriteMode != "atomic" {
		t.Errorf("expected default write_mode 'atomic', got %q", cfg.WriteMode)
	}
	if len(cfg.StepImports) != 1 || cfg.StepImports[0] != "github.com/cucumber/godog" {
		t.Errorf("unexpected default step_imports %v", cfg.StepImports)
	}
	if fallback, err := cfg.Fallback(); err != nil || fallback != "" {
		t.Errorf("Fallback() = %q, %v; want skip", fallback, err)
	}
}

func TestInit_ProjectLocalConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".stepexport"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".stepexport", "config.yaml"), []byte("format: plain\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	if err := Init(""); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if Get().Format != "plain" {
		t.Errorf("expected format 'plain' from project config, got %q", Get().Format)
	}
}

func TestInit_EnvOverridesFile(t *testing.T) {
	cfgPath := writeConfig(t, "format: markdown\ngist:\n  description: from file\n")
	t.Setenv("STEPEXPORT_FORMAT", "json")
	t.Setenv("STEPEXPORT_GIST_DESCRIPTION", "from env")
	t.Setenv("STEPEXPORT_STEP_IMPORTS", "a.com/x,b.com/y")

	if err := Init(cfgPath); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	cfg := Get()
	if cfg.Format != "json" {
		t.Errorf("expected env format 'json', got %q", cfg.Format)
	}
	if cfg.Gist.Description != "from env" {
		t.Errorf("expected env gist description, got %q", cfg.Gist.Description)
	}
	if len(cfg.StepImports) != 2 || cfg.StepImports[0] != "a.com/x" {
		t.Errorf("unexpected step_imports %v", cfg.StepImports)
	}
}

func TestInit_MissingConfigFile(t *testing.T) {
	err := Init(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Error("Init() expected error for explicit missing config file")
	}
}

func TestInit_InvalidYAML(t *testing.T) {
	cfgPath := writeConfig(t, "format: [unclosed\n")

	if err := Init(cfgPath); err == nil {
		t.Error("Init() expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{Format: "html", Unclassified: "skip", WriteMode: "atomic"}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"empty unclassified", func(c *Config) { c.Unclassified = "" }, false},
		{"unclassified alias", func(c *Config) { c.Unclassified = "action" }, false},
		{"bad format", func(c *Config) { c.Format = "table" }, true},
		{"bad unclassified", func(c *Config) { c.Unclassified = "maybe" }, true},
		{"bad write mode", func(c *Config) { c.WriteMode = "copy" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Errorf("error %v should wrap ErrInvalid", err)
			}
		})
	}
}

func TestInit_InvalidValue(t *testing.T) {
	cfgPath := writeConfig(t, "format: table\n")

	err := Init(cfgPath)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("Init() error = %v, want ErrInvalid", err)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("expected config.yaml, got %q", filepath.Base(path))
	}
	if filepath.Base(filepath.Dir(path)) != AppName {
		t.Errorf("expected %s directory, got %q", AppName, filepath.Dir(path))
	}
}
