package support

import (
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GistConfig represents the gist section of config.
type GistConfig struct {
	Public      bool   `yaml:"public,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Config represents the stepexport configuration file.
type Config struct {
	Format        string      `yaml:"format,omitempty"`
	ModuleVersion string      `yaml:"module_version,omitempty"`
	Features      string      `yaml:"features,omitempty"`
	Unclassified  string      `yaml:"unclassified,omitempty"`
	IncludeTests  bool        `yaml:"include_tests,omitempty"`
	StepImports   []string    `yaml:"step_imports,omitempty"`
	WriteMode     string      `yaml:"write_mode,omitempty"`
	Gist          *GistConfig `yaml:"gist,omitempty"`
}

// ConfigGenerator creates project-local config files for test environments.
type ConfigGenerator struct{}

// NewConfigGenerator creates a new config generator.
func NewConfigGenerator() *ConfigGenerator {
	return &ConfigGenerator{}
}

// Path returns where the project-local config is written.
func (g *ConfigGenerator) Path(env *TestEnv) string {
	return filepath.Join(env.ConfigDir, "config.yaml")
}

// Generate creates a config file from a Config struct.
func (g *ConfigGenerator) Generate(env *TestEnv, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return g.GenerateFromYAML(env, string(data))
}

// GenerateFromYAML writes raw YAML as the project-local config.
func (g *ConfigGenerator) GenerateFromYAML(env *TestEnv, yamlContent string) error {
	rel, err := filepath.Rel(env.TempDir, g.Path(env))
	if err != nil {
		return err
	}
	return env.CreateFile(rel, yamlContent)
}
