// Package config provides configuration loading and management using Viper.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/alexbrand/stepexport/internal/extract"
	"github.com/alexbrand/stepexport/internal/output"
	"github.com/alexbrand/stepexport/internal/step"
)

// AppName names the config directories and the environment prefix.
const AppName = "stepexport"

// UnclassifiedSkip drops definitions nothing could classify.
const UnclassifiedSkip = "skip"

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the top-level configuration structure.
type Config struct {
	Format        string   `mapstructure:"format" yaml:"format" json:"format"`
	ModuleVersion string   `mapstructure:"module_version" yaml:"module_version,omitempty" json:"module_version,omitempty"`
	Features      string   `mapstructure:"features" yaml:"features,omitempty" json:"features,omitempty"`
	Unclassified  string   `mapstructure:"unclassified" yaml:"unclassified" json:"unclassified"`
	IncludeTests  bool     `mapstructure:"include_tests" yaml:"include_tests,omitempty" json:"include_tests,omitempty"`
	StepImports   []string `mapstructure:"step_imports" yaml:"step_imports" json:"step_imports"`
	WriteMode     string   `mapstructure:"write_mode" yaml:"write_mode" json:"write_mode"`
	Gist          Gist     `mapstructure:"gist" yaml:"gist" json:"gist"`
}

// Gist holds the settings for publishing the report as a GitHub gist.
type Gist struct {
	Public      bool   `mapstructure:"public" yaml:"public,omitempty" json:"public,omitempty"`
	Description string `mapstructure:"description" yaml:"description,omitempty" json:"description,omitempty"`
}

var cfg *Config

// Dir returns the user configuration directory, e.g. ~/.config/stepexport.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Init initializes the configuration system.
// Config files are searched in the following order:
// 1. Explicit path via cfgPath parameter (--config flag)
// 2. Project-local: .stepexport/config.yaml (current directory)
// 3. User global: $XDG_CONFIG_HOME/stepexport/config.yaml
//
// STEPEXPORT_* environment variables override file values.
func Init(cfgPath string) error {
	viper.Reset()

	if cfgPath != "" {
		viper.SetConfigFile(cfgPath)
	} else {
		viper.AddConfigPath("." + AppName)
		viper.AddConfigPath(Dir())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix(strings.ToUpper(AppName))
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Every key needs a default so AutomaticEnv sees it during Unmarshal.
	viper.SetDefault("format", string(output.FormatHTML))
	viper.SetDefault("module_version", "")
	viper.SetDefault("features", "")
	viper.SetDefault("unclassified", UnclassifiedSkip)
	viper.SetDefault("include_tests", false)
	viper.SetDefault("step_imports", extract.DefaultImports)
	viper.SetDefault("write_mode", string(output.WriteAtomic))
	viper.SetDefault("gist.public", false)
	viper.SetDefault("gist.description", "")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - we'll use defaults
	}

	c := &Config{}
	if err := viper.Unmarshal(c); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return err
	}

	cfg = c
	return nil
}

// Get returns the current configuration.
// Returns nil if Init has not been called.
func Get() *Config {
	return cfg
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	if !output.Format(c.Format).IsValid() {
		return fmt.Errorf("%w: format %q (valid: %s)", ErrInvalid, c.Format, joinFormats())
	}
	if _, err := c.Fallback(); err != nil {
		return err
	}
	if !output.WriteMode(c.WriteMode).IsValid() {
		return fmt.Errorf("%w: write_mode %q (valid: atomic, replace)", ErrInvalid, c.WriteMode)
	}
	return nil
}

// Fallback returns the category for definitions nothing else could
// classify. An empty category means they are skipped.
func (c *Config) Fallback() (step.Category, error) {
	if c.Unclassified == "" || c.Unclassified == UnclassifiedSkip {
		return "", nil
	}
	cat, err := step.ParseCategory(c.Unclassified)
	if err != nil {
		return "", fmt.Errorf("%w: unclassified %q (valid: given, when, then, skip)", ErrInvalid, c.Unclassified)
	}
	return cat, nil
}

// ConfigFilePath returns the path to the config file being used.
func ConfigFilePath() string {
	return viper.ConfigFileUsed()
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

func joinFormats() string {
	names := make([]string, 0, len(output.ValidFormats()))
	for _, f := range output.ValidFormats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}
