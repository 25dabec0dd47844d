package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/alexbrand/stepexport/internal/config"
)

// resolveConfig loads the config file and applies the flags the user set.
// Flags win over environment variables, which win over the file.
func resolveConfig(cmd *cobra.Command, o *options) (*config.Config, error) {
	if err := config.Init(o.cfgFile); err != nil {
		return nil, ConfigError(err)
	}
	cfg := *config.Get()

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format = o.format
	}
	if flags.Changed("module-version") {
		cfg.ModuleVersion = o.moduleVersion
	}
	if flags.Changed("features") {
		cfg.Features = o.features
	}
	if flags.Changed("unclassified") {
		cfg.Unclassified = o.unclassified
	}
	if flags.Changed("include-tests") {
		cfg.IncludeTests = o.includeTests
	}
	if flags.Changed("gist-public") {
		cfg.Gist.Public = o.gistPublic
	}

	if err := cfg.Validate(); err != nil {
		return nil, ConfigError(err)
	}
	return &cfg, nil
}

// printConfig writes the effective configuration as YAML.
func printConfig(w io.Writer, cfg *config.Config) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return WrapExitCodeError(ExitError, "failed to format configuration", err)
	}
	if path := config.ConfigFilePath(); path != "" {
		fmt.Fprintf(w, "# %s\n", path)
	}
	_, err = w.Write(out)
	return err
}
