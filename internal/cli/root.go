// Package cli implements the stepexport command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/alexbrand/stepexport/internal/config"
	"github.com/alexbrand/stepexport/internal/credentials"
	"github.com/alexbrand/stepexport/internal/export"
	"github.com/alexbrand/stepexport/internal/github"
	"github.com/alexbrand/stepexport/internal/loader"
	"github.com/alexbrand/stepexport/internal/log"
	"github.com/alexbrand/stepexport/internal/output"
)

const usageText = `Step Exporter
Generates a simple HTML documentation with the supported steps (regular expressions) found in the step definition module
Usage: stepexport [filepath to steps definition] [filename to export HTML to]
`

// options holds the flag values of one invocation.
type options struct {
	cfgFile       string
	format        string
	moduleVersion string
	features      string
	unclassified  string
	includeTests  bool
	gist          bool
	gistPublic    bool
	showConfig    bool
	verbose       bool
}

// NewRootCmd builds the stepexport command.
func NewRootCmd() *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:   "stepexport [flags] <steps> <output>",
		Short: "Export the supported step patterns of a step definition module",
		Long: `stepexport loads a step definition module, collects the regular
expressions of its Given, When and Then steps, and writes them to a report.

The module is a Go package directory, a single .go file, a directory
followed by "/..." for every package below it, or a YAML manifest.

Examples:
  stepexport ./spec/steps steps.html
  stepexport ./spec/... steps.md -f markdown
  stepexport --features ./spec/features ./spec/steps steps.html
  stepexport steps.yaml steps.html --gist`,
		Version:       versionString(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return exitError(run(cmd, o, args))
		},
	}
	cmd.SetVersionTemplate(versionTemplate)
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return WrapExitCodeError(ExitUsageError, "", err)
	})

	f := cmd.Flags()
	f.StringVar(&o.cfgFile, "config", "", "config file (default: .stepexport/config.yaml, then "+config.DefaultConfigPath()+")")
	f.StringVarP(&o.format, "format", "f", "", "output format: html, markdown, json, plain (default html)")
	f.StringVar(&o.moduleVersion, "module-version", "", "version shown in the report header (default "+loader.DefaultVersion+")")
	f.StringVar(&o.features, "features", "", "directory of .feature files used to classify generic steps")
	f.StringVar(&o.unclassified, "unclassified", "", "category for steps nothing else classifies: given, when, then, skip (default skip)")
	f.BoolVar(&o.includeTests, "include-tests", false, "include _test.go files when loading Go source")
	f.BoolVar(&o.gist, "gist", false, "also publish the report as a GitHub gist")
	f.BoolVar(&o.gistPublic, "gist-public", false, "make the published gist public")
	f.BoolVar(&o.showConfig, "show-config", false, "print the effective configuration and exit")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "enable debug logging on stderr")

	return cmd
}

func run(cmd *cobra.Command, o *options, args []string) error {
	stdout := cmd.OutOrStdout()

	// A wrong argument count prints usage even when the config is broken.
	if len(args) != 2 && !o.showConfig {
		printUsage(stdout)
		return nil
	}

	cfg, err := resolveConfig(cmd, o)
	if err != nil {
		return err
	}
	if o.showConfig {
		return printConfig(stdout, cfg)
	}
	modulePath, outputPath := args[0], args[1]

	fallback, err := cfg.Fallback()
	if err != nil {
		return ConfigError(err)
	}

	logger := log.New(cmd.ErrOrStderr(), o.verbose)

	res, err := export.Run(export.Options{
		ModulePath: modulePath,
		OutputPath: outputPath,
		Format:     output.Format(cfg.Format),
		WriteMode:  output.WriteMode(cfg.WriteMode),
		Load: loader.Options{
			Version:      cfg.ModuleVersion,
			IncludeTests: cfg.IncludeTests,
			Imports:      cfg.StepImports,
		},
		FeaturesDir: cfg.Features,
		Fallback:    fallback,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(stdout, "Generated supported steps to %s\n", outputPath)

	if !o.gist {
		return nil
	}
	return publish(cmd.Context(), stdout, cfg, res, filepath.Base(outputPath))
}

// publish uploads the rendered report as a gist.
func publish(ctx context.Context, w io.Writer, cfg *config.Config, res *export.Result, filename string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := credentials.Init(""); err != nil {
		return ConfigError(err)
	}
	token, err := credentials.GetGitHubToken()
	if err != nil {
		return WrapExitCodeError(ExitError, "failed to publish gist", err)
	}

	p := github.New()
	if err := p.Connect(ctx, token); err != nil {
		return WrapExitCodeError(ExitError, "failed to publish gist", err)
	}

	description := cfg.Gist.Description
	if description == "" {
		description = res.Report.Header()
	}

	gist, err := p.Publish(ctx, github.Gist{
		Filename:    filename,
		Description: description,
		Public:      cfg.Gist.Public,
		Content:     string(res.Data),
	})
	if err != nil {
		return WrapExitCodeError(ExitError, "failed to publish gist", err)
	}

	color.New(color.FgGreen).Fprintf(w, "Published gist to %s\n", gist.URL)
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// Execute runs the CLI application.
// Errors are printed to stderr as "error: <message>".
func Execute() error {
	cmd := NewRootCmd()
	err := cmd.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return err
}
