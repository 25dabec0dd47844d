// Package export runs the load, classify, render and write pipeline that
// turns a step-definition module into a report file.
package export

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/alexbrand/stepexport/internal/extract"
	"github.com/alexbrand/stepexport/internal/features"
	"github.com/alexbrand/stepexport/internal/loader"
	"github.com/alexbrand/stepexport/internal/output"
	"github.com/alexbrand/stepexport/internal/step"
)

// Options configures a single export.
type Options struct {
	// ModulePath is the step-definition module to load.
	ModulePath string
	// OutputPath is the file the report is written to. Empty skips writing.
	OutputPath string
	// Format selects the renderer. Empty means HTML.
	Format output.Format
	// WriteMode selects how an existing output file is replaced.
	WriteMode output.WriteMode
	// Load is passed through to the loader.
	Load loader.Options
	// FeaturesDir, when set, is searched for .feature files used to
	// classify generic steps.
	FeaturesDir string
	// Fallback is the category for steps nothing else classified.
	// Empty skips them.
	Fallback step.Category
	Logger   *slog.Logger
}

// Result is what an export produced.
type Result struct {
	Module  *step.Module
	Report  *output.Report
	Skipped []step.Definition
	// Data is the rendered document as written to OutputPath.
	Data []byte
}

// Run performs the export. Load failures are *loader.LoadError and write
// failures are *output.IOError.
func Run(opts Options) (*Result, error) {
	log := opts.Load.Log()
	if opts.Logger != nil {
		log = opts.Logger
		opts.Load.Logger = opts.Logger
	}

	mod, err := loader.Load(opts.ModulePath, opts.Load)
	if err != nil {
		return nil, err
	}
	log.Debug("loaded module", "name", mod.Name, "version", mod.Version, "definitions", len(mod.Definitions))

	var cls extract.Classifier
	if opts.FeaturesDir != "" {
		fc, err := features.Load(opts.FeaturesDir)
		if err != nil {
			return nil, loader.NewLoadError(opts.FeaturesDir, err)
		}
		log.Debug("loaded feature files", "dir", opts.FeaturesDir, "steps", len(fc.Usages()))
		cls = fc
	}

	skipped := extract.Classify(mod, cls, opts.Fallback)
	for _, d := range skipped {
		log.Warn("skipping step with no category", "pattern", d.Pattern, "handler", d.Handler, "pos", d.Pos)
	}

	patterns := make(map[step.Category][]string, 3)
	for _, c := range step.Categories() {
		patterns[c] = extract.Extract(mod, c)
	}
	report := output.NewReport(mod.Name, mod.Version, patterns)

	var buf bytes.Buffer
	if err := output.New(opts.Format).Render(&buf, report); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	if opts.OutputPath != "" {
		mode := opts.WriteMode
		if mode == "" {
			mode = output.WriteAtomic
		}
		if err := output.Write(opts.OutputPath, buf.Bytes(), mode); err != nil {
			return nil, err
		}
		log.Debug("wrote report", "path", opts.OutputPath, "bytes", buf.Len(), "mode", mode)
	}

	return &Result{
		Module:  mod,
		Report:  report,
		Skipped: skipped,
		Data:    buf.Bytes(),
	}, nil
}
