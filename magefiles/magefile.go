//go:build mage

// Package main contains Mage build targets for stepexport developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "stepexport"
	cmdPkg  = "./cmd/stepexport"
	docsDir = "docs"
)

var ldflags = "-X github.com/alexbrand/stepexport/internal/cli.Version=dev"

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./internal/...", "./spec/support/...")
}

// Spec builds the binary and runs the Gherkin specs against it.
func Spec() error {
	mg.Deps(Build)
	bin, err := filepath.Abs(filepath.Join(binDir, binName))
	if err != nil {
		return err
	}
	return sh.RunWithV(map[string]string{"STEPEXPORT_BIN": bin}, "go", "test", "./spec", "-run", "TestFeatures", "-count=1")
}

// Docs exports the steps of the acceptance suite to docs/steps.html.
func Docs() error {
	mg.Deps(Build)
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", docsDir, err)
	}
	return sh.RunV(filepath.Join(binDir, binName), "--features", "./spec/features", "./spec/steps", filepath.Join(docsDir, "steps.html"))
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}
