// Package loader defines how step-definition modules are loaded and keeps a
// registry of the available loaders.
package loader

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/alexbrand/stepexport/internal/log"
	"github.com/alexbrand/stepexport/internal/step"
)

// Loader kinds.
const (
	KindGo       = "go"
	KindManifest = "manifest"
)

// DefaultVersion is reported for modules that carry no version of their own.
const DefaultVersion = "(devel)"

// ErrLoad is the sentinel wrapped by every LoadError.
var ErrLoad = errors.New("load failed")

// LoadError reports a module that does not exist, is not a valid module, or
// cannot be introspected.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Path, e.Err)
}

// Unwrap exposes both ErrLoad and the underlying cause.
func (e *LoadError) Unwrap() []error {
	return []error{ErrLoad, e.Err}
}

// NewLoadError wraps err as a LoadError for path.
func NewLoadError(path string, err error) *LoadError {
	return &LoadError{Path: path, Err: err}
}

// Options holds settings shared by all loaders.
type Options struct {
	// Version overrides the module version shown in reports.
	Version string
	// IncludeTests includes _test.go files when loading Go source.
	IncludeTests bool
	// Imports lists the step framework import paths to recognise.
	Imports []string
	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger
}

// Log returns the configured logger or a discarding one.
func (o Options) Log() *slog.Logger {
	if o.Logger == nil {
		return log.Discard()
	}
	return o.Logger
}

// ForPath returns the loader kind that handles path.
// YAML files are registration manifests; everything else is Go source.
func ForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return KindManifest
	default:
		return KindGo
	}
}

// Loader turns a path into a step-definition module.
type Loader interface {
	// Name returns the loader kind, e.g. "go" or "manifest".
	Name() string

	// Load reads the module at path. Failures are returned as *LoadError.
	Load(path string, opts Options) (*step.Module, error)
}
