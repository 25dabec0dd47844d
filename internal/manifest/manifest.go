// Package manifest loads step-definition modules from YAML registration
// manifests.
//
// A manifest registers step patterns explicitly, for step sources that the
// Go source loader cannot introspect:
//
//	name: MyProject.Steps
//	version: 1.2.0.0
//	given:
//	  - I have (\d+) cukes
//	when: []
//	then: []
package manifest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alexbrand/stepexport/internal/loader"
	"github.com/alexbrand/stepexport/internal/step"
)

// Name is the loader kind this package registers.
const Name = loader.KindManifest

// File is the on-disk manifest structure.
type File struct {
	Name    string   `yaml:"name"`
	Version string   `yaml:"version"`
	Given   []string `yaml:"given"`
	When    []string `yaml:"when"`
	Then    []string `yaml:"then"`
}

// Manifest loads modules from manifest files.
type Manifest struct{}

// New creates a manifest loader.
func New() *Manifest {
	return &Manifest{}
}

// Register adds the manifest loader to the loader registry.
func Register() {
	loader.Register(Name, func() loader.Loader {
		return New()
	})
}

// Name returns the loader kind.
func (m *Manifest) Name() string {
	return Name
}

// Load reads the manifest at path.
func (m *Manifest) Load(path string, opts loader.Options) (*step.Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, loader.NewLoadError(path, err)
	}
	defer f.Close()

	var mf File
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&mf); err != nil && !errors.Is(err, io.EOF) {
		return nil, loader.NewLoadError(path, fmt.Errorf("invalid manifest: %w", err))
	}

	return mf.Module(path, opts.Version), nil
}

// Module converts the manifest into a module. A non-empty version overrides
// the manifest's own version.
func (mf *File) Module(path, version string) *step.Module {
	reg := step.NewRegistry()
	for _, p := range mf.Given {
		reg.Given(p)
	}
	for _, p := range mf.When {
		reg.When(p)
	}
	for _, p := range mf.Then {
		reg.Then(p)
	}

	name := mf.Name
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if version == "" {
		version = mf.Version
	}
	if version == "" {
		version = loader.DefaultVersion
	}

	mod := reg.Module(name, version)
	mod.Path = path
	return mod
}

var _ loader.Loader = (*Manifest)(nil)
