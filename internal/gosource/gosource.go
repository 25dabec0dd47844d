// Package gosource loads step-definition modules from Go source packages.
//
// A module path may name a package directory, a single .go file, or a
// directory followed by "/..." to include every package below it. Files are
// parsed in file-name order so the definitions come out in a stable order.
package gosource

import (
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"

	"github.com/alexbrand/stepexport/internal/extract"
	"github.com/alexbrand/stepexport/internal/loader"
	"github.com/alexbrand/stepexport/internal/step"
)

// Name is the loader kind this package registers.
const Name = loader.KindGo

// recursiveSuffix marks a path that includes all packages below it.
const recursiveSuffix = "/..."

// ErrNoGoFiles is returned when the path holds no Go source to load.
var ErrNoGoFiles = errors.New("no Go files found")

// Source loads modules from Go source.
type Source struct{}

// New creates a Go source loader.
func New() *Source {
	return &Source{}
}

// Register adds the Go source loader to the loader registry.
func Register() {
	loader.Register(Name, func() loader.Loader {
		return New()
	})
}

// Name returns the loader kind.
func (s *Source) Name() string {
	return Name
}

// Load parses the Go source at p and collects its step registrations.
func (s *Source) Load(p string, opts loader.Options) (*step.Module, error) {
	root, recursive := splitRecursive(p)

	info, err := os.Stat(root)
	if err != nil {
		return nil, loader.NewLoadError(p, err)
	}

	var dirs [][]string
	switch {
	case !info.IsDir():
		if !strings.HasSuffix(root, ".go") {
			return nil, loader.NewLoadError(p, fmt.Errorf("%s is not a Go source file", root))
		}
		dirs = [][]string{{root}}
	case recursive:
		dirs, err = walkPackages(root, opts.IncludeTests)
	default:
		var files []string
		files, err = goFiles(root, opts.IncludeTests)
		dirs = [][]string{files}
	}
	if err != nil {
		return nil, loader.NewLoadError(p, err)
	}

	log := opts.Log()
	fset := token.NewFileSet()
	var defs []step.Definition
	var pkgName string
	parsed := 0

	for _, files := range dirs {
		pkgs, err := parseDir(fset, files)
		if err != nil {
			return nil, loader.NewLoadError(p, err)
		}
		for _, pkg := range pkgs {
			if pkgName == "" {
				pkgName = pkg.Files[0].Name.Name
			}
			parsed += len(pkg.Files)
			found := extract.Scan(pkg, extract.Options{Imports: opts.Imports, Logger: log})
			log.Debug("scanned package", "package", pkg.Files[0].Name.Name, "files", len(pkg.Files), "definitions", len(found))
			defs = append(defs, found...)
		}
	}
	if parsed == 0 {
		return nil, loader.NewLoadError(p, ErrNoGoFiles)
	}

	version := opts.Version
	if version == "" {
		version = loader.DefaultVersion
	}

	return &step.Module{
		Name:        moduleName(root, info.IsDir(), pkgName),
		Version:     version,
		Path:        p,
		Definitions: defs,
	}, nil
}

func splitRecursive(p string) (string, bool) {
	if p == "..." {
		return ".", true
	}
	slashed := filepath.ToSlash(p)
	if strings.HasSuffix(slashed, recursiveSuffix) {
		root := strings.TrimSuffix(slashed, recursiveSuffix)
		if root == "" {
			root = "/"
		}
		return filepath.FromSlash(root), true
	}
	return p, false
}

// goFiles lists the Go files of one directory, sorted by name.
func goFiles(dir string, includeTests bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") {
			continue
		}
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		if !includeTests && strings.HasSuffix(name, "_test.go") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, nil
}

// walkPackages lists the Go files of root and every package directory below it.
func walkPackages(root string, includeTests bool) ([][]string, error) {
	var dirs [][]string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		files, err := goFiles(p, includeTests)
		if err != nil {
			return err
		}
		if len(files) > 0 {
			dirs = append(dirs, files)
		}
		return nil
	})
	return dirs, err
}

// skipDir mirrors the directories the go command ignores for "./...".
func skipDir(name string) bool {
	return name == "vendor" || name == "testdata" ||
		strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// parseDir parses the files of one directory and groups them by package
// clause, so an external _test package keeps its own constants.
func parseDir(fset *token.FileSet, files []string) ([]*extract.Package, error) {
	var pkgs []*extract.Package
	byName := make(map[string]*extract.Package)
	for _, f := range files {
		file, err := parser.ParseFile(fset, f, nil, parser.ParseComments|parser.SkipObjectResolution)
		if err != nil {
			return nil, err
		}
		pkg, ok := byName[file.Name.Name]
		if !ok {
			pkg = &extract.Package{Fset: fset}
			byName[file.Name.Name] = pkg
			pkgs = append(pkgs, pkg)
		}
		pkg.Files = append(pkg.Files, file)
	}
	return pkgs, nil
}

// moduleName returns the import path of the loaded directory, derived from
// the nearest go.mod. Without a go.mod it falls back to the package name.
func moduleName(root string, isDir bool, pkgName string) string {
	dir := root
	if !isDir {
		dir = filepath.Dir(root)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return pkgName
	}

	modDir, modPath, ok := findModule(abs)
	if !ok {
		return pkgName
	}
	rel, err := filepath.Rel(modDir, abs)
	if err != nil {
		return pkgName
	}
	if rel == "." {
		return modPath
	}
	return path.Join(modPath, filepath.ToSlash(rel))
}

// findModule walks up from dir to the first go.mod declaring a module path.
func findModule(dir string) (string, string, bool) {
	for {
		data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
		if err == nil {
			if modPath := modfile.ModulePath(data); modPath != "" {
				return dir, modPath, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", false
		}
		dir = parent
	}
}

var _ loader.Loader = (*Source)(nil)
