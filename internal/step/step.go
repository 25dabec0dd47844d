// Package step defines the core types for step definitions and the modules
// that declare them.
package step

import (
	"fmt"
	"strings"
	"sync"
)

// Category is the kind of step a definition implements.
type Category string

const (
	CategoryGiven Category = "given"
	CategoryWhen  Category = "when"
	CategoryThen  Category = "then"
)

// Categories returns all categories in report order.
func Categories() []Category {
	return []Category{CategoryGiven, CategoryWhen, CategoryThen}
}

// IsValid checks if the category is one of the three step categories.
func (c Category) IsValid() bool {
	switch c {
	case CategoryGiven, CategoryWhen, CategoryThen:
		return true
	default:
		return false
	}
}

// Keyword returns the Gherkin keyword for the category ("Given", "When", "Then").
func (c Category) Keyword() string {
	switch c {
	case CategoryGiven:
		return "Given"
	case CategoryWhen:
		return "When"
	case CategoryThen:
		return "Then"
	default:
		return string(c)
	}
}

// ParseCategory converts a keyword or category name into a Category.
// Matching is case-insensitive and accepts both the Gherkin keyword and the
// long names precondition, action and assertion.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "given", "precondition":
		return CategoryGiven, nil
	case "when", "action":
		return CategoryWhen, nil
	case "then", "assertion":
		return CategoryThen, nil
	default:
		return "", fmt.Errorf("unknown step category %q (valid: given, when, then)", s)
	}
}

// Definition is a single step registration found in a module.
type Definition struct {
	// Pattern is the regular expression the step matches, as written.
	Pattern string
	// Handler is the printed handler expression, if known.
	Handler string
	// Markers lists the categories the definition is registered under.
	// An empty slice marks a generic step that has not been classified.
	Markers []Category
	// Pos is the source position of the registration (file:line).
	Pos string
}

// Has reports whether the definition carries the given category marker.
func (d Definition) Has(c Category) bool {
	for _, m := range d.Markers {
		if m == c {
			return true
		}
	}
	return false
}

// Classified reports whether the definition carries at least one marker.
func (d Definition) Classified() bool {
	return len(d.Markers) > 0
}

// Module is a loaded step-definition module.
type Module struct {
	// Name identifies the module in the report header.
	Name string
	// Version is the module version shown in the report header.
	Version string
	// Path is the filesystem path the module was loaded from.
	Path string
	// Definitions holds every registration in discovery order.
	Definitions []Definition
}

// Header returns the display header used for the report title.
func (m *Module) Header() string {
	return fmt.Sprintf("Assembly: %s, version: %s", m.Name, m.Version)
}

// Patterns returns the patterns registered under the given category, in
// discovery order. It never returns nil.
func (m *Module) Patterns(c Category) []string {
	patterns := []string{}
	for _, d := range m.Definitions {
		if d.Has(c) {
			patterns = append(patterns, d.Pattern)
		}
	}
	return patterns
}

// Unclassified returns the definitions without any category marker.
func (m *Module) Unclassified() []Definition {
	var defs []Definition
	for _, d := range m.Definitions {
		if !d.Classified() {
			defs = append(defs, d)
		}
	}
	return defs
}

// Registry collects step patterns through explicit registration calls.
// It mirrors the godog registration surface for step sources that cannot
// be introspected.
type Registry struct {
	mu   sync.Mutex
	defs []Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Given registers a precondition pattern.
func (r *Registry) Given(pattern string) {
	r.Register(CategoryGiven, pattern)
}

// When registers an action pattern.
func (r *Registry) When(pattern string) {
	r.Register(CategoryWhen, pattern)
}

// Then registers an assertion pattern.
func (r *Registry) Then(pattern string) {
	r.Register(CategoryThen, pattern)
}

// Register records a pattern under the given category.
// It panics if the category is not valid.
func (r *Registry) Register(c Category, pattern string) {
	if !c.IsValid() {
		panic(fmt.Sprintf("step: Register called with invalid category %q", c))
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.defs = append(r.defs, Definition{Pattern: pattern, Markers: []Category{c}})
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.defs)
}

// Module snapshots the registry into a Module with the given identity.
func (r *Registry) Module(name, version string) *Module {
	r.mu.Lock()
	defer r.mu.Unlock()

	defs := make([]Definition, len(r.defs))
	copy(defs, r.defs)
	return &Module{Name: name, Version: version, Definitions: defs}
}
