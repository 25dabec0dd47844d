// Package output renders step reports and writes them to disk.
package output

import (
	"io"

	"github.com/alexbrand/stepexport/internal/step"
)

// Format represents an output format type.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatPlain    Format = "plain"
)

// ValidFormats returns all valid format values.
func ValidFormats() []Format {
	return []Format{FormatHTML, FormatMarkdown, FormatJSON, FormatPlain}
}

// IsValid checks if the format is a valid output format.
func (f Format) IsValid() bool {
	switch f {
	case FormatHTML, FormatMarkdown, FormatJSON, FormatPlain:
		return true
	default:
		return false
	}
}

// Section lists the patterns of one step category.
type Section struct {
	Category step.Category
	Patterns []string
}

// Report is the data every renderer works from.
type Report struct {
	Name     string
	Version  string
	Sections []Section
}

// NewReport builds a report with one section per category in Given, When,
// Then order. Missing lists render as empty sections.
func NewReport(name, version string, patterns map[step.Category][]string) *Report {
	r := &Report{Name: name, Version: version}
	for _, c := range step.Categories() {
		p := patterns[c]
		if p == nil {
			p = []string{}
		}
		r.Sections = append(r.Sections, Section{Category: c, Patterns: p})
	}
	return r
}

// Header returns the report header, e.g. "Assembly: MyProject.Steps, version: 1.2.0.0".
func (r *Report) Header() string {
	return (&step.Module{Name: r.Name, Version: r.Version}).Header()
}

// Renderer writes a report in one output format.
type Renderer interface {
	// Render writes the full document for the report.
	Render(w io.Writer, r *Report) error
}

// New creates a renderer for the specified format.
func New(format Format) Renderer {
	switch format {
	case FormatMarkdown:
		return &MarkdownRenderer{}
	case FormatJSON:
		return &JSONRenderer{}
	case FormatPlain:
		return &PlainRenderer{}
	case FormatHTML:
		fallthrough
	default:
		return &HTMLRenderer{}
	}
}
