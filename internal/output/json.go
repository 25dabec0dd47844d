package output

import (
	"encoding/json"
	"io"

	"github.com/alexbrand/stepexport/internal/step"
)

// JSONRenderer outputs the report as JSON.
type JSONRenderer struct{}

type jsonReport struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Given   []string `json:"given"`
	When    []string `json:"when"`
	Then    []string `json:"then"`
}

// Render writes the report as an indented JSON object.
func (f *JSONRenderer) Render(w io.Writer, r *Report) error {
	out := jsonReport{
		Name:    r.Name,
		Version: r.Version,
		Given:   []string{},
		When:    []string{},
		Then:    []string{},
	}
	for _, s := range r.Sections {
		switch s.Category {
		case step.CategoryGiven:
			out.Given = append(out.Given, s.Patterns...)
		case step.CategoryWhen:
			out.When = append(out.When, s.Patterns...)
		case step.CategoryThen:
			out.Then = append(out.Then, s.Patterns...)
		}
	}
	return f.writeJSON(w, out)
}

func (f *JSONRenderer) writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
