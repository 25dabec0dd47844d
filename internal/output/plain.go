package output

import (
	"fmt"
	"io"
)

// PlainRenderer outputs one "Keyword pattern" line per step, suitable for
// scripting.
type PlainRenderer struct{}

// Render writes the report in plain format.
func (f *PlainRenderer) Render(w io.Writer, r *Report) error {
	for _, s := range r.Sections {
		for _, p := range s.Patterns {
			if _, err := fmt.Fprintf(w, "%s\t%s\n", s.Category.Keyword(), p); err != nil {
				return err
			}
		}
	}
	return nil
}
