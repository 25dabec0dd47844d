package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	htmlTitleFormat  = "<html><head><title>%s</title></head><body>\n"
	htmlHeaderFormat = "<h1>%s can handle the following regular expressions</h1>\n"
	htmlStepFormat   = "<h2>%s steps</h2><ul>%s</ul>\n"
	htmlItemFormat   = "<li>%s</li>"
	htmlFooter       = "</body></html>\n"
)

// HTMLRenderer outputs the report as a static HTML page.
type HTMLRenderer struct{}

// Render writes the HTML document.
func (f *HTMLRenderer) Render(w io.Writer, r *Report) error {
	_, err := io.WriteString(w, RenderHTML(r))
	return err
}

// RenderHTML returns the HTML document for the report. Every dynamic string
// is escaped with EscapeHTML.
func RenderHTML(r *Report) string {
	header := EscapeHTML(r.Header())

	var sb strings.Builder
	fmt.Fprintf(&sb, htmlTitleFormat, header)
	fmt.Fprintf(&sb, htmlHeaderFormat, header)
	for _, s := range r.Sections {
		items := make([]string, 0, len(s.Patterns))
		for _, p := range s.Patterns {
			items = append(items, fmt.Sprintf(htmlItemFormat, EscapeHTML(p)))
		}
		fmt.Fprintf(&sb, htmlStepFormat, s.Category.Keyword(), strings.Join(items, "\n"))
	}
	sb.WriteString(htmlFooter)
	return sb.String()
}

// EscapeHTML encodes s with the entity set of .NET's WebUtility.HtmlEncode.
// The five markup characters become entities; U+00A0..U+00FF and runes
// above U+FFFF become decimal character references.
func EscapeHTML(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '<':
			sb.WriteString("&lt;")
		case r == '>':
			sb.WriteString("&gt;")
		case r == '&':
			sb.WriteString("&amp;")
		case r == '"':
			sb.WriteString("&quot;")
		case r == '\'':
			sb.WriteString("&#39;")
		case r >= 0xA0 && r <= 0xFF, r > 0xFFFF:
			sb.WriteString("&#")
			sb.WriteString(strconv.Itoa(int(r)))
			sb.WriteByte(';')
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
