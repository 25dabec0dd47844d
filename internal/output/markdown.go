package output

import (
	"io"
	"strings"

	"github.com/nao1215/markdown"
)

// MarkdownRenderer outputs the report as Markdown.
type MarkdownRenderer struct{}

// Render writes the Markdown document.
func (f *MarkdownRenderer) Render(w io.Writer, r *Report) error {
	md := markdown.NewMarkdown(w)
	md.H1(r.Header() + " can handle the following regular expressions")
	md.PlainText("")

	for _, s := range r.Sections {
		md.H2(s.Category.Keyword() + " steps")
		md.PlainText("")
		if len(s.Patterns) == 0 {
			md.PlainText(markdown.Italic("No steps."))
			md.PlainText("")
			continue
		}
		items := make([]string, 0, len(s.Patterns))
		for _, p := range s.Patterns {
			items = append(items, codeSpan(p))
		}
		md.BulletList(items...)
		md.PlainText("")
	}

	return md.Build()
}

// codeSpan wraps p in a code span. Patterns holding backticks get a fence
// one backtick longer than their longest run, padded with spaces.
func codeSpan(p string) string {
	if !strings.Contains(p, "`") {
		return markdown.Code(p)
	}
	longest, run := 0, 0
	for _, r := range p {
		if r == '`' {
			run++
			longest = max(longest, run)
			continue
		}
		run = 0
	}
	fence := strings.Repeat("`", longest+1)
	return fence + " " + p + " " + fence
}
