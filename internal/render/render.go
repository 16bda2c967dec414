// Package render turns post content from the API into terminal text.
package render

import (
	"html"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/glamour"
	"github.com/microcosm-cc/bluemonday"
)

// DefaultWidth is the word-wrap width for rendered bodies.
const DefaultWidth = 80

// Renderer renders post bodies as markdown and strips markup from summaries.
// It is safe for concurrent use.
type Renderer struct {
	width  int
	strict *bluemonday.Policy

	once sync.Once
	md   *glamour.TermRenderer
}

// New returns a Renderer wrapping bodies at width columns (DefaultWidth if <= 0).
func New(width int) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Renderer{width: width, strict: bluemonday.StrictPolicy()}
}

// PlainText removes every tag from s, decodes entities and collapses whitespace.
func (r *Renderer) PlainText(s string) string {
	clean := html.UnescapeString(r.strict.Sanitize(s))
	return strings.Join(strings.Fields(clean), " ")
}

// Excerpt is PlainText cut to at most max runes, ending in "…" when cut.
func (r *Renderer) Excerpt(s string, max int) string {
	text := r.PlainText(s)
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}

// Markdown renders body for the terminal. The raw body is returned when the
// renderer cannot be built or fails.
func (r *Renderer) Markdown(body string) string {
	r.once.Do(func() {
		md, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(r.width),
		)
		if err == nil {
			r.md = md
		}
	})
	if r.md == nil {
		return body
	}
	out, err := r.md.Render(body)
	if err != nil {
		return body
	}
	return out
}
