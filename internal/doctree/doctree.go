package doctree

import "strings"

// Page is the cleaned text of one source page.
type Page struct {
	Number int    // 1-based page number in the source document
	Text   string // Plain text, lines separated by '\n'
}

// Lines splits the page text into lines with trailing whitespace removed.
// Blank lines are kept since they mark paragraph and heading boundaries.
func (p Page) Lines() []string {
	if p.Text == "" {
		return nil
	}
	raw := strings.Split(p.Text, "\n")
	out := make([]string, len(raw))
	for i, l := range raw {
		out[i] = strings.TrimRight(l, " \t")
	}
	return out
}

// FullText joins all pages with a blank line between them.
func FullText(pages []Page) string {
	var b strings.Builder
	for i, p := range pages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p.Text)
	}
	return b.String()
}
