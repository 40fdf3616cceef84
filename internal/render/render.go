// Package render turns task section blocks into the HTML snippet stored in a
// task item's text field, e.g. "<strong>Beskrivelse</strong>\nTekst ...".
package render

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Block is one labelled run of body lines. An empty Label is text that came
// before the first section label. "" in Lines marks a paragraph break.
type Block struct {
	Label string
	Lines []string
}

var bulletPrefixes = []string{"•", "·", "▪", "◦", "–", "-", "*"}

// Renderer converts blocks through Markdown into flattened HTML.
type Renderer struct {
	md goldmark.Markdown
}

func NewRenderer() *Renderer {
	return &Renderer{md: goldmark.New()}
}

// TaskItemText renders blocks into the task item text.
func (r *Renderer) TaskItemText(blocks []Block) (string, error) {
	src := Markdown(blocks)
	if src == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return Flatten(buf.String())
}

// Markdown builds the Markdown source for blocks: a bold label line per block,
// then its paragraphs rewrapped onto single lines and bullet lines as a list.
func Markdown(blocks []Block) string {
	var b strings.Builder
	for _, blk := range blocks {
		paras := paragraphs(blk.Lines)
		if blk.Label == "" && len(paras) == 0 {
			continue
		}
		if blk.Label != "" {
			b.WriteString("**" + escape(blk.Label) + "**\n\n")
		}
		for _, p := range paras {
			writeParagraph(&b, p)
		}
	}
	return strings.TrimSpace(b.String())
}

func paragraphs(lines []string) [][]string {
	var out [][]string
	var cur []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, l)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func writeParagraph(b *strings.Builder, lines []string) {
	var prose []string
	var items []string
	flushProse := func() {
		if len(prose) > 0 {
			b.WriteString(escapeStart(escape(strings.Join(prose, " "))) + "\n\n")
			prose = nil
		}
	}
	flushItems := func() {
		if len(items) > 0 {
			for _, it := range items {
				b.WriteString("- " + escapeStart(escape(it)) + "\n")
			}
			b.WriteString("\n")
			items = nil
		}
	}
	for _, l := range lines {
		if text, ok := bullet(l); ok {
			flushProse()
			items = append(items, text)
			continue
		}
		if len(items) > 0 {
			// Wrapped continuation of the previous bullet.
			items[len(items)-1] += " " + l
			continue
		}
		prose = append(prose, l)
	}
	flushProse()
	flushItems()
}

func bullet(line string) (string, bool) {
	for _, p := range bulletPrefixes {
		if rest, ok := strings.CutPrefix(line, p); ok {
			if rest == "" || !unicode.IsSpace([]rune(rest)[0]) {
				return "", false
			}
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}

// escape backslash-escapes Markdown metacharacters so source text renders literally.
func escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\', '`', '*', '_', '[', ']', '<', '>', '#', '&', '|', '~', '!':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// escapeStart keeps a leading "-", "+", "=" or "12." from opening a block.
func escapeStart(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '-', '+', '=':
		return "\\" + s
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')') {
		return s[:i] + "\\" + s[i:]
	}
	return s
}

// Flatten unwraps top-level <p> elements and joins top-level blocks with
// newlines. Lists and other blocks are kept as HTML.
func Flatten(fragment string) (string, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	var parts []string
	for _, n := range nodes {
		if n.Type == html.TextNode && strings.TrimSpace(n.Data) == "" {
			continue
		}
		var buf bytes.Buffer
		if n.Type == html.ElementNode && n.DataAtom == atom.P {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if err := html.Render(&buf, c); err != nil {
					return "", fmt.Errorf("render html: %w", err)
				}
			}
		} else if err := html.Render(&buf, n); err != nil {
			return "", fmt.Errorf("render html: %w", err)
		}
		if s := strings.TrimSpace(buf.String()); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n"), nil
}
