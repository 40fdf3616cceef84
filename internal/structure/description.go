package structure

import (
	"regexp"
	"strings"
)

var (
	descSentence = regexp.MustCompile(`(?i)(BO-?VEST\s+bæredygtighedsmanual[^.]*\.)`)
	descHeader   = regexp.MustCompile(`(?i:Bæredygtigheds\s*Manual)\s*(?:NYBYG|RENOVERING|SIMPEL\s*SAG)\b`)
	descFooter   = regexp.MustCompile(`(?i)Tegnestuen\s*Vandkunsten\s*Oktober\s*\d{4}`)
	descNoise    = regexp.MustCompile(`[>/]+`)
	descSpaces   = regexp.MustCompile(`\s{2,}`)
)

// Description pulls the "BO-VEST bæredygtighedsmanual ..." sentence from the
// cover page. Cover titles are often set with doubled glyphs
// ("TTeeggnneessttuueenn"), which are undone first.
func Description(cover string) (string, bool) {
	text := strings.Join(strings.Fields(cover), " ")
	text = undouble(text)
	text = descNoise.ReplaceAllString(text, "")
	text = descHeader.ReplaceAllString(text, " ")
	text = descFooter.ReplaceAllString(text, " ")

	m := descSentence.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(descSpaces.ReplaceAllString(m[1], " ")), true
}

// undouble collapses words where every glyph is printed twice. Words with
// ordinary double letters ("Ottetallet") are left alone.
func undouble(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		r := []rune(w)
		if len(r) < 4 || len(r)%2 != 0 {
			continue
		}
		doubled := true
		for j := 0; j < len(r); j += 2 {
			if r[j] != r[j+1] {
				doubled = false
				break
			}
		}
		if !doubled {
			continue
		}
		out := make([]rune, 0, len(r)/2)
		for j := 0; j < len(r); j += 2 {
			out = append(out, r[j])
		}
		words[i] = string(out)
	}
	return strings.Join(words, " ")
}
