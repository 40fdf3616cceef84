package structure

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/manualgest/internal/manuals"
)

var (
	groupPattern     = regexp.MustCompile(`^([A-ZÆØÅ]{2,3}) ?(\d{1,2})\.(\d{1,2})(?:\s*[:–-]\s*|\s+|$)(.*)$`)
	criterionPattern = regexp.MustCompile(`^([A-ZÆØÅ]{2,3}) ?(\d{1,2})(?:\s*[:.–-]\s*|\s+|$)(.*)$`)
	taskPattern      = regexp.MustCompile(`^(\d{2})(?:[.)]?\s+(.+))?$`)
	folioPattern     = regexp.MustCompile(`^\d{1,3}$`)
	tocLeader        = regexp.MustCompile(`\s*\.{2,}[\s.]*\d*\s*$`)
	tocPageNumber    = regexp.MustCompile(`\s+\d{1,3}$`)
	nonLetters       = regexp.MustCompile(`[^\p{L}]+`)
)

const maxTitleRunes = 90

// cleanTitle strips table-of-contents leaders and trailing page numbers.
func cleanTitle(s string) string {
	s = tocLeader.ReplaceAllString(s, "")
	s = tocPageNumber.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// titleLike reports whether s reads as a heading title rather than prose:
// starts upper-case, is short, and does not end like a sentence fragment.
func titleLike(s string) bool {
	if s == "" || utf8.RuneCountInString(s) > maxTitleRunes {
		return false
	}
	first, _ := utf8.DecodeRuneInString(s)
	if !unicode.IsUpper(first) {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(s)
	return last != '.' && last != ',' && last != ';'
}

// endsSentence reports whether a body line closes a sentence.
func endsSentence(s string) bool {
	last, _ := utf8.DecodeLastRuneInString(strings.TrimSpace(s))
	return last == '.' || last == '!' || last == '?' || last == ':'
}

// foldName lower-cases, folds Danish letters and drops punctuation so that
// "INDEKLIMA, ENERGI OG MILJØ" and "Indeklima Energi og Miljo" compare equal.
func foldName(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("æ", "a", "ø", "o", "å", "a", "&", " og ").Replace(s)
	s = nonLetters.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

type themeName struct {
	code  string
	title string
	fold  string
}

// themeMatcher matches whole lines against the allow-listed theme names.
type themeMatcher struct {
	names []themeName
}

func newThemeMatcher(themes []manuals.Theme) *themeMatcher {
	m := &themeMatcher{}
	for _, th := range themes {
		names := append([]string{th.Title}, th.Aliases...)
		for _, n := range names {
			m.names = append(m.names, themeName{code: th.Code, title: th.Title, fold: foldName(n)})
		}
	}
	return m
}

// match returns the theme code and canonical title for a line, allowing one
// edit for names of eight letters or more.
func (m *themeMatcher) match(line string) (string, string, bool) {
	f := foldName(cleanTitle(line))
	if f == "" {
		return "", "", false
	}
	for _, n := range m.names {
		if f == n.fold {
			return n.code, n.title, true
		}
	}
	for _, n := range m.names {
		if len(n.fold) >= 8 && levenshtein(f, n.fold) <= 1 {
			return n.code, n.title, true
		}
	}
	return "", "", false
}

// matchLabel recognises a section label, optionally followed by ":" and
// inline text that starts the block.
func matchLabel(line string) (label, inline string, ok bool) {
	lower := strings.ToLower(line)
	for _, l := range Labels {
		ll := strings.ToLower(l)
		if !strings.HasPrefix(lower, ll) {
			continue
		}
		rest := strings.TrimSpace(line[len(ll):])
		rest = strings.TrimLeft(rest, "?")
		switch {
		case rest == "" || rest == ":":
			return l, "", true
		case strings.HasPrefix(rest, ":"):
			return l, strings.TrimSpace(rest[1:]), true
		}
	}
	return "", "", false
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
