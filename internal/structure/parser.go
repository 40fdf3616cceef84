package structure

import (
	"log/slog"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/manualgest/internal/doctree"
	"github.com/dgallion1/manualgest/internal/manuals"
)

// Parser classifies lines using the theme allow-list of a metadata table.
type Parser struct {
	themes     *themeMatcher
	themeCodes map[string]bool
	log        *slog.Logger
}

// NewParser builds a parser for the themes in tbl.
func NewParser(tbl *manuals.Table, log *slog.Logger) *Parser {
	if log == nil {
		log = slog.Default()
	}
	codes := make(map[string]bool)
	for _, c := range tbl.ThemeCodes() {
		codes[c] = true
	}
	return &Parser{
		themes:     newThemeMatcher(tbl.Themes),
		themeCodes: codes,
		log:        log,
	}
}

// state carries what the classifier needs to know about preceding lines.
type state struct {
	tokens []Token
	body   *Token // open body span, nil when the last token is not body

	isolated     bool // previous line was blank, a heading, a label or page start
	sentenceEnd  bool // previous body line ended a sentence
	expectedTask int    // next task number within the current task group
	scope        string // code of the innermost criterion or task group seen
}

// enterScope restarts task numbering unless code repeats the current scope or
// one of its ancestors, as running page headers do.
func (s *state) enterScope(code string) {
	if code == s.scope || strings.HasPrefix(s.scope, code+".") {
		return
	}
	s.scope = code
	s.expectedTask = 1
}

// Parse returns the flat token list for the given pages. Every non-blank line
// ends up in exactly one token.
func (p *Parser) Parse(pages []doctree.Page) []Token {
	s := &state{expectedTask: 1}
	for _, page := range pages {
		lines := page.Lines()
		s.isolated = true
		for i := 0; i < len(lines); i++ {
			line := strings.TrimSpace(lines[i])
			if line == "" {
				s.paragraphBreak()
				continue
			}
			i = p.classify(s, page.Number, lines, i, line)
		}
	}
	return s.tokens
}

// classify handles line i and returns the index of the last line it consumed.
func (p *Parser) classify(s *state, page int, lines []string, i int, line string) int {
	if label, inline, ok := matchLabel(line); ok {
		tok := Token{Kind: KindSection, Label: label, Page: page}
		if inline != "" {
			tok.Lines = []string{inline}
		}
		s.emit(tok)
		return i
	}

	if m := groupPattern.FindStringSubmatch(line); m != nil && p.themeCodes[m[1]] {
		title, last := p.titleOrNext(m[4], lines, i)
		if title != "" {
			crit := m[1] + strconv.Itoa(atoi(m[2]))
			s.emit(Token{
				Kind:   KindTaskGroup,
				Code:   crit + "." + strconv.Itoa(atoi(m[3])),
				Parent: crit,
				Title:  title,
				Page:   page,
			})
			s.enterScope(crit + "." + strconv.Itoa(atoi(m[3])))
			return last
		}
	}

	if m := criterionPattern.FindStringSubmatch(line); m != nil && p.themeCodes[m[1]] {
		title, last := p.titleOrNext(m[3], lines, i)
		if title != "" {
			s.emit(Token{
				Kind:   KindCriterion,
				Code:   m[1] + strconv.Itoa(atoi(m[2])),
				Parent: m[1],
				Title:  title,
				Page:   page,
			})
			s.enterScope(m[1] + strconv.Itoa(atoi(m[2])))
			return last
		}
	}

	if p.themeHeading(s, lines, i, line) {
		code, title, _ := p.themes.match(line)
		s.emit(Token{Kind: KindTheme, Code: code, Title: title, Page: page})
		return i
	}

	if m := taskPattern.FindStringSubmatch(line); m != nil {
		if tok, last, ok := p.task(s, m, page, lines, i); ok {
			s.emit(tok)
			s.expectedTask = atoi(tok.Code) + 1
			return last
		}
	}

	if folioPattern.MatchString(line) && (s.isolated || isLastLine(lines, i)) {
		s.emit(Token{Kind: KindFolio, Lines: []string{line}, Page: page})
		return i
	}

	s.appendBody(line, page)
	return i
}

// task applies the isolation tie-break to a two-digit marker. A marker is a
// task heading only if it stands apart from running prose: first on a page,
// after a blank line, heading or label, or, when it carries the expected next
// number, right after a line that ends a sentence.
func (p *Parser) task(s *state, m []string, page int, lines []string, i int) (Token, int, bool) {
	num := atoi(m[1])
	if num == 0 {
		return Token{}, i, false
	}
	expected := num == s.expectedTask
	if !s.isolated && !(expected && s.sentenceEnd) {
		return Token{}, i, false
	}
	// Outside isolation the marker must also end its line of text: a
	// lower-case line right after it means the paragraph goes on.
	if !s.isolated && continues(lines, i) {
		return Token{}, i, false
	}
	if m[1][0] != '0' && !expected {
		return Token{}, i, false
	}

	title, last := cleanTitle(m[2]), i
	if m[2] == "" {
		// Standalone numbered circle: the title is the next line.
		j := nextNonBlank(lines, i)
		if j < 0 {
			return Token{}, i, false
		}
		next := strings.TrimSpace(lines[j])
		if _, _, isLabel := matchLabel(next); isLabel {
			return Token{}, i, false
		}
		title, last = cleanTitle(next), j
	}
	if !titleLike(title) {
		return Token{}, i, false
	}
	return Token{Kind: KindTask, Code: m[1], Title: title, Page: page}, last, true
}

// themeHeading reports whether line is a theme heading: an allow-listed name
// set as a title, standing apart from prose the same way task markers must.
func (p *Parser) themeHeading(s *state, lines []string, i int, line string) bool {
	if _, _, ok := p.themes.match(line); !ok {
		return false
	}
	if !titleLike(cleanTitle(line)) {
		return false
	}
	if s.isolated {
		return true
	}
	return s.sentenceEnd && !continues(lines, i)
}

// continues reports whether the line right after i carries on the same
// sentence, i.e. is non-blank and starts in lower case.
func continues(lines []string, i int) bool {
	if i+1 >= len(lines) {
		return false
	}
	next := strings.TrimSpace(lines[i+1])
	if next == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(next)
	return unicode.IsLower(r)
}

// titleOrNext returns the inline title, or the next non-blank line when the
// code stands alone. An empty result means the line is not a heading.
func (p *Parser) titleOrNext(inline string, lines []string, i int) (string, int) {
	inline = cleanTitle(inline)
	if inline != "" {
		if !titleLike(inline) {
			return "", i
		}
		return inline, i
	}
	j := nextNonBlank(lines, i)
	if j < 0 {
		return "", i
	}
	next := cleanTitle(strings.TrimSpace(lines[j]))
	if !titleLike(next) {
		return "", i
	}
	if _, _, isLabel := matchLabel(next); isLabel {
		return "", i
	}
	return next, j
}

func (s *state) emit(tok Token) {
	s.tokens = append(s.tokens, tok)
	s.body = nil
	s.isolated = true
	s.sentenceEnd = false
}

func (s *state) appendBody(line string, page int) {
	if s.body == nil {
		s.tokens = append(s.tokens, Token{Kind: KindBody, Page: page})
		s.body = &s.tokens[len(s.tokens)-1]
	}
	s.body.Lines = append(s.body.Lines, line)
	s.isolated = false
	s.sentenceEnd = endsSentence(line)
}

func (s *state) paragraphBreak() {
	if s.body != nil && len(s.body.Lines) > 0 && s.body.Lines[len(s.body.Lines)-1] != "" {
		s.body.Lines = append(s.body.Lines, "")
	}
	s.isolated = true
}

func nextNonBlank(lines []string, i int) int {
	for j := i + 1; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) != "" {
			return j
		}
	}
	return -1
}

func isLastLine(lines []string, i int) bool {
	return nextNonBlank(lines, i) < 0
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
