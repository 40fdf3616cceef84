// Package structure classifies page lines into heading candidates, section
// labels and body text spans.
package structure

import "fmt"

// Kind is the classification of a token.
type Kind int

const (
	KindBody Kind = iota
	KindTheme
	KindCriterion
	KindTaskGroup
	KindTask
	KindSection
	KindFolio // bare page number at the top or bottom of a page
)

func (k Kind) String() string {
	switch k {
	case KindBody:
		return "body"
	case KindTheme:
		return "theme"
	case KindCriterion:
		return "criterion"
	case KindTaskGroup:
		return "task-group"
	case KindTask:
		return "task"
	case KindSection:
		return "section"
	case KindFolio:
		return "folio"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsHeading reports whether k is one of the four heading levels.
func (k Kind) IsHeading() bool {
	return k == KindTheme || k == KindCriterion || k == KindTaskGroup || k == KindTask
}

// Section labels that delimit a task's descriptive blocks.
const (
	LabelDescription   = "Beskrivelse"
	LabelDocumentation = "Dokumentationskrav"
	LabelContribution  = "Hvordan kan projektet bidrage"
)

// Labels lists the section labels in their usual order of appearance.
var Labels = []string{LabelDescription, LabelDocumentation, LabelContribution}

// Token is one element of the flat parse output.
type Token struct {
	Kind   Kind
	Code   string // theme "DS", criterion "DS1", task group "DS1.1", task "01"
	Parent string // criterion: theme code; task group: criterion code
	Title  string
	Label  string   // section label
	Lines  []string // body lines; "" marks a paragraph break
	Page   int
}

func (t Token) String() string {
	switch t.Kind {
	case KindBody:
		return fmt.Sprintf("body(p%d, %d lines)", t.Page, len(t.Lines))
	case KindSection:
		return fmt.Sprintf("section(p%d, %s)", t.Page, t.Label)
	case KindFolio:
		return fmt.Sprintf("folio(p%d)", t.Page)
	}
	return fmt.Sprintf("%s(p%d, %s %q)", t.Kind, t.Page, t.Code, t.Title)
}
