// Package assemble folds the flat token list into the nested manual tree.
package assemble

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/manualgest/internal/manuals"
	"github.com/dgallion1/manualgest/internal/render"
	"github.com/dgallion1/manualgest/internal/schema"
	"github.com/dgallion1/manualgest/internal/structure"
)

// Result is the assembled tree of one manual plus what needs human review.
type Result struct {
	Themes   []*schema.Node
	Issues   []Issue
	Unplaced int // body lines seen before any heading
	Folios   int // page-number lines skipped
}

// Assembler builds trees for one manual.
type Assembler struct {
	table    *manuals.Table
	manual   manuals.Manual
	renderer *render.Renderer
	log      *slog.Logger
}

func New(tbl *manuals.Table, m manuals.Manual, r *render.Renderer, log *slog.Logger) *Assembler {
	if log == nil {
		log = slog.Default()
	}
	if r == nil {
		r = render.NewRenderer()
	}
	return &Assembler{table: tbl, manual: m, renderer: r, log: log}
}

// build is the per-run state: the parent stack and the open section.
type build struct {
	a      *Assembler
	res    *Result
	root   *schema.Node // holds themes as children
	stack  [4]*schema.Node
	blocks map[*schema.Node][]render.Block // task-item blocks per task, in order
	label  string                          // open section label, "" before the first one
	lines  []string                        // open section text
}

// Assemble runs the parent-stack fold over tokens.
func (a *Assembler) Assemble(tokens []structure.Token) (*Result, error) {
	b := &build{
		a:      a,
		res:    &Result{},
		root:   &schema.Node{Items: []*schema.Node{}},
		blocks: make(map[*schema.Node][]render.Block),
	}
	for _, tok := range tokens {
		b.apply(tok)
	}
	b.flushSection()
	if err := b.finish(); err != nil {
		return nil, err
	}
	b.res.Themes = b.root.Items
	b.res.Issues = Validate(b.res.Themes)
	return b.res, nil
}

func (b *build) apply(tok structure.Token) {
	if tok.Kind.IsHeading() && b.repeats(tok) {
		return
	}
	switch tok.Kind {
	case structure.KindTheme:
		b.flushSection()
		b.openTheme(tok.Code, tok.Title, tok.Page)
	case structure.KindCriterion:
		b.flushSection()
		if b.stack[0] == nil || b.stack[0].Code != tok.Parent {
			b.openTheme(tok.Parent, "", tok.Page)
		}
		b.open(schema.TypeCriterion, tok.Code, tok.Title, tok.Page)
	case structure.KindTaskGroup:
		b.flushSection()
		crit := b.stack[1]
		if crit == nil || crit.Code != tok.Parent {
			theme := strings.TrimRightFunc(tok.Parent, isDigit)
			if b.stack[0] == nil || b.stack[0].Code != theme {
				b.openTheme(theme, "", tok.Page)
			}
			b.open(schema.TypeCriterion, tok.Parent, tok.Title, tok.Page)
		}
		b.open(schema.TypeTaskGroup, tok.Code, tok.Title, tok.Page)
	case structure.KindTask:
		b.flushSection()
		if b.stack[1] == nil {
			b.a.log.Warn("task outside any criterion, kept as text", "code", tok.Code, "title", tok.Title, "page", tok.Page)
			b.body([]string{tok.Code + " " + tok.Title}, tok.Page)
			return
		}
		if b.stack[2] == nil {
			crit := b.stack[1]
			b.open(schema.TypeTaskGroup, crit.Code+".1", crit.Title, tok.Page)
		}
		b.pageLink(b.open(schema.TypeTask, tok.Code, tok.Title, tok.Page))
	case structure.KindSection:
		if b.stack[3] == nil {
			// A label outside a task is ordinary text.
			b.body(append([]string{tok.Label}, tok.Lines...), tok.Page)
			return
		}
		b.flushSection()
		b.label = tok.Label
		b.lines = append(b.lines, tok.Lines...)
	case structure.KindBody:
		b.body(tok.Lines, tok.Page)
	case structure.KindFolio:
		b.res.Folios++
	}
}

// repeats reports whether a heading names a node that is already open at
// its level, as running page headers do. The open section continues.
func (b *build) repeats(tok structure.Token) bool {
	switch tok.Kind {
	case structure.KindTheme:
		return b.stack[0] != nil && b.stack[0].Code == tok.Code
	case structure.KindCriterion:
		return b.stack[1] != nil && b.stack[1].Code == tok.Code
	case structure.KindTaskGroup:
		return b.stack[2] != nil && b.stack[2].Code == tok.Code
	}
	return false
}

// openTheme makes the theme with code current, creating it from the
// allow-list when it has not been seen yet.
func (b *build) openTheme(code, title string, page int) {
	if title == "" {
		if th, ok := b.a.table.Theme(code); ok {
			title = th.Title
		} else {
			title = code
		}
	}
	theme := b.open(schema.TypeTheme, code, title, page)
	if theme.Style == nil {
		color := ""
		if th, ok := b.a.table.Theme(code); ok {
			color = th.Color
		}
		theme.Style = schema.NewStyle(color)
	}
}

// open makes the node with code current at the level of t, under the node one
// level up. A sibling with the same code is reopened rather than duplicated; if it
// is already the open node the call is a no-op, so running page headers do
// not close the levels below them.
func (b *build) open(t schema.NodeType, code, title string, page int) *schema.Node {
	level := t.Level()
	parent := b.root
	if level > 0 {
		parent = b.stack[level-1]
	}
	if cur := b.stack[level]; cur != nil && cur.Code == code {
		b.movePage(cur, page)
		return cur
	}
	n := parent.Child(code)
	if n == nil {
		n = schema.NewNode(t, code, title)
		n.Page = page
		parent.Items = append(parent.Items, n)
	} else {
		b.movePage(n, page)
	}
	b.stack[level] = n
	for i := level + 1; i < len(b.stack); i++ {
		b.stack[i] = nil
	}
	return n
}

// movePage points a node that has only been named so far, as on a contents
// page, at the page where its heading shows up again.
func (b *build) movePage(n *schema.Node, page int) {
	if page <= n.Page || n.Text != "" || len(n.Items) > 0 || len(b.blocks[n]) > 0 {
		return
	}
	for _, d := range n.Documentation {
		if d.Type != "pdf" {
			return
		}
	}
	n.Page = page
}

// pageLink sets the task's link into the manual PDF from its page.
func (b *build) pageLink(task *schema.Node) {
	url := b.a.manual.PageURL(task.Page)
	if url == "" {
		return
	}
	link := schema.Documentation{
		Type:  "pdf",
		Label: "Definition",
		Text:  fmt.Sprintf("Manual (side %d)", task.Page),
		URL:   url,
	}
	for i, d := range task.Documentation {
		if d.Type == "pdf" {
			task.Documentation[i] = link
			return
		}
	}
	task.Documentation = append(task.Documentation, link)
}

// body routes body lines: into the open task's section, else onto the
// deepest open node as free text, else counts them as unplaced.
func (b *build) body(lines []string, page int) {
	if b.stack[3] != nil {
		b.lines = append(b.lines, lines...)
		return
	}
	for i := 2; i >= 0; i-- {
		if n := b.stack[i]; n != nil {
			n.Text = joinText(n.Text, lines)
			return
		}
	}
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			b.res.Unplaced++
		}
	}
	b.a.log.Debug("text before first heading", "page", page, "lines", len(lines))
}

// flushSection closes the open section of the current task.
func (b *build) flushSection() {
	defer func() {
		b.label = ""
		b.lines = nil
	}()
	task := b.stack[3]
	if task == nil || !hasText(b.lines) {
		if task != nil && b.label != "" && b.label != structure.LabelDocumentation {
			// Keep the label so the item shows the section exists.
			b.blocks[task] = append(b.blocks[task], render.Block{Label: b.label})
		}
		return
	}
	if b.label == structure.LabelDocumentation {
		task.Documentation = append(task.Documentation, schema.Documentation{
			Type:  "text",
			Label: structure.LabelDocumentation,
			Text:  joinText("", b.lines),
		})
		return
	}
	b.blocks[task] = append(b.blocks[task], render.Block{Label: b.label, Lines: b.lines})
}

// finish renders task items and numbers siblings.
func (b *build) finish() error {
	var err error
	b.root.Walk(func(n *schema.Node) {
		if err != nil {
			return
		}
		for i, c := range n.Items {
			c.SortOrder = i + 1
		}
		if n.Type != schema.TypeTask {
			return
		}
		blocks, ok := b.blocks[n]
		if !ok {
			return
		}
		text, rerr := b.a.renderer.TaskItemText(blocks)
		if rerr != nil {
			err = fmt.Errorf("task %s: %w", n.Code, rerr)
			return
		}
		n.Items = append(n.Items, NewTaskItem(n.Code, text))
	})
	return err
}

// NewTaskItem builds the single task item of a task. The definition is a
// fixed three-option placeholder; the manuals do not state grading levels.
func NewTaskItem(taskCode, text string) *schema.Node {
	item := schema.NewNode(schema.TypeTaskItem, taskCode+".1", "")
	item.LongFormTitle = ""
	item.SortOrder = 1
	item.Definition = DefaultDefinition()
	item.Text = text
	return item
}

// DefaultDefinition returns the select-single stub with three graded options.
func DefaultDefinition() *schema.Definition {
	return &schema.Definition{
		Type: "select-single",
		Options: []schema.Option{
			{ID: "option.0", Text: "Der er etableret 1-2 typer af rumlige situationer...", Value: 1},
			{ID: "option.1", Text: "I tillæg hertil er der attraktive og inviterende stueetager...", Value: 2},
			{ID: "option.2", Text: "Derudover kan der identificeres mindst 3 invitationer...", Value: 3},
		},
	}
}

func joinText(existing string, lines []string) string {
	var paras []string
	var cur []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			if len(cur) > 0 {
				paras = append(paras, strings.Join(cur, " "))
				cur = nil
			}
			continue
		}
		cur = append(cur, l)
	}
	if len(cur) > 0 {
		paras = append(paras, strings.Join(cur, " "))
	}
	text := strings.Join(paras, "\n")
	switch {
	case existing == "":
		return text
	case text == "":
		return existing
	}
	return existing + "\n" + text
}

func hasText(lines []string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return true
		}
	}
	return false
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
