package assemble

import (
	"fmt"
	"strings"

	"github.com/dgallion1/manualgest/internal/schema"
)

// Issue is a gap in the assembled tree that needs manual review. The tree is
// still written with the gap present.
type Issue struct {
	Path    string // e.g. "DS/DS1/DS1.1/01"
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Path, i.Message)
}

// Validate reports an empty manual, nodes that miss a required level below
// them, and task items without text.
func Validate(themes []*schema.Node) []Issue {
	var issues []Issue
	if len(themes) == 0 {
		issues = append(issues, Issue{Path: "/", Message: "manual has no themes"})
	}
	var walk func(n *schema.Node, path []string)
	walk = func(n *schema.Node, path []string) {
		path = append(path, n.Code)
		p := strings.Join(path, "/")
		switch {
		case n.Type == schema.TypeTaskItem:
			if strings.TrimSpace(n.Text) == "" {
				issues = append(issues, Issue{Path: p, Message: "task item has no text"})
			}
			if n.Definition == nil || len(n.Definition.Options) != 3 {
				issues = append(issues, Issue{Path: p, Message: "task item definition must have three options"})
			}
			return
		case len(n.Items) == 0:
			issues = append(issues, Issue{Path: p, Message: fmt.Sprintf("%s %q has no %s", n.Type, n.Title, n.Type.Child())})
		}
		for _, c := range n.Items {
			if c.Type != n.Type.Child() {
				issues = append(issues, Issue{Path: p, Message: fmt.Sprintf("%s under %s", c.Type, n.Type)})
			}
			walk(c, path)
		}
	}
	for _, th := range themes {
		walk(th, nil)
	}
	return issues
}
