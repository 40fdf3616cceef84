// Package schema holds the manual document model and its JSON encoding.
//
// Key order in the encoded output follows the reference bovest-nybyg.json
// schema, so each node type has its own wire struct.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NodeType identifies the level of a node in the manual hierarchy.
type NodeType string

const (
	TypeTheme     NodeType = "theme"
	TypeCriterion NodeType = "criterion"
	TypeTaskGroup NodeType = "task-group"
	TypeTask      NodeType = "task"
	TypeTaskItem  NodeType = "task-item"
)

// Level returns the depth of a type in the tree, theme = 0 and task item = 4.
func (t NodeType) Level() int {
	switch t {
	case TypeTheme:
		return 0
	case TypeCriterion:
		return 1
	case TypeTaskGroup:
		return 2
	case TypeTask:
		return 3
	case TypeTaskItem:
		return 4
	}
	return -1
}

// Child returns the type one level below t.
func (t NodeType) Child() NodeType {
	switch t {
	case TypeTheme:
		return TypeCriterion
	case TypeCriterion:
		return TypeTaskGroup
	case TypeTaskGroup:
		return TypeTask
	case TypeTask:
		return TypeTaskItem
	}
	return ""
}

// Manual is the root of one output file.
type Manual struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ShortName   string    `json:"shortName"`
	Group       string    `json:"group"`
	Description string    `json:"description"`
	Versions    []Version `json:"versions"`
}

// Version is one dated revision of a manual.
type Version struct {
	Version string  `json:"version"`
	Date    string  `json:"date"`
	Themes  []*Node `json:"themes"`
}

// Style carries theme colours.
type Style struct {
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
}

// Documentation is a reference attached to a task.
type Documentation struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Text  string `json:"text"`
	URL   string `json:"url,omitempty"`
}

// Option is one graded answer of a task-item definition.
type Option struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Value int    `json:"value"`
}

// Definition describes how a task item is answered.
type Definition struct {
	Type    string   `json:"type"`
	Options []Option `json:"options"`
}

// Node is one element of the Theme → Criterion → Task Group → Task → Task Item tree.
type Node struct {
	Type          NodeType
	Code          string
	Title         string
	LongFormTitle string
	SortOrder     int
	Style         *Style          // theme only
	Documentation []Documentation // task only
	Definition    *Definition     // task-item only
	Text          string
	Items         []*Node

	Page int // source page of the heading, not encoded
}

// NewNode returns a node with an empty (non-nil) child list and, for tasks,
// an empty documentation list.
func NewNode(t NodeType, code, title string) *Node {
	n := &Node{
		Type:          t,
		Code:          code,
		Title:         title,
		LongFormTitle: title,
	}
	if t != TypeTaskItem {
		n.Items = []*Node{}
	}
	if t == TypeTask {
		n.Documentation = []Documentation{}
	}
	return n
}

// Child returns the direct child with the given code, or nil.
func (n *Node) Child(code string) *Node {
	for _, c := range n.Items {
		if c.Code == code {
			return c
		}
	}
	return nil
}

// Walk visits n and all descendants depth-first, parents before children.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Items {
		c.Walk(fn)
	}
}

type themeOptions struct {
	HideCodeInReport     bool `json:"hideCodeInReport"`
	HideFromBreadcrumbs  bool `json:"hideFromBreadcrumbs"`
	HideFromDocumentTree bool `json:"hideFromDocumentTree"`
}

type criterionOptions struct {
	HideCodeInReport              bool   `json:"hideCodeInReport"`
	HideFromBreadcrumbs           bool   `json:"hideFromBreadcrumbs"`
	HideFromDocumentTree          bool   `json:"hideFromDocumentTree"`
	CriteriaTreeElementTextFormat string `json:"criteriaTreeElementTextFormat"`
}

type taskOptions struct {
	BreadcrumbTextFormat             string `json:"breadcrumbTextFormat"`
	DocumentTreeFolderTextFormat     string `json:"documentTreeFolderTextFormat"`
	ShowCodeAsIndicatorTaskViewTitle bool   `json:"showCodeAsIndicatorTaskViewTitle"`
	CriteriaTreeElementTextFormat    string `json:"criteriaTreeElementTextFormat"`
}

type taskItemOptions struct {
	ExcludeFromTargets bool `json:"excludeFromTargets"`
}

type themeJSON struct {
	Type          NodeType     `json:"type"`
	Code          string       `json:"code"`
	Title         string       `json:"title"`
	LongFormTitle string       `json:"longFormTitle"`
	Style         Style        `json:"style"`
	SortOrder     int          `json:"sortOrder"`
	Options       themeOptions `json:"options"`
	Text          string       `json:"text,omitempty"`
	Items         []*Node      `json:"items"`
}

type criterionJSON struct {
	Type          NodeType         `json:"type"`
	Code          string           `json:"code"`
	Title         string           `json:"title"`
	LongFormTitle string           `json:"longFormTitle"`
	SortOrder     int              `json:"sortOrder"`
	Options       criterionOptions `json:"options"`
	Text          string           `json:"text,omitempty"`
	Items         []*Node          `json:"items"`
}

type taskGroupJSON struct {
	Type          NodeType `json:"type"`
	Code          string   `json:"code"`
	Title         string   `json:"title"`
	LongFormTitle string   `json:"longFormTitle"`
	SortOrder     int      `json:"sortOrder"`
	Text          string   `json:"text,omitempty"`
	Items         []*Node  `json:"items"`
}

type taskJSON struct {
	Type                     NodeType        `json:"type"`
	ValueCalculationStrategy string          `json:"valueCalculationStrategy"`
	Code                     string          `json:"code"`
	Title                    string          `json:"title"`
	LongFormTitle            string          `json:"longFormTitle"`
	SortOrder                int             `json:"sortOrder"`
	Options                  taskOptions     `json:"options"`
	Documentation            []Documentation `json:"documentation"`
	Items                    []*Node         `json:"items"`
}

type taskItemJSON struct {
	Type       NodeType        `json:"type"`
	Code       string          `json:"code"`
	Definition Definition      `json:"definition"`
	Options    taskItemOptions `json:"options"`
	Text       string          `json:"text"`
}

// MarshalJSON encodes the node with the key set and order of its type.
func (n *Node) MarshalJSON() ([]byte, error) {
	items := n.Items
	if items == nil {
		items = []*Node{}
	}
	switch n.Type {
	case TypeTheme:
		var style Style
		if n.Style != nil {
			style = *n.Style
		}
		return marshalRaw(themeJSON{
			Type:          n.Type,
			Code:          n.Code,
			Title:         n.Title,
			LongFormTitle: n.LongFormTitle,
			Style:         style,
			SortOrder:     n.SortOrder,
			Options:       themeOptions{HideCodeInReport: true, HideFromBreadcrumbs: true, HideFromDocumentTree: true},
			Text:          n.Text,
			Items:         items,
		})
	case TypeCriterion:
		return marshalRaw(criterionJSON{
			Type:          n.Type,
			Code:          n.Code,
			Title:         n.Title,
			LongFormTitle: n.LongFormTitle,
			SortOrder:     n.SortOrder,
			Options: criterionOptions{
				HideCodeInReport:              true,
				HideFromBreadcrumbs:           true,
				HideFromDocumentTree:          true,
				CriteriaTreeElementTextFormat: ":title:",
			},
			Text:  n.Text,
			Items: items,
		})
	case TypeTaskGroup:
		return marshalRaw(taskGroupJSON{
			Type:          n.Type,
			Code:          n.Code,
			Title:         n.Title,
			LongFormTitle: n.LongFormTitle,
			SortOrder:     n.SortOrder,
			Text:          n.Text,
			Items:         items,
		})
	case TypeTask:
		docs := n.Documentation
		if docs == nil {
			docs = []Documentation{}
		}
		return marshalRaw(taskJSON{
			Type:                     n.Type,
			ValueCalculationStrategy: "count",
			Code:                     n.Code,
			Title:                    n.Title,
			LongFormTitle:            n.LongFormTitle,
			SortOrder:                n.SortOrder,
			Options: taskOptions{
				BreadcrumbTextFormat:          ":code: :title:",
				DocumentTreeFolderTextFormat:  ":code: :title:",
				CriteriaTreeElementTextFormat: ":code: :title:",
			},
			Documentation: docs,
			Items:         items,
		})
	case TypeTaskItem:
		var def Definition
		if n.Definition != nil {
			def = *n.Definition
		}
		if def.Options == nil {
			def.Options = []Option{}
		}
		return marshalRaw(taskItemJSON{
			Type:       n.Type,
			Code:       n.Code,
			Definition: def,
			Text:       n.Text,
		})
	}
	return nil, fmt.Errorf("unknown node type %q", n.Type)
}

// marshalRaw encodes v without HTML escaping. encoding/json compacts a
// Marshaler's output with the outer encoder's escapeHTML setting, so task-item
// HTML stays raw only when that encoder disables escaping as well.
func marshalRaw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
