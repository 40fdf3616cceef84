package schema

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTheme() *Node {
	theme := NewNode(TypeTheme, "DS", "Det Sociale")
	theme.Style = NewStyle("#d96552")
	theme.SortOrder = 1
	crit := NewNode(TypeCriterion, "DS1", "Livet Mellem Naboer")
	crit.SortOrder = 1
	group := NewNode(TypeTaskGroup, "DS1.1", "Livet Mellem Naboer")
	group.SortOrder = 1
	task := NewNode(TypeTask, "01", "Det naturlige møde")
	task.SortOrder = 1
	item := NewNode(TypeTaskItem, "01.1", "")
	item.Definition = &Definition{Type: "select-single", Options: []Option{{ID: "option.0", Text: "a", Value: 1}}}
	item.Text = "<strong>Beskrivelse</strong>\nTekst & mere"
	task.Items = append(task.Items, item)
	group.Items = append(group.Items, task)
	crit.Items = append(crit.Items, group)
	theme.Items = append(theme.Items, crit)
	return theme
}

func TestLighten(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"#000000", "#191919"},
		{"#ffffff", "#ffffff"},
		{"#d96552", "#dc7463"},
		{"bogus", "bogus"},
		{"#zzzzzz", "#zzzzzz"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Lighten(tc.in, 0.1))
		})
	}
}

func TestNewStyle_DefaultsToBlack(t *testing.T) {
	s := NewStyle("")
	assert.Equal(t, "#000000", s.PrimaryColor)
	assert.Equal(t, "#191919", s.SecondaryColor)
}

func TestMarshal_KeyOrderPerType(t *testing.T) {
	b, err := json.Marshal(sampleTheme())
	require.NoError(t, err)
	out := string(b)

	assertOrdered(t, out, `"type":"theme"`, `"code":"DS"`, `"title"`, `"longFormTitle"`, `"style"`, `"sortOrder"`, `"options"`, `"items"`)
	assertOrdered(t, out, `"type":"task"`, `"valueCalculationStrategy":"count"`, `"code":"01"`, `"options"`, `"documentation":[]`, `"items"`)
	assertOrdered(t, out, `"type":"task-item"`, `"code":"01.1"`, `"definition"`, `"excludeFromTargets":false`, `"text"`)
}

func TestMarshal_HTMLNotEscaped(t *testing.T) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	require.NoError(t, enc.Encode(sampleTheme()))
	out := buf.String()
	assert.Contains(t, out, "<strong>Beskrivelse</strong>")
	assert.Contains(t, out, "Tekst & mere")
	assert.Contains(t, out, "møde")

	// The outer encoder decides: json.Marshal escapes again.
	b, err := json.Marshal(sampleTheme())
	require.NoError(t, err)
	assert.Contains(t, string(b), `\u003cstrong\u003eBeskrivelse`)
}

func TestMarshal_ItemsPresenceByType(t *testing.T) {
	b, err := json.Marshal(sampleTheme())
	require.NoError(t, err)

	var tree map[string]any
	require.NoError(t, json.Unmarshal(b, &tree))

	var walk func(m map[string]any)
	walk = func(m map[string]any) {
		items, has := m["items"]
		if m["type"] == string(TypeTaskItem) {
			assert.False(t, has, "task-item must not carry items")
			return
		}
		require.True(t, has, "%v must carry items", m["type"])
		for _, c := range items.([]any) {
			walk(c.(map[string]any))
		}
	}
	walk(tree)
}

func TestMarshal_NilSlicesEncodeEmpty(t *testing.T) {
	task := &Node{Type: TypeTask, Code: "02", Title: "x"}
	b, err := json.Marshal(task)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"documentation":[]`)
	assert.Contains(t, string(b), `"items":[]`)
	assert.NotContains(t, string(b), "null")
}

func TestMarshal_UnknownType(t *testing.T) {
	_, err := json.Marshal(&Node{Type: "chapter"})
	require.Error(t, err)
}

func TestMarshal_Deterministic(t *testing.T) {
	theme := sampleTheme()
	a, err := json.MarshalIndent(theme, "", "  ")
	require.NoError(t, err)
	b, err := json.MarshalIndent(theme, "", "  ")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNodeHelpers(t *testing.T) {
	theme := sampleTheme()
	assert.NotNil(t, theme.Child("DS1"))
	assert.Nil(t, theme.Child("DS2"))

	var codes []string
	theme.Walk(func(n *Node) { codes = append(codes, n.Code) })
	assert.Equal(t, []string{"DS", "DS1", "DS1.1", "01", "01.1"}, codes)

	assert.Equal(t, TypeCriterion, TypeTheme.Child())
	assert.Equal(t, 3, TypeTask.Level())
	assert.Nil(t, NewNode(TypeTaskItem, "01.1", "").Items)
}

func assertOrdered(t *testing.T, s string, keys ...string) {
	t.Helper()
	pos := -1
	for _, k := range keys {
		i := strings.Index(s[pos+1:], k)
		if !assert.GreaterOrEqual(t, i, 0, "key %s missing after offset %d", k, pos) {
			return
		}
		pos += 1 + i
	}
}
