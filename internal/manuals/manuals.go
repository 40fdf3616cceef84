// Package manuals holds the static per-manual metadata table and the theme
// allow-list. Nothing here is derived from document content.
package manuals

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed manuals.yaml
var tableYAML []byte

// Theme is an allow-listed top-level section.
type Theme struct {
	Code    string   `yaml:"code"`
	Title   string   `yaml:"title"`
	Color   string   `yaml:"color"`
	Aliases []string `yaml:"aliases"`
}

// Manual is the fixed envelope metadata for one manual.
type Manual struct {
	Key         string   `yaml:"key"`
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	ShortName   string   `yaml:"shortName"`
	Group       string   `yaml:"group"`
	Description string   `yaml:"description"`
	URL         string   `yaml:"url"`
	Output      string   `yaml:"output"`
	Match       []string `yaml:"match"`
}

// Table is the parsed metadata table.
type Table struct {
	Group   string   `yaml:"group"`
	Themes  []Theme  `yaml:"themes"`
	Manuals []Manual `yaml:"manuals"`
}

// Default returns the embedded table. It panics if the embedded YAML is invalid.
func Default() *Table {
	t, err := Parse(tableYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded manual table: %v", err))
	}
	return t
}

// Parse decodes and validates a metadata table.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode manual table: %w", err)
	}
	for i := range t.Manuals {
		if t.Manuals[i].Group == "" {
			t.Manuals[i].Group = t.Group
		}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks ids, keys and theme codes.
func (t *Table) Validate() error {
	if len(t.Manuals) == 0 {
		return fmt.Errorf("manual table has no manuals")
	}
	seen := make(map[string]bool)
	for _, m := range t.Manuals {
		if m.Key == "" {
			return fmt.Errorf("manual %q: key is required", m.Name)
		}
		if seen[m.Key] {
			return fmt.Errorf("manual %q: duplicate key", m.Key)
		}
		seen[m.Key] = true
		if _, err := uuid.Parse(m.ID); err != nil {
			return fmt.Errorf("manual %q: invalid id %q: %w", m.Key, m.ID, err)
		}
		if m.Output == "" {
			return fmt.Errorf("manual %q: output file name is required", m.Key)
		}
	}
	codes := make(map[string]bool)
	for _, th := range t.Themes {
		if th.Code == "" || th.Title == "" {
			return fmt.Errorf("theme %q: code and title are required", th.Title)
		}
		if codes[th.Code] {
			return fmt.Errorf("theme %q: duplicate code", th.Code)
		}
		codes[th.Code] = true
	}
	return nil
}

// Lookup finds a manual by key. Case, spaces and underscores are ignored, so
// "Simpel Sag", "simpel_sag" and "simpel-sag" are the same manual.
func (t *Table) Lookup(key string) (Manual, bool) {
	k := normalizeKey(key)
	for _, m := range t.Manuals {
		if normalizeKey(m.Key) == k {
			return m, true
		}
	}
	return Manual{}, false
}

// Theme returns the allow-listed theme with the given code.
func (t *Table) Theme(code string) (Theme, bool) {
	for _, th := range t.Themes {
		if th.Code == code {
			return th, true
		}
	}
	return Theme{}, false
}

// ThemeCodes lists the theme codes in table order.
func (t *Table) ThemeCodes() []string {
	codes := make([]string, len(t.Themes))
	for i, th := range t.Themes {
		codes[i] = th.Code
	}
	return codes
}

// MatchFile reports whether a source file name belongs to manual m.
func (m Manual) MatchFile(name string) bool {
	upper := strings.ToUpper(name)
	for _, kw := range m.Match {
		if strings.Contains(upper, strings.ToUpper(kw)) {
			return true
		}
	}
	return false
}

// PageURL links to a page of the published source PDF.
func (m Manual) PageURL(page int) string {
	if m.URL == "" {
		return ""
	}
	return fmt.Sprintf("%s?page=%d", m.URL, page)
}

func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "-", "_", "-").Replace(s)
}
