package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dgallion1/manualgest/internal/manuals"
	"github.com/dgallion1/manualgest/internal/parser"
)

// ErrNoSource means no source document was found for a manual.
var ErrNoSource = errors.New("no source document")

// SourcePattern walks every file under the input directory; the extractor's
// extension list decides which of them are candidates.
const SourcePattern = "**/*"

// extRank orders candidates when several files match one manual.
var extRank = map[string]int{".pdf": 0, ".docx": 1, ".txt": 2}

// Sources locates the source document of each manual.
type Sources struct {
	Dir      string
	Explicit map[string]string // manual key -> path
}

// Find returns the source path for m. An explicit entry wins; otherwise the
// first file under Dir whose name carries one of m's keywords, PDFs first.
func (s Sources) Find(m manuals.Manual) (string, error) {
	if p, ok := s.Explicit[m.Key]; ok && p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrNoSource, m.Key, err)
		}
		return p, nil
	}
	candidates, err := s.Candidates()
	if err != nil {
		return "", err
	}
	for _, c := range candidates {
		if m.MatchFile(path.Base(c)) {
			return filepath.Join(s.Dir, filepath.FromSlash(c)), nil
		}
	}
	return "", fmt.Errorf("%w: %s: nothing matching %v in %s", ErrNoSource, m.Key, m.Match, s.Dir)
}

// Candidates lists supported files under Dir relative to it, PDFs first, then
// by path.
func (s Sources) Candidates() ([]string, error) {
	if _, err := os.Stat(s.Dir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("input dir: %w", err)
	}
	matches, err := doublestar.Glob(os.DirFS(s.Dir), SourcePattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.Dir, err)
	}
	var out []string
	for _, m := range matches {
		if strings.HasPrefix(path.Base(m), ".") || !parser.IsSupportedExtension(m) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := extRank[strings.ToLower(path.Ext(out[i]))], extRank[strings.ToLower(path.Ext(out[j]))]
		if ri != rj {
			return ri < rj
		}
		return out[i] < out[j]
	})
	return out, nil
}
