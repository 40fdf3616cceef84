// Package output wraps an assembled tree in its manual envelope and writes it
// as one JSON file per manual.
package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgallion1/manualgest/internal/manuals"
	"github.com/dgallion1/manualgest/internal/schema"
)

// ErrWrite marks a failure to persist an output file.
var ErrWrite = errors.New("write failure")

// Release is the version entry stamped on every manual of a run.
type Release struct {
	Version string
	Date    string
}

// Envelope builds the output document for m from the static metadata.
func Envelope(m manuals.Manual, rel Release, themes []*schema.Node) *schema.Manual {
	if themes == nil {
		themes = []*schema.Node{}
	}
	return &schema.Manual{
		ID:          m.ID,
		Name:        m.Name,
		ShortName:   m.ShortName,
		Group:       m.Group,
		Description: m.Description,
		Versions: []schema.Version{{
			Version: rel.Version,
			Date:    rel.Date,
			Themes:  themes,
		}},
	}
}

// Encode serialises doc with two-space indent and a trailing newline. HTML in
// task item text and non-ASCII letters are written as-is.
func Encode(doc *schema.Manual) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode manual %s: %w", doc.ID, err)
	}
	return buf.Bytes(), nil
}

// Written describes one completed write.
type Written struct {
	Path      string
	Bytes     int
	Unchanged bool // an identical file was already in place
}

// Writer writes manual files into Dir.
type Writer struct {
	Dir string
	Log *slog.Logger
}

func NewWriter(dir string, log *slog.Logger) *Writer {
	if log == nil {
		log = slog.Default()
	}
	return &Writer{Dir: dir, Log: log}
}

// Write encodes doc and stores it as Dir/m.Output.
func (w *Writer) Write(m manuals.Manual, doc *schema.Manual) (Written, error) {
	data, err := Encode(doc)
	if err != nil {
		return Written{}, err
	}
	path := filepath.Join(w.Dir, m.Output)
	unchanged, err := writeAtomic(path, data)
	if err != nil {
		return Written{}, err
	}
	w.Log.Info("manual written", "manual", m.Key, "path", path, "bytes", len(data), "unchanged", unchanged)
	return Written{Path: path, Bytes: len(data), Unchanged: unchanged}, nil
}

// writeAtomic replaces path with data through a temp file in the same
// directory. It reports true and leaves the file alone when it already holds
// exactly data.
func writeAtomic(path string, data []byte) (bool, error) {
	if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, data) {
		return true, nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("%w: create %s: %w", ErrWrite, dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return false, fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return false, fmt.Errorf("%w: sync %s: %w", ErrWrite, path, err)
	}
	if err := tmp.Close(); err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return false, fmt.Errorf("%w: rename into %s: %w", ErrWrite, path, err)
	}
	return false, nil
}
