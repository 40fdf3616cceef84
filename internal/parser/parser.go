package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/manualgest/internal/doctree"
)

// ErrUnreadable marks a document no extraction backend could read.
var ErrUnreadable = errors.New("unreadable document")

// UnreadableError collects the failure of every backend tried on a document.
type UnreadableError struct {
	Path   string
	Causes []error
}

func (e *UnreadableError) Error() string {
	msgs := make([]string, len(e.Causes))
	for i, c := range e.Causes {
		msgs[i] = c.Error()
	}
	return fmt.Sprintf("unreadable document %s: %s", e.Path, strings.Join(msgs, "; "))
}

func (e *UnreadableError) Is(target error) bool { return target == ErrUnreadable }

func (e *UnreadableError) Unwrap() []error { return e.Causes }

// Document is an opened source document with page-addressable text.
type Document interface {
	NumPage() int
	PageText(n int) (string, error) // n is 1-based
	Close() error
}

// Backend opens documents with one extraction method.
type Backend interface {
	Name() string
	Open(path string) (Document, error)
}

// Options selects optional backends.
type Options struct {
	Pdftotext bool // add pdftotext -layout as the last PDF backend
}

// SupportedExtensions lists source extensions the extractor can handle.
var SupportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
}

// ForFile returns the backends for a file, in the order they should be tried.
func ForFile(filename string, opts Options) ([]Backend, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		b := []Backend{LedongthucBackend{}, RSCBackend{}}
		if opts.Pdftotext {
			b = append(b, PdftotextBackend{})
		}
		return b, nil
	case ".docx":
		return []Backend{DOCXBackend{}}, nil
	case ".txt":
		return []Backend{TextBackend{}}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Extractor reads a source document into cleaned pages.
type Extractor struct {
	Options Options
	Log     *slog.Logger
}

// Extract returns every readable page in source order. Pages that no backend
// can read are skipped with a warning. If no backend can open the document, or
// no page yields text, the error is an *UnreadableError.
func (e *Extractor) Extract(path string) ([]doctree.Page, error) {
	backends, err := ForFile(path, e.Options)
	if err != nil {
		return nil, &UnreadableError{Path: path, Causes: []error{err}}
	}
	return e.extractWith(path, backends)
}

func (e *Extractor) extractWith(path string, backends []Backend) ([]doctree.Page, error) {
	log := e.Log
	if log == nil {
		log = slog.Default()
	}
	s := &session{path: path, backends: backends, docs: make([]Document, len(backends)), errs: make([]error, len(backends))}
	defer s.close()

	numPages := 0
	for i := range backends {
		if d := s.doc(i); d != nil && d.NumPage() > 0 {
			numPages = d.NumPage()
			break
		}
	}
	if numPages == 0 {
		causes := s.failures()
		if len(causes) == 0 {
			causes = append(causes, errors.New("document has no pages"))
		}
		return nil, &UnreadableError{Path: path, Causes: causes}
	}

	var pages []doctree.Page
	for n := 1; n <= numPages; n++ {
		text, used := s.pageText(n, log)
		if text == "" {
			log.Warn("page skipped, no backend produced text", "path", path, "page", n)
			continue
		}
		if used != backends[0].Name() {
			log.Info("page read by fallback backend", "path", path, "page", n, "backend", used)
		}
		pages = append(pages, doctree.Page{Number: n, Text: text})
	}
	if len(pages) == 0 {
		causes := append(s.failures(), fmt.Errorf("no text on any of %d pages", numPages))
		return nil, &UnreadableError{Path: path, Causes: causes}
	}
	return pages, nil
}

// session opens backends lazily so the fallback only runs when needed.
type session struct {
	path     string
	backends []Backend
	docs     []Document
	errs     []error
}

func (s *session) doc(i int) Document {
	if s.docs[i] != nil || s.errs[i] != nil {
		return s.docs[i]
	}
	var d Document
	err := guard(func() error {
		var err error
		d, err = s.backends[i].Open(s.path)
		return err
	})
	if err != nil {
		s.errs[i] = fmt.Errorf("%s: %w", s.backends[i].Name(), err)
		return nil
	}
	s.docs[i] = d
	return d
}

// pageText returns the first readable text of page n and the backend that
// produced it. Run-together text is only used when no backend does better.
func (s *session) pageText(n int, log *slog.Logger) (string, string) {
	var fallback, fallbackName string
	for i, b := range s.backends {
		d := s.doc(i)
		if d == nil || n > d.NumPage() {
			continue
		}
		var raw string
		err := guard(func() error {
			var err error
			raw, err = d.PageText(n)
			return err
		})
		if err != nil {
			log.Debug("page extraction failed", "path", s.path, "page", n, "backend", b.Name(), "error", err)
			continue
		}
		text := Clean(raw)
		if text == "" {
			continue
		}
		if degenerate(text) {
			log.Debug("page text run together, trying next backend", "path", s.path, "page", n, "backend", b.Name())
			if fallback == "" {
				fallback, fallbackName = text, b.Name()
			}
			continue
		}
		return text, b.Name()
	}
	return fallback, fallbackName
}

// maxWordRunes bounds a whitespace-free run in readable text. Backends that
// drop inter-word spacing produce whole lines glued into one "word".
const maxWordRunes = 48

// degenerate reports whether text looks like glyphs with their spacing lost:
// a long page on a single line, or a word longer than any real one.
func degenerate(text string) bool {
	if utf8.RuneCountInString(text) > 200 && !strings.Contains(text, "\n") {
		return true
	}
	for _, w := range strings.Fields(text) {
		if utf8.RuneCountInString(w) > maxWordRunes {
			return true
		}
	}
	return false
}

func (s *session) failures() []error {
	var out []error
	for _, err := range s.errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}

func (s *session) close() {
	for _, d := range s.docs {
		if d != nil {
			d.Close()
		}
	}
}

// guard turns a panic inside a PDF library into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
