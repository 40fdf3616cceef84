package parser

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
	rscpdf "rsc.io/pdf"
)

// LedongthucBackend is the primary PDF backend. It rebuilds lines from the
// library's text rows and falls back to the page's plain text stream. Text
// that still comes back run together is passed over by the Extractor in
// favour of the next backend.
type LedongthucBackend struct{}

func (LedongthucBackend) Name() string { return "ledongthuc" }

func (LedongthucBackend) Open(path string) (Document, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	return &ledongthucDoc{f: f, r: reader}, nil
}

type ledongthucDoc struct {
	f *os.File
	r *pdflib.Reader
}

func (d *ledongthucDoc) NumPage() int { return d.r.NumPage() }

func (d *ledongthucDoc) PageText(n int) (string, error) {
	page := d.r.Page(n)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d: missing page object", n)
	}
	var byRow string
	rows, err := page.GetTextByRow()
	if err == nil && len(rows) > 0 {
		lines := make([]textRow, 0, len(rows))
		for _, row := range rows {
			tr := textRow{Y: float64(row.Position)}
			for _, t := range row.Content {
				tr.add(glyph{X: t.X, W: t.W, Size: t.FontSize, S: t.S})
			}
			lines = append(lines, tr)
		}
		byRow = layoutRows(lines)
		if strings.TrimSpace(byRow) != "" && !degenerate(Clean(byRow)) {
			return byRow, nil
		}
	}
	// Rows are only positioned by Tm; content laid out with Td comes back as
	// one glued row, so try the plain text stream before giving up on it.
	text, err := page.GetPlainText(nil)
	if err != nil {
		if strings.TrimSpace(byRow) != "" {
			return byRow, nil
		}
		return "", fmt.Errorf("page %d: %w", n, err)
	}
	if strings.TrimSpace(text) == "" {
		return byRow, nil
	}
	return text, nil
}

func (d *ledongthucDoc) Close() error { return d.f.Close() }

// RSCBackend is the secondary PDF backend. It positions every glyph with
// rsc.io/pdf and groups glyphs into lines by baseline.
type RSCBackend struct{}

func (RSCBackend) Name() string { return "rsc" }

func (RSCBackend) Open(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	r, err := rscpdf.NewReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	return &rscDoc{f: f, r: r}, nil
}

type rscDoc struct {
	f *os.File
	r *rscpdf.Reader
}

func (d *rscDoc) NumPage() int { return d.r.NumPage() }

func (d *rscDoc) PageText(n int) (string, error) {
	page := d.r.Page(n)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d: missing page object", n)
	}
	texts := page.Content().Text
	sort.SliceStable(texts, func(i, j int) bool {
		if texts[i].Y != texts[j].Y {
			return texts[i].Y > texts[j].Y
		}
		return texts[i].X < texts[j].X
	})

	var rows []textRow
	for _, t := range texts {
		g := glyph{X: t.X, W: t.W, Size: t.FontSize, S: t.S}
		if len(rows) > 0 {
			last := &rows[len(rows)-1]
			if abs(last.Y-t.Y) <= sameLineTolerance(t.FontSize) {
				last.add(g)
				continue
			}
		}
		row := textRow{Y: t.Y}
		row.add(g)
		rows = append(rows, row)
	}
	for i := range rows {
		sort.SliceStable(rows[i].Glyphs, func(a, b int) bool { return rows[i].Glyphs[a].X < rows[i].Glyphs[b].X })
	}
	return layoutRows(rows), nil
}

func (d *rscDoc) Close() error { return d.f.Close() }

// PdftotextBackend shells out to poppler's pdftotext, as a last resort.
type PdftotextBackend struct{}

func (PdftotextBackend) Name() string { return "pdftotext" }

func (PdftotextBackend) Open(path string) (Document, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not available: %w", err)
	}
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return newSplitDoc(string(out)), nil
}

// splitDoc serves pages from text separated by form feeds.
type splitDoc struct {
	pages []string
}

func newSplitDoc(text string) *splitDoc {
	pages := strings.Split(text, "\f")
	// pdftotext terminates the last page with a form feed too.
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return &splitDoc{pages: pages}
}

func (d *splitDoc) NumPage() int { return len(d.pages) }

func (d *splitDoc) PageText(n int) (string, error) {
	if n < 1 || n > len(d.pages) {
		return "", fmt.Errorf("page %d out of range", n)
	}
	return d.pages[n-1], nil
}

func (d *splitDoc) Close() error { return nil }
