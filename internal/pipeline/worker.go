package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/manualgest/internal/assemble"
	"github.com/dgallion1/manualgest/internal/doctree"
	"github.com/dgallion1/manualgest/internal/manuals"
	"github.com/dgallion1/manualgest/internal/output"
	"github.com/dgallion1/manualgest/internal/parser"
	"github.com/dgallion1/manualgest/internal/render"
	"github.com/dgallion1/manualgest/internal/schema"
	"github.com/dgallion1/manualgest/internal/structure"
)

// Worker converts one manual at a time, start to finish.
type Worker struct {
	table     *manuals.Table
	sources   Sources
	extractor *parser.Extractor
	parser    *structure.Parser
	renderer  *render.Renderer
	writer    *output.Writer
	release   output.Release
	log       *slog.Logger

	deriveDescription bool
}

func NewWorker(tbl *manuals.Table, sources Sources, extractor *parser.Extractor, writer *output.Writer, rel output.Release, log *slog.Logger) *Worker {
	return &Worker{
		table:     tbl,
		sources:   sources,
		extractor: extractor,
		parser:    structure.NewParser(tbl, log),
		renderer:  render.NewRenderer(),
		writer:    writer,
		release:   rel,
		log:       log,
	}
}

// Process runs extraction, structure parsing, assembly and writing for m. It
// never panics out and never returns an error: the outcome is on the job.
func (w *Worker) Process(ctx context.Context, m manuals.Manual) (job *Job) {
	job = &Job{Key: m.Key, Name: m.Name, StartedAt: time.Now()}
	job.SetStatus(StatusQueued, "queued")
	log := w.log.With("manual", m.Key)

	defer func() {
		if r := recover(); r != nil {
			log.Error("conversion panicked", "phase", job.Phase, "panic", r)
			job.Fail(job.Phase, fmt.Errorf("panic in %s: %v", job.Phase, r))
		}
	}()

	// Phase 1: locate the source
	src, err := w.sources.Find(m)
	if err != nil {
		log.Error("no source document", "error", err)
		job.Err = err
		job.SetStatus(StatusNoSource, "discover")
		return job
	}
	job.Source = src
	log = log.With("source", src)

	// Phase 2: extract text
	if err := ctx.Err(); err != nil {
		job.Fail("extracting", err)
		return job
	}
	job.SetStatus(StatusExtracting, "extracting")
	pages, err := w.extractor.Extract(src)
	if err != nil {
		log.Error("extraction failed", "error", err)
		job.Fail("extracting", err)
		return job
	}
	job.Pages = len(pages)
	job.ContentHash = ContentHashHex([]byte(doctree.FullText(pages)))
	log.Info("text extracted", "pages", job.Pages, "content_hash", job.ContentHash)

	// Phase 3: classify lines
	if err := ctx.Err(); err != nil {
		job.Fail("parsing", err)
		return job
	}
	job.SetStatus(StatusParsing, "parsing")
	tokens := w.parser.Parse(pages)
	headings := 0
	for _, t := range tokens {
		if t.Kind.IsHeading() {
			headings++
		}
	}
	log.Info("structure parsed", "tokens", len(tokens), "headings", headings)
	if headings == 0 {
		err := fmt.Errorf("%w in %d pages of %s", ErrNoStructure, len(pages), src)
		log.Error("no headings recognised", "error", err)
		job.Fail("parsing", err)
		return job
	}

	// Phase 4: build the tree
	job.SetStatus(StatusAssembling, "assembling")
	res, err := assemble.New(w.table, m, w.renderer, log).Assemble(tokens)
	if err != nil {
		log.Error("assembly failed", "error", err)
		job.Fail("assembling", err)
		return job
	}
	job.Issues = res.Issues
	job.Unplaced = res.Unplaced
	for _, th := range res.Themes {
		th.Walk(func(n *schema.Node) {
			if n.Type == schema.TypeTask {
				job.Tasks++
			}
		})
	}
	for _, is := range res.Issues {
		log.Warn("needs review", "path", is.Path, "issue", is.Message)
	}
	if res.Unplaced > 0 {
		log.Warn("text outside any heading", "lines", res.Unplaced)
	}

	if w.deriveDescription {
		if pages[0].Number != 1 {
			log.Info("cover page not extracted, using metadata table", "first_page", pages[0].Number)
		} else if d, ok := structure.Description(pages[0].Text); ok {
			m.Description = d
		} else {
			log.Info("no description on first page, using metadata table")
		}
	}

	// Phase 5: write
	if err := ctx.Err(); err != nil {
		job.Fail("writing", err)
		return job
	}
	job.SetStatus(StatusWriting, "writing")
	written, err := w.writer.Write(m, output.Envelope(m, w.release, res.Themes))
	if err != nil {
		log.Error("write failed", "error", err)
		job.Fail("writing", err)
		return job
	}
	job.Output = written

	if len(res.Issues) > 0 {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
	log.Info("manual converted", "status", job.Status, "themes", len(res.Themes), "tasks", job.Tasks, "issues", len(res.Issues), "duration", job.Duration())
	return job
}
