package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/manualgest/internal/config"
	"github.com/dgallion1/manualgest/internal/manuals"
	"github.com/dgallion1/manualgest/internal/output"
	"github.com/dgallion1/manualgest/internal/parser"
)

// Orchestrator runs the conversion of every requested manual in turn.
type Orchestrator struct {
	table  *manuals.Table
	worker *Worker
	log    *slog.Logger
}

// NewOrchestrator wires the pipeline stages from cfg.
func NewOrchestrator(cfg config.Config, tbl *manuals.Table, log *slog.Logger) *Orchestrator {
	extractor := &parser.Extractor{
		Options: parser.Options{Pdftotext: cfg.PdftotextFallback},
		Log:     log,
	}
	sources := Sources{Dir: cfg.InputDir, Explicit: cfg.Sources}
	rel := output.Release{Version: cfg.Version, Date: cfg.Date}
	w := NewWorker(tbl, sources, extractor, output.NewWriter(cfg.OutputDir, log), rel, log)
	w.deriveDescription = cfg.DeriveDescription
	return &Orchestrator{table: tbl, worker: w, log: log}
}

// Resolve maps requested keys to manuals; no keys selects all of them.
func (o *Orchestrator) Resolve(keys []string) ([]manuals.Manual, error) {
	if len(keys) == 0 {
		return o.table.Manuals, nil
	}
	var out []manuals.Manual
	seen := make(map[string]bool)
	for _, k := range keys {
		m, ok := o.table.Lookup(k)
		if !ok {
			return nil, fmt.Errorf("unknown manual %q", k)
		}
		if seen[m.Key] {
			continue
		}
		seen[m.Key] = true
		out = append(out, m)
	}
	return out, nil
}

// Run converts the manuals named by keys, one after the other. A failing
// manual does not stop the others; the error return is for bad keys only.
func (o *Orchestrator) Run(ctx context.Context, keys []string) (*Summary, error) {
	list, err := o.Resolve(keys)
	if err != nil {
		return nil, err
	}
	sum := &Summary{}
	for _, m := range list {
		job := o.worker.Process(ctx, m)
		sum.Jobs = append(sum.Jobs, job)
	}
	o.log.Info("run finished", "manuals", len(sum.Jobs), "failed", sum.Failed())
	return sum, nil
}
