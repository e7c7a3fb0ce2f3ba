// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package pipeline runs one documentation build: read and tokenize the
// input files, aggregate their blocks, render the model and write or check
// the documents.
//
// Files are read and tokenized concurrently, but their blocks reach the
// aggregator strictly in input order, so the output does not depend on
// scheduling.
package pipeline

import (
	"context"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"grimm.is/docwriter/internal/content"
	"grimm.is/docwriter/internal/diag"
	"grimm.is/docwriter/internal/errors"
	"grimm.is/docwriter/internal/logging"
	"grimm.is/docwriter/internal/metrics"
	"grimm.is/docwriter/internal/output"
	"grimm.is/docwriter/internal/render"
	"grimm.is/docwriter/internal/source"
)

// Options configures a run.
type Options struct {
	Inputs         []string
	Syntax         source.Syntax
	DefaultSection string
	Render         render.Options
	Strict         bool
	Jobs           int // concurrent readers; 0 means GOMAXPROCS

	// OutputDir receives the documents. Empty renders without writing.
	OutputDir string
	// Check compares with OutputDir instead of writing to it.
	Check bool

	Logger  *logging.Logger
	Metrics *metrics.Registry
}

// Result is everything a run produced. Documents is empty when the run
// stopped on fatal diagnostics.
type Result struct {
	Model       *content.Model
	Documents   []render.Document
	Diagnostics diag.List
	Drifts      []output.Drift
	Written     bool

	files  int
	failed int
	blocks int
}

type parsed struct {
	blocks []*source.Block
	diags  diag.List
	failed bool
}

// Run executes the pipeline. The returned error is nil on success and
// otherwise carries the errors.Kind that decides the exit status; the
// Result is returned in both cases.
func Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	lg := opts.Logger
	if lg == nil {
		lg = logging.WithComponent("pipeline")
	}
	res := &Result{files: len(opts.Inputs)}

	err := run(ctx, opts, lg, res)
	if opts.Metrics != nil {
		observe(opts.Metrics, res, err, time.Since(start))
	}
	if err != nil {
		lg.WithError(err).Debug("run failed", "diagnostics", len(res.Diagnostics))
		return res, err
	}
	lg.Info("documentation generated",
		"files", res.files, "documents", len(res.Documents),
		"warnings", len(res.Diagnostics.Warnings()), "elapsed", time.Since(start).Round(time.Millisecond))
	return res, nil
}

func run(ctx context.Context, opts Options, lg *logging.Logger, res *Result) error {
	if len(opts.Inputs) == 0 {
		res.Diagnostics.Fatalf(diag.CodeNoInput, diag.Pos{}, "no input files given")
		return res.Diagnostics.Err(opts.Strict)
	}

	var w *output.Writer
	if opts.OutputDir != "" && !opts.Check {
		w = output.NewWriter(opts.OutputDir)
		if err := w.Prepare(); err != nil {
			res.Diagnostics.Fatalf(diag.CodeOutput, diag.Pos{File: opts.OutputDir}, "%v", err)
			return err
		}
	}

	files, err := parseAll(ctx, opts)
	if err != nil {
		return err
	}

	proc := content.NewProcessor(content.Options{DefaultSection: opts.DefaultSection})
	for i, f := range files {
		res.Diagnostics.Add(f.diags...)
		res.blocks += len(f.blocks)
		if f.failed {
			res.failed++
			continue
		}
		if err := proc.AddBlocks(opts.Inputs[i], f.blocks); err != nil {
			return err
		}
	}

	model, err := proc.Finish()
	if err != nil {
		return err
	}
	res.Model = model
	res.Diagnostics.Add(model.Diagnostics()...)
	if err := res.Diagnostics.Err(opts.Strict); err != nil {
		return err
	}

	res.Documents = render.New(model, opts.Render).All()
	lg.Debug("rendered", "documents", len(res.Documents))

	switch {
	case opts.OutputDir == "":
		return nil
	case opts.Check:
		drifts, err := output.Check(opts.OutputDir, res.Documents)
		if err != nil {
			return err
		}
		res.Drifts = drifts
		return output.DriftError(drifts)
	default:
		if err := w.Write(ctx, res.Documents); err != nil {
			res.Diagnostics.Fatalf(diag.CodeOutput, diag.Pos{File: opts.OutputDir}, "%v", err)
			return err
		}
		res.Written = true
		return nil
	}
}

// parseAll reads and tokenizes every input with at most opts.Jobs files in
// flight. Results keep input order.
func parseAll(ctx context.Context, opts Options) ([]parsed, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	files := make([]parsed, len(opts.Inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range opts.Inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f := &files[i]
			data, err := os.ReadFile(path)
			if err != nil {
				f.failed = true
				f.diags.Warnf(diag.CodeRead, diag.Pos{File: path}, "cannot read file: %v", err)
				return nil
			}
			f.blocks = source.ParseFile(path, data, opts.Syntax, &f.diags)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, "reading input files")
	}
	return files, nil
}

func observe(reg *metrics.Registry, res *Result, err error, elapsed time.Duration) {
	run := metrics.Run{
		Files:       res.files,
		FailedFiles: res.failed,
		Blocks:      res.blocks,
		Documents:   len(res.Documents),
		Diagnostics: res.Diagnostics,
		Duration:    elapsed,
		Finished:    time.Now(),
		Failed:      err != nil,
	}
	if res.Model != nil {
		st := res.Model.Stats()
		run.Sections, run.Entries = st.Sections, st.Entries
		run.Refs, run.Unresolved = st.Refs, st.Unresolved
	}
	reg.Observe(run)
}


