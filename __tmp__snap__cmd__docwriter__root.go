// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"grimm.is/docwriter/internal/config"
	"grimm.is/docwriter/internal/diag"
	"grimm.is/docwriter/internal/errors"
	"grimm.is/docwriter/internal/logging"
	"grimm.is/docwriter/internal/metrics"
	"grimm.is/docwriter/internal/pipeline"
	"grimm.is/docwriter/internal/render"
)

// errReported marks errors whose details were already printed as diagnostics.
var errReported = errors.New(errors.KindInternal, "reported")

type reportedError struct{ err error }

func (e *reportedError) Error() string        { return e.err.Error() }
func (e *reportedError) Is(target error) bool { return target == errReported }
func (e *reportedError) Unwrap() error        { return e.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

type rootOptions struct {
	title          string
	output         string
	prefix         string
	configFile     string
	defaultSection string
	syntax         string
	strict         bool
	check          bool
	jobs           int
	metricsFile    string
	logLevel       string
	logJSON        bool
	watch          bool

	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "docwriter [flags] file...",
		Short: "Render documentation comments as cross-referenced Markdown",
		Long: `docwriter reads /** ... */ and /// documentation blocks from the given
source files and writes a table of contents, one document per section and
an alphabetical index to the output directory. Arguments may contain
wildcards; they are expanded in sorted order.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd, args)
			if err != nil {
				return err
			}
			if opts.watch {
				return opts.watchAndRun(cmd.Context(), cfg)
			}
			return opts.generate(cmd.Context(), cfg)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.Wrap(err, errors.KindConfig, "usage")
	})

	f := cmd.PersistentFlags()
	f.StringVarP(&opts.title, "title", "t", render.DefaultTitle, "project title used in the table of contents")
	f.StringVarP(&opts.output, "output", "o", config.DefaultOutput, "output directory")
	f.StringVarP(&opts.prefix, "prefix", "p", "", "prefix for every output file name")
	f.StringVarP(&opts.configFile, "config", "c", "", "HCL or YAML config file")
	f.StringVar(&opts.defaultSection, "default-section", "general", "section for entries without one")
	f.StringVar(&opts.syntax, "syntax", "auto", "comment syntax: auto, block or line")
	f.BoolVar(&opts.strict, "strict", false, "treat warnings as fatal")
	f.IntVar(&opts.jobs, "jobs", 0, "files read concurrently (0 = one per CPU)")
	f.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	f.BoolVar(&opts.logJSON, "log-json", false, "log as JSON")

	lf := cmd.Flags()
	lf.BoolVar(&opts.check, "check", false, "compare with the output directory instead of writing; exit 3 on differences")
	lf.StringVar(&opts.metricsFile, "metrics-file", "", "write run metrics in Prometheus text format to this file")
	lf.BoolVar(&opts.watch, "watch", false, "re-run whenever an input file changes")

	cmd.AddCommand(newPreviewCmd(opts))
	return cmd
}

// resolve builds the run configuration: defaults, then the config file,
// then flags that were set explicitly, then positional inputs.
func (o *rootOptions) resolve(cmd *cobra.Command, args []string) (*config.Config, error) {
	level, err := logging.ParseLevel(o.logLevel)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindConfig, "invalid --log-level")
	}
	logging.SetDefault(logging.New(logging.Config{Level: level, Output: o.stderr, JSON: o.logJSON}))

	cfg := config.Default()
	if o.configFile != "" {
		if cfg, err = config.LoadFile(o.configFile); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("title") {
		cfg.Title = o.title
	}
	if flags.Changed("output") {
		cfg.Output = o.output
	}
	if flags.Changed("prefix") {
		cfg.Prefix = o.prefix
	}
	if flags.Changed("default-section") {
		cfg.DefaultSection = o.defaultSection
	}
	if flags.Changed("syntax") {
		cfg.Syntax = o.syntax
	}
	if flags.Changed("strict") {
		cfg.Strict = o.strict
	}
	if flags.Changed("jobs") {
		cfg.Jobs = o.jobs
	}

	inputs, err := expandArgs(args)
	if err != nil {
		return nil, err
	}
	cfg.Inputs = append(cfg.Inputs, inputs...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// expandArgs expands wildcards. A pattern that matches nothing is kept as
// is, so the missing file is reported like any unreadable input.
func expandArgs(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[") {
			out = append(out, arg)
			continue
		}
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, errors.Wrapf(err, errors.KindConfig, "bad pattern %q", arg)
		}
		if len(matches) == 0 {
			out = append(out, arg)
			continue
		}
		out = append(out, matches...)
	}
	return out, nil
}

func (o *rootOptions) pipelineOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		Inputs:         cfg.Inputs,
		Syntax:         cfg.CommentSyntax(),
		DefaultSection: cfg.DefaultSection,
		Render:         render.Options{Title: cfg.Title, Prefix: cfg.Prefix},
		Strict:         cfg.Strict,
		Jobs:           cfg.Jobs,
		OutputDir:      cfg.Output,
		Check:          o.check,
	}
}

// generate runs the pipeline once and reports its diagnostics.
func (o *rootOptions) generate(ctx context.Context, cfg *config.Config) error {
	popts := o.pipelineOptions(cfg)
	var reg *metrics.Registry
	if o.metricsFile != "" {
		reg = metrics.NewRegistry()
		popts.Metrics = reg
	}

	res, runErr := pipeline.Run(ctx, popts)
	if err := diag.Report(o.stderr, res.Diagnostics); err != nil {
		return err
	}
	for _, d := range res.Drifts {
		fmt.Fprint(o.stdout, d.Diff)
	}

	if reg != nil {
		if err := reg.WriteTextfile(o.metricsFile); err != nil {
			err = errors.Wrapf(err, errors.KindOutput, "writing metrics to %s", o.metricsFile)
			if runErr == nil {
				return err
			}
			logging.Default().WithError(err).Error("metrics not written")
		}
	}

	if runErr != nil && len(res.Diagnostics) > 0 && errors.GetKind(runErr) != errors.KindDrift {
		return reported(runErr)
	}
	return runErr
}


