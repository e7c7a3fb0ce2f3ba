// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package main

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"grimm.is/docwriter/internal/diag"
	"grimm.is/docwriter/internal/errors"
	"grimm.is/docwriter/internal/pipeline"
	"grimm.is/docwriter/internal/render"
)

func newPreviewCmd(root *rootOptions) *cobra.Command {
	var (
		style string
		width int
	)
	cmd := &cobra.Command{
		Use:   "preview [flags] section [file...]",
		Short: "Render one section document to the terminal",
		Long: `preview builds the documentation in memory and prints the document of
one section, formatted for the terminal. Nothing is written to disk.`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New(errors.KindConfig, "preview needs a section name")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.resolve(cmd, args[1:])
			if err != nil {
				return err
			}
			popts := root.pipelineOptions(cfg)
			popts.OutputDir, popts.Check = "", false

			res, runErr := pipeline.Run(cmd.Context(), popts)
			if err := diag.Report(root.stderr, res.Diagnostics); err != nil {
				return err
			}
			if runErr != nil {
				return reported(runErr)
			}

			doc, ok := render.New(res.Model, popts.Render).Section(args[0])
			if !ok {
				var names []string
				for _, s := range res.Model.Sections() {
					names = append(names, s.Name)
				}
				return errors.Errorf(errors.KindConfig, "no section %q (have: %s)", args[0], strings.Join(names, ", "))
			}

			out, err := renderTerminal(doc.Content, style, width)
			if err != nil {
				return err
			}
			_, err = root.stdout.Write(out)
			return err
		},
	}
	cmd.Flags().StringVar(&style, "style", "auto", "glamour style: auto, dark, light, notty, ...")
	cmd.Flags().IntVar(&width, "width", 80, "wrap width")
	return cmd
}

func renderTerminal(markdown []byte, style string, width int) ([]byte, error) {
	styleOpt := glamour.WithStandardStyle(style)
	if style == "auto" {
		styleOpt = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return nil, errors.Wrap(err, errors.KindConfig, "preview renderer")
	}
	out, err := r.RenderBytes(markdown)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, "rendering preview")
	}
	return out, nil
}


