// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/docwriter/internal/diag"
	"grimm.is/docwriter/internal/errors"
	"grimm.is/docwriter/internal/metrics"
	"grimm.is/docwriter/internal/render"
	"grimm.is/docwriter/internal/testutil"
)

const srcA = `/**
 * @section: widgets
 * @title: Widgets
 */

/**
 * @type: Widget
 * From a. See @Gadget.
 */
`

const srcB = `/**
 * @type: Widget
 * From b.
 */
`

func inputs(dir string, names ...string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = filepath.Join(dir, n)
	}
	return out
}

func TestRunWritesDocuments(t *testing.T) {
	in := testutil.WriteFiles(t, map[string]string{"a.src": srcA, "b.src": srcB})
	out := filepath.Join(t.TempDir(), "docs")
	reg := metrics.NewRegistry()

	res, err := Run(context.Background(), Options{
		Inputs:    inputs(in, "a.src", "b.src"),
		Render:    render.Options{Title: "Kit"},
		OutputDir: out,
		Metrics:   reg,
	})
	require.NoError(t, err)
	assert.True(t, res.Written)
	assert.False(t, res.Diagnostics.HasFatal())
	assert.Equal(t, 1, res.Diagnostics.Count(diag.CodeUnresolvedRef))

	for _, name := range []string{"toc.md", "index.md", "widgets.md"} {
		assert.FileExists(t, filepath.Join(out, name))
	}
	widgets := testutil.ReadFile(t, out, "widgets.md")
	assert.Contains(t, widgets, "*Gadget*")
	assert.Less(t, strings.Index(widgets, "From a."), strings.Index(widgets, "From b."))

	assert.Equal(t, 1.0, promtest.ToFloat64(reg.Runs.WithLabelValues("ok")))
	assert.Equal(t, 2.0, promtest.ToFloat64(reg.Files.WithLabelValues("read")))
	assert.Equal(t, 3.0, promtest.ToFloat64(reg.Documents))
}

func TestRunMergeOrderFollowsInputOrder(t *testing.T) {
	in := testutil.WriteFiles(t, map[string]string{"a.src": srcA, "b.src": srcB})

	res, err := Run(context.Background(), Options{Inputs: inputs(in, "b.src", "a.src")})
	require.NoError(t, err)
	var widgets string
	for _, d := range res.Documents {
		if d.Name == "widgets.md" {
			widgets = string(d.Content)
		}
	}
	require.NotEmpty(t, widgets)
	assert.Less(t, strings.Index(widgets, "From b."), strings.Index(widgets, "From a."))
}

func TestRunIsDeterministic(t *testing.T) {
	files := map[string]string{"a.src": srcA, "b.src": srcB}
	for i := range 20 {
		files[filepath.Join("x"+strings.Repeat("y", i)+".src")] = "/**\n * @entry: E" + strings.Repeat("e", i) + "\n * Uses @Widget.\n */\n"
	}
	in := testutil.WriteFiles(t, files)
	names := []string{"a.src", "b.src"}
	for i := range 20 {
		names = append(names, "x"+strings.Repeat("y", i)+".src")
	}

	first, err := Run(context.Background(), Options{Inputs: inputs(in, names...), Jobs: 1})
	require.NoError(t, err)
	second, err := Run(context.Background(), Options{Inputs: inputs(in, names...), Jobs: 8})
	require.NoError(t, err)

	require.Equal(t, len(first.Documents), len(second.Documents))
	for i := range first.Documents {
		assert.Equal(t, first.Documents[i].Name, second.Documents[i].Name)
		assert.Equal(t, string(first.Documents[i].Content), string(second.Documents[i].Content))
	}
}

func TestRunNoInputIsFatal(t *testing.T) {
	out := filepath.Join(t.TempDir(), "docs")
	res, err := Run(context.Background(), Options{OutputDir: out})
	require.Error(t, err)
	assert.Equal(t, errors.KindInput, errors.GetKind(err))
	assert.Equal(t, 1, errors.ExitCode(err))
	assert.Equal(t, 1, res.Diagnostics.Count(diag.CodeNoInput))
	assert.Empty(t, res.Documents)
	assert.NoDirExists(t, out)
}

func TestRunNoContentIsFatal(t *testing.T) {
	in := testutil.WriteFiles(t, map[string]string{"plain.c": "int main(void) { return 0; }\n"})
	out := t.TempDir()

	res, err := Run(context.Background(), Options{Inputs: inputs(in, "plain.c"), OutputDir: out})
	require.Error(t, err)
	assert.Equal(t, 1, errors.ExitCode(err))
	assert.Equal(t, 1, res.Diagnostics.Count(diag.CodeNoContent))
	assert.Empty(t, res.Documents)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunUnterminatedBlockStillDocumented(t *testing.T) {
	in := testutil.WriteFiles(t, map[string]string{"u.src": "/**\n * @function: dangling\n * Never closed.\n"})

	res, err := Run(context.Background(), Options{Inputs: inputs(in, "u.src")})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Diagnostics.Count(diag.CodeUnterminatedBlock))

	var all string
	for _, d := range res.Documents {
		all += string(d.Content)
	}
	assert.Contains(t, all, "## dangling")
	assert.Contains(t, all, "Never closed.")
}

func TestRunUnreadableFileIsWarning(t *testing.T) {
	in := testutil.WriteFiles(t, map[string]string{"a.src": srcA})

	res, err := Run(context.Background(), Options{Inputs: inputs(in, "missing.src", "a.src")})
	require.NoError(t, err)
	require.Equal(t, 1, res.Diagnostics.Count(diag.CodeRead))
	assert.Equal(t, filepath.Join(in, "missing.src"), res.Diagnostics[0].Pos.File)
	assert.NotEmpty(t, res.Documents)
}

func TestRunStrictTurnsWarningsFatal(t *testing.T) {
	in := testutil.WriteFiles(t, map[string]string{"a.src": srcA})
	out := t.TempDir()

	res, err := Run(context.Background(), Options{Inputs: inputs(in, "a.src"), Strict: true, OutputDir: out})
	require.Error(t, err)
	assert.Equal(t, 1, errors.ExitCode(err))
	assert.False(t, res.Written)
	assert.NoFileExists(t, filepath.Join(out, "toc.md"))
}

func TestRunCheckMode(t *testing.T) {
	in := testutil.WriteFiles(t, map[string]string{"a.src": srcA, "b.src": srcB})
	out := t.TempDir()
	opts := Options{Inputs: inputs(in, "a.src", "b.src"), OutputDir: out}

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	opts.Check = true
	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Empty(t, res.Drifts)
	assert.False(t, res.Written)

	require.NoError(t, os.WriteFile(filepath.Join(out, "widgets.md"), []byte("edited\n"), 0o644))
	res, err = Run(context.Background(), opts)
	require.Error(t, err)
	assert.Equal(t, errors.KindDrift, errors.GetKind(err))
	assert.Equal(t, 3, errors.ExitCode(err))
	require.Len(t, res.Drifts, 1)
	assert.Equal(t, "widgets.md", res.Drifts[0].Name)
	assert.Equal(t, "edited\n", testutil.ReadFile(t, out, "widgets.md"), "check mode never writes")
}

func TestRunOutputNotWritable(t *testing.T) {
	in := testutil.WriteFiles(t, map[string]string{"a.src": srcA})
	blocker := filepath.Join(t.TempDir(), "docs")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	res, err := Run(context.Background(), Options{Inputs: inputs(in, "a.src"), OutputDir: blocker})
	require.Error(t, err)
	assert.Equal(t, errors.KindOutput, errors.GetKind(err))
	assert.Equal(t, 3, errors.ExitCode(err))
	assert.Equal(t, 1, res.Diagnostics.Count(diag.CodeOutput))
}

func TestRunPrefixAndDefaultSection(t *testing.T) {
	in := testutil.WriteFiles(t, map[string]string{"b.src": srcB})
	res, err := Run(context.Background(), Options{
		Inputs:         inputs(in, "b.src"),
		DefaultSection: "misc",
		Render:         render.Options{Prefix: "wk"},
	})
	require.NoError(t, err)
	var names []string
	for _, d := range res.Documents {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"wk-toc.md", "wk-index.md", "wk-misc.md"}, names)
}


