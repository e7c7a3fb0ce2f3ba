// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/docwriter/internal/testutil"
)

const widgetSrc = `/**
 * @section: widgets
 * @title: Widgets
 * Things with knobs.
 */

/**
 * @type: Widget
 * A widget. See @Gadget.
 */

/**
 * @type: Gadget
 * A gadget.
 */
`

type cli struct {
	stdout, stderr bytes.Buffer
	code           int
}

func runCLI(t *testing.T, args ...string) *cli {
	t.Helper()
	c := &cli{}
	c.code = run(context.Background(), args, &c.stdout, &c.stderr)
	return c
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteFile(t, dir, "widget.c", widgetSrc)
	out := filepath.Join(dir, "docs")

	c := runCLI(t, "-t", "Knobs", "-o", out, in)
	require.Equal(t, 0, c.code, c.stderr.String())

	assert.Contains(t, testutil.ReadFile(t, out, "toc.md"), "# Knobs")
	assert.FileExists(t, filepath.Join(out, "index.md"))
	assert.FileExists(t, filepath.Join(out, "widgets.md"))
}

func TestExitCodes(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteFile(t, dir, "widget.c", widgetSrc)
	file := testutil.WriteFile(t, dir, "not-a-dir", "")

	tests := []struct {
		name string
		args []string
		code int
		msg  string
	}{
		{"no inputs", []string{"-o", filepath.Join(dir, "out")}, 1, "no-input"},
		{"unknown flag", []string{"--bogus", in}, 2, "unknown flag"},
		{"bad syntax", []string{"--syntax", "hash", "-o", filepath.Join(dir, "out"), in}, 2, "syntax"},
		{"bad prefix", []string{"-p", "My Prefix", "-o", filepath.Join(dir, "out"), in}, 2, "prefix"},
		{"bad log level", []string{"--log-level", "loud", in}, 2, "log-level"},
		{"missing config", []string{"-c", filepath.Join(dir, "none.hcl"), in}, 2, "config"},
		{"output is a file", []string{"-o", file, in}, 3, "output"},
		{"no content", []string{"-o", filepath.Join(dir, "out"), file}, 1, "no-content"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := runCLI(t, tt.args...)
			assert.Equal(t, tt.code, c.code)
			assert.Contains(t, c.stderr.String(), tt.msg)
		})
	}
}

func TestStrict(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteFile(t, dir, "widget.c", widgetSrc+"\n/**\n * @type: Lonely\n * See @Nobody.\n */\n")
	out := filepath.Join(dir, "docs")

	c := runCLI(t, "-o", out, in)
	require.Equal(t, 0, c.code, c.stderr.String())
	assert.Contains(t, c.stderr.String(), "unresolved-reference")

	strictOut := filepath.Join(dir, "strict")
	c = runCLI(t, "--strict", "-o", strictOut, in)
	assert.Equal(t, 1, c.code)
	assert.NoFileExists(t, filepath.Join(strictOut, "toc.md"))
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteFile(t, dir, "widget.c", widgetSrc)
	out := filepath.Join(dir, "docs")

	require.Equal(t, 0, runCLI(t, "-o", out, in).code)

	c := runCLI(t, "--check", "-o", out, in)
	assert.Equal(t, 0, c.code, c.stderr.String())
	assert.Empty(t, c.stdout.String())

	testutil.WriteFile(t, dir, "widget.c", widgetSrc+"\n/**\n * @type: Sprocket\n * New.\n */\n")
	c = runCLI(t, "--check", "-o", out, in)
	assert.Equal(t, 3, c.code)
	assert.Contains(t, c.stdout.String(), "+++ b/widgets.md")
	assert.Contains(t, c.stdout.String(), "Sprocket")

	// --check never writes.
	assert.NotContains(t, testutil.ReadFile(t, out, "widgets.md"), "Sprocket")
}

func TestGlobExpansion(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "b.c", "/**\n * @type: Beta\n * B.\n */\n")
	testutil.WriteFile(t, dir, "a.c", "/**\n * @type: Alpha\n * A.\n */\n")
	out := filepath.Join(dir, "docs")

	c := runCLI(t, "-o", out, filepath.Join(dir, "*.c"))
	require.Equal(t, 0, c.code, c.stderr.String())

	doc := testutil.ReadFile(t, out, "general.md")
	assert.Contains(t, doc, "Alpha")
	assert.Contains(t, doc, "Beta")

	c = runCLI(t, "-o", out, filepath.Join(dir, "*.h"))
	assert.Equal(t, 1, c.code)
	assert.Contains(t, c.stderr.String(), "read-error")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "widget.c", widgetSrc)
	cfg := testutil.WriteFile(t, dir, "docwriter.hcl", `
title  = "From Config"
output = "`+filepath.Join(dir, "docs")+`"
prefix = "cfg"
inputs = ["widget.c"]
`)

	c := runCLI(t, "-c", cfg, "-p", "flag")
	require.Equal(t, 0, c.code, c.stderr.String())

	assert.Contains(t, testutil.ReadFile(t, filepath.Join(dir, "docs"), "flag-toc.md"), "# From Config")
	assert.NoFileExists(t, filepath.Join(dir, "docs", "cfg-toc.md"))
}

func TestMetricsFile(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteFile(t, dir, "widget.c", widgetSrc)
	prom := filepath.Join(dir, "docwriter.prom")

	c := runCLI(t, "-o", filepath.Join(dir, "docs"), "--metrics-file", prom, in)
	require.Equal(t, 0, c.code, c.stderr.String())

	assert.Contains(t, testutil.ReadFile(t, dir, "docwriter.prom"), `docwriter_runs_total{status="ok"} 1`)
}

func TestPreview(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteFile(t, dir, "widget.c", widgetSrc)

	c := runCLI(t, "preview", "--style", "notty", "widgets", in)
	require.Equal(t, 0, c.code, c.stderr.String())
	assert.Contains(t, c.stdout.String(), "Widgets")
	assert.Contains(t, c.stdout.String(), "Gadget")
	assert.NoDirExists(t, filepath.Join(dir, "docs"))

	c = runCLI(t, "preview", "--style", "notty", "sprockets", in)
	assert.Equal(t, 2, c.code)
	assert.Contains(t, c.stderr.String(), "widgets")

	c = runCLI(t, "preview")
	assert.Equal(t, 2, c.code)
}

func TestWatch(t *testing.T) {
	old := settle
	settle = 20 * time.Millisecond
	t.Cleanup(func() { settle = old })

	dir := t.TempDir()
	in := testutil.WriteFile(t, dir, "widget.c", widgetSrc)
	out := filepath.Join(dir, "docs")
	doc := filepath.Join(out, "widgets.md")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan int, 1)
	go func() {
		var stdout, stderr bytes.Buffer
		done <- run(ctx, []string{"--watch", "-o", out, in}, &stdout, &stderr)
	}()

	require.Eventually(t, func() bool {
		_, err := os.Stat(doc)
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	testutil.WriteFile(t, dir, "widget.c", widgetSrc+"\n/**\n * @type: Sprocket\n * New.\n */\n")
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(doc)
		return err == nil && bytes.Contains(data, []byte("Sprocket"))
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case code := <-done:
		assert.Equal(t, 0, code)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
