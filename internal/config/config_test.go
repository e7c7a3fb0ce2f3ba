// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/docwriter/internal/errors"
	"grimm.is/docwriter/internal/source"
	"grimm.is/docwriter/internal/testutil"
)

func writeFile(t *testing.T, name, body string) string {
	return testutil.WriteFile(t, t.TempDir(), name, body)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "Project", cfg.Title)
	assert.Equal(t, "docs", cfg.Output)
	assert.Equal(t, "general", cfg.DefaultSection)
	assert.Equal(t, source.SyntaxAuto, cfg.CommentSyntax())
	assert.NoError(t, cfg.Validate())
}

func TestLoadHCL(t *testing.T) {
	path := writeFile(t, "docwriter.hcl", `
title           = "My Project"
output          = "docs/api"
prefix          = "mp"
syntax          = "block"
strict          = true
jobs            = 4
inputs          = ["src/a.c", "/abs/b.c"]
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "My Project", cfg.Title)
	assert.Equal(t, "docs/api", cfg.Output)
	assert.Equal(t, "mp", cfg.Prefix)
	assert.Equal(t, "general", cfg.DefaultSection, "unset keys keep defaults")
	assert.Equal(t, source.SyntaxBlock, cfg.CommentSyntax())
	assert.True(t, cfg.Strict)
	assert.Equal(t, 4, cfg.Jobs)
	assert.Equal(t, []string{filepath.Join(filepath.Dir(path), "src/a.c"), "/abs/b.c"}, cfg.Inputs)
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "docwriter.yaml", `
title: Widget Kit
default_section: misc
syntax: line
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Widget Kit", cfg.Title)
	assert.Equal(t, "misc", cfg.DefaultSection)
	assert.Equal(t, "docs", cfg.Output)
	assert.Equal(t, source.SyntaxLine, cfg.CommentSyntax())
}

func TestLoadUnknownExtensionFallsBackToYAML(t *testing.T) {
	path := writeFile(t, "docwriter.conf", "title: Fallback\n")
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Fallback", cfg.Title)
}

func TestLoadEmptyYAML(t *testing.T) {
	cfg, err := LoadFile(writeFile(t, "empty.yml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name, file, body string
	}{
		{"unknown hcl attribute", "c.hcl", `colour = "red"`},
		{"bad hcl", "c.hcl", `title = `},
		{"unknown yaml key", "c.yaml", "colour: red\n"},
		{"wrong yaml type", "c.yaml", "jobs: many\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeFile(t, tt.file, tt.body))
			require.Error(t, err)
			assert.Equal(t, errors.KindConfig, errors.GetKind(err))
			assert.Equal(t, 2, errors.ExitCode(err))
		})
	}

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.hcl"))
	assert.Equal(t, errors.KindConfig, errors.GetKind(err))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Title = " "
	cfg.Prefix = "My Prefix"
	cfg.Syntax = "javadoc"
	cfg.Jobs = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, errors.KindConfig, errors.GetKind(err))

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	var fields []string
	for _, v := range verrs {
		fields = append(fields, v.Field)
	}
	assert.Equal(t, []string{"title", "prefix", "syntax", "jobs"}, fields)
}

func TestMerge(t *testing.T) {
	cfg := Default()
	cfg.Inputs = []string{"a.c"}
	cfg.Merge(&Config{Prefix: "x", Inputs: []string{"b.c"}})
	assert.Equal(t, "x", cfg.Prefix)
	assert.Equal(t, "Project", cfg.Title)
	assert.Equal(t, []string{"a.c", "b.c"}, cfg.Inputs)

	cfg.Merge(nil)
	assert.Equal(t, "x", cfg.Prefix)
}
