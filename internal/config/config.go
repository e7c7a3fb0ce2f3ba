// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package config holds the docwriter run configuration and loads it from
// HCL or YAML files. Command-line flags are applied on top by the caller.
package config

import (
	"fmt"
	"strings"

	"grimm.is/docwriter/internal/content"
	"grimm.is/docwriter/internal/errors"
	"grimm.is/docwriter/internal/render"
	"grimm.is/docwriter/internal/source"
)

// Config is the complete run configuration.
type Config struct {
	Title          string   `hcl:"title,optional" yaml:"title"`
	Output         string   `hcl:"output,optional" yaml:"output"`
	Prefix         string   `hcl:"prefix,optional" yaml:"prefix"`
	DefaultSection string   `hcl:"default_section,optional" yaml:"default_section"`
	Syntax         string   `hcl:"syntax,optional" yaml:"syntax"`
	Strict         bool     `hcl:"strict,optional" yaml:"strict"`
	Jobs           int      `hcl:"jobs,optional" yaml:"jobs"` // 0 means one per CPU
	Inputs         []string `hcl:"inputs,optional" yaml:"inputs"`
}

// DefaultOutput is the output directory used when none is configured.
const DefaultOutput = "docs"

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Title:          render.DefaultTitle,
		Output:         DefaultOutput,
		DefaultSection: content.DefaultSectionName,
		Syntax:         source.SyntaxAuto.String(),
	}
}

// Merge copies every non-zero value of o over c. Inputs are appended.
func (c *Config) Merge(o *Config) {
	if o == nil {
		return
	}
	if o.Title != "" {
		c.Title = o.Title
	}
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.Prefix != "" {
		c.Prefix = o.Prefix
	}
	if o.DefaultSection != "" {
		c.DefaultSection = o.DefaultSection
	}
	if o.Syntax != "" {
		c.Syntax = o.Syntax
	}
	if o.Strict {
		c.Strict = true
	}
	if o.Jobs != 0 {
		c.Jobs = o.Jobs
	}
	c.Inputs = append(c.Inputs, o.Inputs...)
}

// ValidationError is one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every setting and returns a KindConfig error listing all
// problems, or nil.
func (c *Config) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, ValidationError{"title", "must not be empty"})
	}
	if strings.TrimSpace(c.Output) == "" {
		errs = append(errs, ValidationError{"output", "must not be empty"})
	}
	if c.Prefix != "" && render.Slug(c.Prefix, "") != c.Prefix {
		errs = append(errs, ValidationError{"prefix", fmt.Sprintf("%q may only use [a-z0-9_] and single '-' between them", c.Prefix)})
	}
	if strings.TrimSpace(c.DefaultSection) == "" {
		errs = append(errs, ValidationError{"default_section", "must not be empty"})
	}
	if _, err := source.ParseSyntax(c.Syntax); err != nil {
		errs = append(errs, ValidationError{"syntax", err.Error()})
	}
	if c.Jobs < 0 {
		errs = append(errs, ValidationError{"jobs", "must not be negative"})
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Wrap(errs, errors.KindConfig, "invalid configuration")
}

// CommentSyntax returns the parsed Syntax setting. Call Validate first.
func (c *Config) CommentSyntax() source.Syntax {
	s, _ := source.ParseSyntax(c.Syntax)
	return s
}
