// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package diag records the conditions found while extracting documentation.
//
// A Diagnostic is never an error by itself: the pipeline accumulates them and
// returns them alongside its result, and the caller decides which are fatal.
package diag

import (
	"fmt"
	"strings"

	"grimm.is/docwriter/internal/errors"
)

// Severity of a diagnostic.
type Severity int

const (
	Warning Severity = iota
	Fatal
)

func (s Severity) String() string {
	if s == Fatal {
		return "fatal"
	}
	return "warning"
}

// Code identifies the condition a diagnostic reports.
type Code string

const (
	// Structural
	CodeUnterminatedBlock Code = "unterminated-block"
	CodeMalformedField    Code = "malformed-field"
	CodeMalformedMarker   Code = "malformed-marker"
	CodeEncoding          Code = "encoding"
	CodeRead              Code = "read-error"

	// Model integrity
	CodeKindConflict    Code = "kind-conflict"
	CodeSectionConflict Code = "section-conflict"
	CodeOrphanedBlock   Code = "orphaned-block"
	CodeUnresolvedRef   Code = "unresolved-reference"
	CodeAmbiguousRef    Code = "ambiguous-reference"

	// Configuration and environment
	CodeNoInput   Code = "no-input"
	CodeNoContent Code = "no-content"
	CodeOutput    Code = "output"
)

// Pos is a location in an input file. Line is 1-based; zero means unknown.
type Pos struct {
	File string
	Line int
}

func (p Pos) String() string {
	switch {
	case p.File == "":
		return ""
	case p.Line <= 0:
		return p.File
	default:
		return fmt.Sprintf("%s:%d", p.File, p.Line)
	}
}

// Diagnostic is one reported condition.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Pos      Pos
	Message  string
}

// String formats the diagnostic as "file:line: severity: message [code]".
func (d Diagnostic) String() string {
	var sb strings.Builder
	if p := d.Pos.String(); p != "" {
		sb.WriteString(p)
		sb.WriteString(": ")
	}
	sb.WriteString(d.Severity.String())
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	sb.WriteString(" [")
	sb.WriteString(string(d.Code))
	sb.WriteString("]")
	return sb.String()
}

// List is an ordered collection of diagnostics. The zero value is ready to use.
type List []Diagnostic

// Add appends diagnostics.
func (l *List) Add(d ...Diagnostic) {
	*l = append(*l, d...)
}

// Warnf records a warning.
func (l *List) Warnf(code Code, pos Pos, format string, args ...any) {
	l.Add(Diagnostic{Severity: Warning, Code: code, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// Fatalf records a fatal diagnostic.
func (l *List) Fatalf(code Code, pos Pos, format string, args ...any) {
	l.Add(Diagnostic{Severity: Fatal, Code: code, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// HasFatal reports whether any diagnostic is fatal.
func (l List) HasFatal() bool {
	for _, d := range l {
		if d.Severity == Fatal {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics with the given code.
func (l List) Count(code Code) int {
	n := 0
	for _, d := range l {
		if d.Code == code {
			n++
		}
	}
	return n
}

// Filter returns the diagnostics matching keep, in order.
func (l List) Filter(keep func(Diagnostic) bool) List {
	var out List
	for _, d := range l {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// Warnings returns the non-fatal diagnostics.
func (l List) Warnings() List {
	return l.Filter(func(d Diagnostic) bool { return d.Severity == Warning })
}

// Err converts the list into an error. With strict set, warnings are fatal too.
// The error kind follows the first fatal code: no-input is KindInput, output is
// KindOutput, everything else KindContent.
func (l List) Err(strict bool) error {
	var first *Diagnostic
	n := 0
	for i := range l {
		if l[i].Severity == Fatal || strict {
			if first == nil {
				first = &l[i]
			}
			n++
		}
	}
	if first == nil {
		return nil
	}

	kind := errors.KindContent
	switch first.Code {
	case CodeNoInput:
		kind = errors.KindInput
	case CodeOutput:
		kind = errors.KindOutput
	}
	err := errors.Errorf(kind, "%d fatal diagnostic(s), first: %s", n, first)
	return errors.Attr(err, "code", string(first.Code))
}
