// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package source

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"grimm.is/docwriter/internal/diag"
)

func TestParseInline(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Span
	}{
		{
			name: "plain",
			in:   "just text",
			want: []Span{{Kind: SpanText, Text: "just text"}},
		},
		{
			name: "reference with trailing period",
			in:   "See @Gadget.",
			want: []Span{
				{Kind: SpanText, Text: "See "},
				{Kind: SpanRef, Text: "Gadget"},
				{Kind: SpanText, Text: "."},
			},
		},
		{
			name: "dotted reference",
			in:   "@pkg.Type_2 here",
			want: []Span{
				{Kind: SpanRef, Text: "pkg.Type_2"},
				{Kind: SpanText, Text: " here"},
			},
		},
		{
			name: "email is not a reference",
			in:   "mail dev@example.com",
			want: []Span{{Kind: SpanText, Text: "mail dev@example.com"}},
		},
		{
			name: "code span hides markup",
			in:   "call `f(@x, *y*)` now",
			want: []Span{
				{Kind: SpanText, Text: "call "},
				{Kind: SpanCode, Text: "f(@x, *y*)"},
				{Kind: SpanText, Text: " now"},
			},
		},
		{
			name: "double backtick code",
			in:   "``a`b``",
			want: []Span{{Kind: SpanCode, Text: "a`b"}},
		},
		{
			name: "emphasis and strong",
			in:   "*soft* and **hard** and _under_",
			want: []Span{
				{Kind: SpanEmphasis, Text: "soft"},
				{Kind: SpanText, Text: " and "},
				{Kind: SpanStrong, Text: "hard"},
				{Kind: SpanText, Text: " and "},
				{Kind: SpanEmphasis, Text: "under"},
			},
		},
		{
			name: "snake case survives",
			in:   "use max_line_length",
			want: []Span{{Kind: SpanText, Text: "use max_line_length"}},
		},
		{
			name: "unclosed markup is literal",
			in:   "a * b and `tick",
			want: []Span{{Kind: SpanText, Text: "a * b and `tick"}},
		},
		{
			name: "lone at sign",
			in:   "@ 3",
			want: []Span{{Kind: SpanText, Text: "@ 3"}},
		},
	}

	ignorePos := cmpopts.IgnoreFields(Span{}, "Pos")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseInline(tt.in, diag.Pos{File: "f", Line: 1})
			if diff := cmp.Diff(tt.want, got, ignorePos); diff != "" {
				t.Errorf("ParseInline(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestParseInlinePositions(t *testing.T) {
	pos := diag.Pos{File: "w.c", Line: 42}
	for _, s := range ParseInline("x @Y z", pos) {
		if s.Pos != pos {
			t.Errorf("span %q has pos %v, want %v", s.Text, s.Pos, pos)
		}
	}
}

func TestSpanString(t *testing.T) {
	spans := ParseInline("See @Gadget and `code`.", diag.Pos{})
	if got := SpanString(spans); got != "See Gadget and code." {
		t.Errorf("SpanString = %q", got)
	}
}

func TestValidName(t *testing.T) {
	for _, ok := range []string{"x", "_x", "width", "a.b", "arr[0]", "kebab-case", "X9"} {
		if !ValidName(ok) {
			t.Errorf("ValidName(%q) = false", ok)
		}
	}
	for _, bad := range []string{"", "9x", "a b", "bad!", "-x", ".x", "né"} {
		if ValidName(bad) {
			t.Errorf("ValidName(%q) = true", bad)
		}
	}
}


