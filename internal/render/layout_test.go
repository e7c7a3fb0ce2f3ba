// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package render

import "testing"

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Widgets", "widgets"},
		{"Crème Brûlée", "creme-brulee"},
		{"Hello, World!", "hello-world"},
		{"max_line_length", "max_line_length"},
		{"  spaced  out  ", "spaced-out"},
		{"ＡＢＣ", "abc"},
		{"pkg.Type", "pkg-type"},
		{"!!!", "fallback"},
		{"", "fallback"},
	}
	for _, tt := range tests {
		if got := Slug(tt.in, "fallback"); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNamerClaim(t *testing.T) {
	n := namer{"toc": true}
	for _, want := range []string{"toc-2", "toc-3"} {
		if got := n.claim("toc"); got != want {
			t.Errorf("claim(toc) = %q, want %q", got, want)
		}
	}
	if got := n.claim("other"); got != "other" {
		t.Errorf("claim(other) = %q", got)
	}
}

func TestEscaping(t *testing.T) {
	tests := []struct {
		name, got, want string
	}{
		{"text", escapeText("a*b_c [d] <e> `f` \\"), "a\\*b\\_c \\[d\\] \\<e\\> \\`f\\` \\\\"},
		{"heading", escapeLineStart("# not a heading"), "\\# not a heading"},
		{"list", escapeLineStart("- item"), "\\- item"},
		{"ordered", escapeLineStart("12. twelve"), "12\\. twelve"},
		{"number", escapeLineStart("12 apples"), "12 apples"},
		{"code", codeSpan("x"), "`x`"},
		{"code with tick", codeSpan("a`b"), "``a`b``"},
		{"code edge tick", codeSpan("`x"), "`` `x ``"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}
