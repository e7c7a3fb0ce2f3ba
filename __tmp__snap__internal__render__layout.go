// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package render

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"grimm.is/docwriter/internal/content"
)

const (
	tocBase   = "toc"
	indexBase = "index"
)

// Slug folds s to lower-case ASCII: accents are stripped after NFKD
// decomposition, [a-z0-9_] is kept and every other run becomes one '-'.
// An empty result is replaced by fallback.
func Slug(s, fallback string) string {
	var sb strings.Builder
	gap := false
	for _, r := range strings.ToLower(foldMarks(s)) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' {
			if gap && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			gap = false
			sb.WriteRune(r)
			continue
		}
		gap = true
	}
	if sb.Len() == 0 {
		return fallback
	}
	return sb.String()
}

// foldMarks decomposes s and drops the combining marks.
func foldMarks(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	if folded, _, err := transform.String(t, s); err == nil {
		return folded
	}
	return s
}

// namer hands out unique names, suffixing -2, -3, ... on collision.
type namer map[string]bool

func (n namer) claim(base string) string {
	name := base
	for i := 2; n[name]; i++ {
		name = fmt.Sprintf("%s-%d", base, i)
	}
	n[name] = true
	return name
}

// layout is the file and anchor assignment for one model. It depends only
// on the model and the prefix.
type layout struct {
	prefix  string
	toc     string
	index   string
	files   map[string]string         // section name -> file name
	anchors map[*content.Entry]string // item entry -> anchor in its section file
}

func newLayout(m *content.Model, prefix string) *layout {
	p := ""
	if prefix != "" {
		p = prefix + "-"
	}
	l := &layout{
		prefix:  p,
		toc:     p + tocBase + ".md",
		index:   p + indexBase + ".md",
		files:   make(map[string]string),
		anchors: make(map[*content.Entry]string),
	}

	used := namer{tocBase: true, indexBase: true}
	for _, s := range m.Sections() {
		l.files[s.Name] = p + used.claim(Slug(s.Name, "section")) + ".md"

		ids := namer{}
		for _, e := range s.Entries {
			l.anchors[e] = ids.claim(Slug(e.Name, "entry"))
		}
	}
	return l
}

// target returns where e is documented. Section-level entries have no anchor.
func (l *layout) target(e *content.Entry) (file, anchor string) {
	file = l.files[e.Section]
	if e.Level == content.LevelSection {
		return file, ""
	}
	return file, l.anchors[e]
}

// link returns the destination of a link to e from the document named from.
func (l *layout) link(from string, e *content.Entry) string {
	file, anchor := l.target(e)
	switch {
	case anchor == "":
		return file
	case file == from:
		return "#" + anchor
	default:
		return file + "#" + anchor
	}
}


