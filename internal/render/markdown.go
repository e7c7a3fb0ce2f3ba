// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package render

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"grimm.is/docwriter/internal/content"
	"grimm.is/docwriter/internal/source"
)

// Chunks with these tags are written without a label.
var unlabeled = map[string]bool{
	source.TagDescription: true,
	source.TagAbstract:    true,
}

// docWriter writes the Markdown of one document.
type docWriter struct {
	sb    strings.Builder
	name  string
	r     *Renderer
	title cases.Caser
}

func (r *Renderer) newWriter(name string) *docWriter {
	return &docWriter{name: name, r: r, title: cases.Title(language.English)}
}

func (w *docWriter) bytes() []byte {
	return []byte(strings.TrimRight(w.sb.String(), "\n") + "\n")
}

func (w *docWriter) printf(format string, args ...any) {
	fmt.Fprintf(&w.sb, format, args...)
}

// writeEntry writes an item entry with its anchor and heading.
func (w *docWriter) writeEntry(e *content.Entry) {
	_, anchor := w.r.layout.target(e)
	w.printf("<a id=\"%s\"></a>\n\n", anchor)
	w.printf("## %s\n\n", escapeText(e.Name))
	if e.Kind != source.TagEntry {
		w.printf("*%s*\n\n", e.Kind)
	}
	if e.Title != "" {
		w.printf("**%s**\n\n", escapeText(e.Title))
	}
	w.writeChunks(e.Chunks, nil)
	w.writeFields(e.Fields)
}

// writeChunks writes chunks grouped by tag in order of first appearance.
// Tags in skip are left out.
func (w *docWriter) writeChunks(chunks []source.Chunk, skip map[string]bool) {
	var tags []string
	byTag := make(map[string][]source.Chunk)
	for _, c := range chunks {
		if skip[c.Tag] || len(c.Elements) == 0 {
			continue
		}
		if _, ok := byTag[c.Tag]; !ok {
			tags = append(tags, c.Tag)
		}
		byTag[c.Tag] = append(byTag[c.Tag], c)
	}

	for _, tag := range tags {
		if !unlabeled[tag] {
			w.printf("**%s**\n\n", w.title.String(tag))
		}
		for _, c := range byTag[tag] {
			w.writeElements(c.Elements)
		}
	}
}

func (w *docWriter) writeElements(elems []source.Element) {
	for _, el := range elems {
		switch el.Kind {
		case source.CodeBlock:
			w.writeCode(el)
		default:
			w.printf("%s\n\n", escapeLineStart(w.inline(el.Spans)))
		}
	}
}

func (w *docWriter) writeCode(el source.Element) {
	fence := "```"
	for _, line := range el.Lines {
		for strings.Contains(line, fence) {
			fence += "`"
		}
	}
	w.printf("%s%s\n", fence, el.Lang)
	for _, line := range el.Lines {
		w.printf("%s\n", line)
	}
	w.printf("%s\n\n", fence)
}

// writeFields writes one table per field group, groups in order of first appearance.
func (w *docWriter) writeFields(fields []source.Field) {
	var groups []string
	byGroup := make(map[string][]source.Field)
	for _, f := range fields {
		if _, ok := byGroup[f.Group]; !ok {
			groups = append(groups, f.Group)
		}
		byGroup[f.Group] = append(byGroup[f.Group], f)
	}

	for _, g := range groups {
		w.printf("**%s**\n\n", w.title.String(g))
		w.printf("| Name | Description |\n")
		w.printf("|------|-------------|\n")
		for _, f := range byGroup[g] {
			desc := strings.ReplaceAll(w.inline(f.Spans), "|", `\|`)
			w.printf("| %s | %s |\n", codeSpan(f.Name), desc)
		}
		w.printf("\n")
	}
}

// inline renders spans. Resolved references become links, unresolved ones
// are emphasized.
func (w *docWriter) inline(spans []source.Span) string {
	var sb strings.Builder
	for _, s := range spans {
		switch s.Kind {
		case source.SpanCode:
			sb.WriteString(codeSpan(s.Text))
		case source.SpanEmphasis:
			sb.WriteString("*" + escapeText(s.Text) + "*")
		case source.SpanStrong:
			sb.WriteString("**" + escapeText(s.Text) + "**")
		case source.SpanRef:
			if e, ok := w.r.model.Resolve(s.Text); ok {
				fmt.Fprintf(&sb, "[%s](%s)", escapeText(s.Text), w.r.layout.link(w.name, e))
			} else {
				sb.WriteString("*" + escapeText(s.Text) + "*")
			}
		default:
			sb.WriteString(escapeText(s.Text))
		}
	}
	return sb.String()
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"`", "\\`",
)

// escapeText escapes the characters Markdown would read as inline markup.
func escapeText(s string) string {
	return escaper.Replace(s)
}

// escapeLineStart keeps a paragraph from being read as a heading or list.
func escapeLineStart(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '#', '-', '+', '=':
		return `\` + s
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')') {
		return s[:i] + `\` + s[i:]
	}
	return s
}

// codeSpan wraps s in enough backticks to hold any backticks inside it.
func codeSpan(s string) string {
	longest, n := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == '`' {
			n++
			longest = max(longest, n)
		} else {
			n = 0
		}
	}
	ticks := strings.Repeat("`", longest+1)
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		return ticks + " " + s + " " + ticks
	}
	return ticks + s + ticks
}
