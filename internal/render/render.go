// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package render turns a finished content model into Markdown documents:
// a table of contents, one document per section and an alphabetical index.
//
// Output is a pure function of the model and Options. File names and
// anchors are derived from names with Slug and made unique in model order,
// so re-running on the same input yields byte-identical documents. The
// renderer only produces bytes; writing them is the caller's business.
package render

import (
	"grimm.is/docwriter/internal/content"
	"grimm.is/docwriter/internal/source"
)

// DefaultTitle is used when Options.Title is empty.
const DefaultTitle = "Project"

// Options configures rendering.
type Options struct {
	Title  string
	Prefix string // prepended to every file name as "<prefix>-"
}

// DocKind identifies what a document holds.
type DocKind int

const (
	DocTOC DocKind = iota
	DocIndex
	DocSection
)

func (k DocKind) String() string {
	switch k {
	case DocIndex:
		return "index"
	case DocSection:
		return "section"
	default:
		return "toc"
	}
}

// Document is one rendered output file.
type Document struct {
	Name    string // file name relative to the output directory
	Kind    DocKind
	Section string // section name, for DocSection
	Content []byte
}

// Renderer renders one model. It never modifies the model.
type Renderer struct {
	model  *content.Model
	opts   Options
	layout *layout
}

// New prepares a renderer for m.
func New(m *content.Model, opts Options) *Renderer {
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	return &Renderer{model: m, opts: opts, layout: newLayout(m, opts.Prefix)}
}

// All renders every document: the table of contents, the index, then the
// sections in model order.
func (r *Renderer) All() []Document {
	docs := []Document{r.TOC(), r.Index()}
	for _, s := range r.model.Sections() {
		docs = append(docs, r.section(s))
	}
	return docs
}

// Section renders the document of the named section.
func (r *Renderer) Section(name string) (Document, bool) {
	s, ok := r.model.Section(name)
	if !ok {
		return Document{}, false
	}
	return r.section(s), true
}

// FileOf returns the file and anchor where the named entry is documented.
func (r *Renderer) FileOf(name string) (file, anchor string, ok bool) {
	e, ok := r.model.Lookup(name)
	if !ok {
		return "", "", false
	}
	file, anchor = r.layout.target(e)
	return file, anchor, true
}

// TOC renders the table of contents.
func (r *Renderer) TOC() Document {
	w := r.newWriter(r.layout.toc)
	w.printf("# %s\n\n", escapeText(r.opts.Title))
	w.printf("## Contents\n\n")
	for _, s := range r.model.Sections() {
		w.printf("- [%s](%s)", escapeText(s.Title()), r.layout.files[s.Name])
		if abs := s.Abstract(); len(abs) > 0 {
			w.printf(": %s", w.inline(joinParagraphs(abs)))
		}
		w.printf("\n")
	}
	w.printf("\nSee the [index](%s) for every entry in alphabetical order.\n", r.layout.index)
	return Document{Name: r.layout.toc, Kind: DocTOC, Content: w.bytes()}
}

func (r *Renderer) section(s *content.Section) Document {
	name := r.layout.files[s.Name]
	w := r.newWriter(name)
	w.printf("# %s\n\n", escapeText(s.Title()))
	w.printf("[Contents](%s) | [Index](%s)\n\n", r.layout.toc, r.layout.index)

	if s.Entry != nil {
		w.writeChunks(s.Entry.ChunksByTag(source.TagAbstract), nil)
		w.writeChunks(s.Entry.Chunks, map[string]bool{source.TagAbstract: true})
		w.writeFields(s.Entry.Fields)
	}
	for _, e := range s.Entries {
		w.writeEntry(e)
	}
	return Document{Name: name, Kind: DocSection, Section: s.Name, Content: w.bytes()}
}

// joinParagraphs flattens paragraphs into one line of spans. Code blocks
// are skipped.
func joinParagraphs(elems []source.Element) []source.Span {
	var out []source.Span
	for _, el := range elems {
		if el.Kind != source.Paragraph {
			continue
		}
		if len(out) > 0 {
			out = append(out, source.Span{Kind: source.SpanText, Text: " "})
		}
		out = append(out, el.Spans...)
	}
	return out
}
