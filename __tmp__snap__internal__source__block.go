// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package source

import (
	"bytes"
	"iter"
	"strings"

	"grimm.is/docwriter/internal/diag"
)

// Variant is the closed set of block shapes.
type Variant int

const (
	// VariantProse is untagged text continuing the previous entry of its file.
	VariantProse Variant = iota
	// VariantSectionHeader declares a section with "@section: name".
	VariantSectionHeader
	// VariantEntry declares an entry with a declaring tag such as "@type: name".
	VariantEntry
	// VariantField carries field lists for the previous entry of its file.
	VariantField
)

func (v Variant) String() string {
	switch v {
	case VariantSectionHeader:
		return "section-header"
	case VariantEntry:
		return "entry"
	case VariantField:
		return "field"
	default:
		return "prose"
	}
}

// ElementKind classifies chunk content.
type ElementKind int

const (
	Paragraph ElementKind = iota
	CodeBlock
)

// Element is a paragraph or a code block.
type Element struct {
	Kind  ElementKind
	Spans []Span   // Paragraph
	Lang  string   // CodeBlock
	Lines []string // CodeBlock
	Pos   diag.Pos
}

// Chunk is the content that follows one markup tag.
type Chunk struct {
	Tag      string
	Elements []Element
	Pos      diag.Pos
}

// Field is one ":name: description" item.
type Field struct {
	Group string // tag of the enclosing chunk: fields, params, values, ...
	Name  string
	Spans []Span
	Pos   diag.Pos
}

// Block is one documentation comment.
type Block struct {
	File    string
	Line    int
	EndLine int
	Variant Variant

	// Kind is the declaring tag ("section", "type", "function", ...), empty
	// for prose and field blocks. Name is the declared name.
	Kind    string
	Name    string
	NamePos diag.Pos

	// Section is an explicit "@section:" field inside an entry block.
	Section    string
	SectionPos diag.Pos

	Title  string
	Chunks []Chunk
	Fields []Field
	Tokens []Token
}

// Pos returns the position of the block's opening line.
func (b *Block) Pos() diag.Pos {
	return diag.Pos{File: b.File, Line: b.Line}
}

// Refs returns every cross-reference span of the block, chunks first.
func (b *Block) Refs() []Span {
	var refs []Span
	for _, c := range b.Chunks {
		for _, e := range c.Elements {
			for _, s := range e.Spans {
				if s.Kind == SpanRef {
					refs = append(refs, s)
				}
			}
		}
	}
	for _, f := range b.Fields {
		for _, s := range f.Spans {
			if s.Kind == SpanRef {
				refs = append(refs, s)
			}
		}
	}
	return refs
}

// Blocks groups a token stream into blocks. Blocks without any content
// (decorative banners) are dropped. Like the token stream, the result is
// single-pass.
func Blocks(tokens iter.Seq[Token], diags *diag.List) iter.Seq[*Block] {
	return func(yield func(*Block) bool) {
		var bb *builder
		for tok := range tokens {
			switch tok.Kind {
			case CommentOpen:
				bb = newBuilder(tok, diags)
			case CommentClose:
				if bb == nil {
					continue
				}
				b := bb.finish(tok)
				bb = nil
				if b != nil && !yield(b) {
					return
				}
			default:
				if bb != nil {
					bb.add(tok)
				}
			}
		}
	}
}

// ParseFile decodes, tokenizes and extracts all blocks of one file.
func ParseFile(file string, data []byte, syntax Syntax, diags *diag.List) []*Block {
	data = Decode(file, data, diags)
	lex := NewLexer(file, bytes.NewReader(data), syntax, diags)
	var blocks []*Block
	for b := range Blocks(lex.All(), diags) {
		blocks = append(blocks, b)
	}
	return blocks
}

type builder struct {
	b     *Block
	diags *diag.List

	tag      string // current content tag
	chunk    int    // index of the open chunk, -1 if none
	para     int    // index of the open paragraph in the chunk, -1 if none
	code     int    // index of the open code block in the chunk, -1 if none
	field    int    // index of the open field, -1 if none
	fieldCol int

	expect    string // tag waiting for its value on the next text line
	expectPos diag.Pos
}

func newBuilder(open Token, diags *diag.List) *builder {
	return &builder{
		b: &Block{
			File:   open.Pos.File,
			Line:   open.Pos.Line,
			Tokens: []Token{open},
		},
		diags: diags,
		tag:   TagDescription,
		chunk: -1,
		para:  -1,
		code:  -1,
		field: -1,
	}
}

func (bb *builder) add(tok Token) {
	bb.b.Tokens = append(bb.b.Tokens, tok)

	switch tok.Kind {
	case MarkupMarker:
		bb.marker(tok)
	case FieldItem:
		if !ValidName(tok.Marker) {
			bb.diags.Warnf(diag.CodeMalformedField, tok.Pos,
				"field name %q contains characters outside [A-Za-z0-9_.[]-]; treated as text", tok.Marker)
			text := ":" + tok.Marker + ":"
			if tok.Text != "" {
				text += " " + tok.Text
			}
			bb.text(Token{Kind: PlainText, Text: text, Indent: tok.Indent, Pos: tok.Pos, Spans: ParseInline(text, tok.Pos)})
			return
		}
		bb.fieldItem(tok)
	case PlainText:
		bb.text(tok)
	case CommentLine:
		bb.para = -1
	case CodeFence:
		bb.fence(tok)
	case CodeLine:
		if bb.code >= 0 {
			c := &bb.b.Chunks[bb.chunk].Elements[bb.code]
			c.Lines = append(c.Lines, tok.Text)
		}
	}
}

func (bb *builder) marker(tok Token) {
	bb.endText()
	bb.expect = ""
	tag, value := tok.Marker, strings.TrimSpace(tok.Text)

	if IsDeclaring(tag) {
		switch {
		case bb.b.Kind == "":
			bb.b.Kind = tag
			bb.declare(tag, value, tok.Pos)
		case tag == TagSection && bb.b.Kind != TagSection:
			bb.declare(tag, value, tok.Pos)
		default:
			bb.diags.Warnf(diag.CodeMalformedMarker, tok.Pos,
				"block already declares %s %q; @%s ignored", bb.b.Kind, bb.b.Name, tag)
		}
		return
	}

	if tag == TagTitle {
		if value == "" {
			bb.expect, bb.expectPos = tag, tok.Pos
		} else {
			bb.b.Title = value
		}
		return
	}

	bb.tag = tag
	bb.openChunk(tok.Pos)
	if value != "" {
		bb.appendPara(tok.Spans, tok.Pos)
	}
}

// declare records a declared name, or waits for it on the next text line.
func (bb *builder) declare(tag, value string, pos diag.Pos) {
	if value == "" {
		bb.expect, bb.expectPos = tag, pos
		return
	}
	bb.setName(tag, firstWord(value), pos)
}

func (bb *builder) setName(tag, name string, pos diag.Pos) {
	if tag == TagSection && bb.b.Kind != TagSection {
		bb.b.Section, bb.b.SectionPos = name, pos
		return
	}
	bb.b.Name, bb.b.NamePos = name, pos
}

func (bb *builder) fieldItem(tok Token) {
	bb.endText()
	group := bb.tag
	if !fieldGroupTags[group] {
		group = TagFields
	}
	bb.b.Fields = append(bb.b.Fields, Field{
		Group: group,
		Name:  tok.Marker,
		Spans: joinSpans(nil, tok.Spans, tok.Pos),
		Pos:   tok.Pos,
	})
	bb.field = len(bb.b.Fields) - 1
	bb.fieldCol = tok.Indent
}

func (bb *builder) text(tok Token) {
	if bb.expect != "" {
		tag := bb.expect
		bb.expect = ""
		if tag == TagTitle {
			bb.b.Title = tok.Text
		} else {
			bb.setName(tag, firstWord(tok.Text), tok.Pos)
		}
		return
	}

	if bb.field >= 0 && tok.Indent > bb.fieldCol {
		f := &bb.b.Fields[bb.field]
		f.Spans = joinSpans(f.Spans, tok.Spans, tok.Pos)
		return
	}
	bb.field = -1
	bb.appendPara(tok.Spans, tok.Pos)
}

func (bb *builder) fence(tok Token) {
	if tok.Marker == "" {
		bb.code = -1
		return
	}
	bb.endText()
	bb.openChunkIfNone(tok.Pos)
	c := &bb.b.Chunks[bb.chunk]
	c.Elements = append(c.Elements, Element{Kind: CodeBlock, Lang: tok.Text, Pos: tok.Pos})
	bb.code = len(c.Elements) - 1
}

func (bb *builder) appendPara(spans []Span, pos diag.Pos) {
	bb.openChunkIfNone(pos)
	c := &bb.b.Chunks[bb.chunk]
	if bb.para < 0 {
		c.Elements = append(c.Elements, Element{Kind: Paragraph, Pos: pos})
		bb.para = len(c.Elements) - 1
	}
	p := &c.Elements[bb.para]
	p.Spans = joinSpans(p.Spans, spans, pos)
}

func (bb *builder) openChunk(pos diag.Pos) {
	bb.b.Chunks = append(bb.b.Chunks, Chunk{Tag: bb.tag, Pos: pos})
	bb.chunk = len(bb.b.Chunks) - 1
	bb.para = -1
	bb.code = -1
}

func (bb *builder) openChunkIfNone(pos diag.Pos) {
	if bb.chunk < 0 {
		bb.openChunk(pos)
	}
}

func (bb *builder) endText() {
	bb.para = -1
	bb.field = -1
}

func (bb *builder) finish(closeTok Token) *Block {
	b := bb.b
	b.Tokens = append(b.Tokens, closeTok)
	b.EndLine = closeTok.Pos.Line

	if bb.expect != "" {
		bb.diags.Warnf(diag.CodeMalformedMarker, bb.expectPos, "@%s has no value", bb.expect)
	}
	if b.Kind != "" && b.Name == "" {
		// A declaring marker without a name leaves an undeclared block.
		b.Kind = ""
	}

	switch {
	case b.Kind == TagSection:
		b.Variant = VariantSectionHeader
	case b.Kind != "":
		b.Variant = VariantEntry
	case len(b.Fields) > 0:
		b.Variant = VariantField
	default:
		b.Variant = VariantProse
	}

	if b.Variant == VariantProse && b.Title == "" && b.Section == "" && !hasContent(b.Chunks) {
		return nil
	}
	return b
}

func hasContent(chunks []Chunk) bool {
	for _, c := range chunks {
		if len(c.Elements) > 0 {
			return true
		}
	}
	return false
}

// joinSpans returns a new slice holding prev continued by next.
func joinSpans(prev, next []Span, pos diag.Pos) []Span {
	out := make([]Span, 0, len(prev)+len(next)+1)
	out = append(out, prev...)
	if len(prev) > 0 && len(next) > 0 {
		out = append(out, Span{Kind: SpanText, Text: " ", Pos: pos})
	}
	out = append(out, next...)
	return mergeText(out)
}

// mergeText folds adjacent text spans together.
func mergeText(spans []Span) []Span {
	out := spans[:0]
	for _, s := range spans {
		if n := len(out); n > 0 && s.Kind == SpanText && out[n-1].Kind == SpanText {
			out[n-1].Text += s.Text
			continue
		}
		out = append(out, s)
	}
	return out
}

func firstWord(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return strings.TrimRight(f[0], ",;:")
	}
	return ""
}


