// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package source

import (
	"strings"

	"grimm.is/docwriter/internal/diag"
)

// SpanKind classifies inline markup.
type SpanKind int

const (
	SpanText SpanKind = iota
	SpanCode
	SpanEmphasis
	SpanStrong
	SpanRef
)

func (k SpanKind) String() string {
	switch k {
	case SpanCode:
		return "code"
	case SpanEmphasis:
		return "emphasis"
	case SpanStrong:
		return "strong"
	case SpanRef:
		return "ref"
	default:
		return "text"
	}
}

// Span is an inline run of text. For SpanRef, Text is the referenced name.
type Span struct {
	Kind SpanKind
	Text string
	Pos  diag.Pos
}

// ParseInline splits one line of text into spans.
//
// Recognized markup: `code`, **strong**, *emphasis*, _emphasis_ (only at word
// boundaries, so snake_case survives) and @Name cross-references, where Name
// is a dotted identifier not preceded by a word character. Anything that does
// not close on the same line is kept as literal text.
func ParseInline(text string, pos diag.Pos) []Span {
	p := inlineParser{text: text, pos: pos}
	p.run()
	return p.spans
}

type inlineParser struct {
	text  string
	pos   diag.Pos
	spans []Span
	buf   strings.Builder
}

func (p *inlineParser) run() {
	s := p.text
	for i := 0; i < len(s); {
		if n := p.markup(i); n > 0 {
			i += n
			continue
		}
		p.buf.WriteByte(s[i])
		i++
	}
	p.flush()
}

// markup tries to consume markup starting at i and returns its length.
func (p *inlineParser) markup(i int) int {
	s := p.text
	switch s[i] {
	case '`':
		n := run(s, i, '`')
		end := strings.Index(s[i+n:], s[i:i+n])
		if end < 0 {
			return 0
		}
		code := s[i+n : i+n+end]
		if len(code) > 1 && code[0] == ' ' && code[len(code)-1] == ' ' {
			code = code[1 : len(code)-1]
		}
		if code == "" {
			return 0
		}
		p.emit(SpanCode, code)
		return n + end + n

	case '*':
		if strings.HasPrefix(s[i:], "**") {
			if body, ok := delimited(s, i+2, "**"); ok {
				p.emit(SpanStrong, body)
				return len(body) + 4
			}
			return 0
		}
		if body, ok := delimited(s, i+1, "*"); ok {
			p.emit(SpanEmphasis, body)
			return len(body) + 2
		}

	case '_':
		if i > 0 && isWordByte(s[i-1]) {
			return 0
		}
		body, ok := delimited(s, i+1, "_")
		if !ok {
			return 0
		}
		if after := i + 1 + len(body) + 1; after < len(s) && isWordByte(s[after]) {
			return 0
		}
		p.emit(SpanEmphasis, body)
		return len(body) + 2

	case '@':
		if i > 0 && (isWordByte(s[i-1]) || s[i-1] == '@') {
			return 0
		}
		name := refName(s[i+1:])
		if name == "" {
			return 0
		}
		p.emit(SpanRef, name)
		return len(name) + 1
	}
	return 0
}

func (p *inlineParser) emit(kind SpanKind, text string) {
	p.flush()
	p.spans = append(p.spans, Span{Kind: kind, Text: text, Pos: p.pos})
}

func (p *inlineParser) flush() {
	if p.buf.Len() == 0 {
		return
	}
	p.spans = append(p.spans, Span{Kind: SpanText, Text: p.buf.String(), Pos: p.pos})
	p.buf.Reset()
}

// delimited returns the text between start and the next delim, if that text
// is non-empty and neither starts nor ends with a blank.
func delimited(s string, start int, delim string) (string, bool) {
	if start >= len(s) {
		return "", false
	}
	end := strings.Index(s[start:], delim)
	if end <= 0 {
		return "", false
	}
	body := s[start : start+end]
	if body[0] == ' ' || body[len(body)-1] == ' ' {
		return "", false
	}
	return body, true
}

// refName returns the dotted identifier at the start of s.
func refName(s string) string {
	n := ident(s)
	if n == 0 {
		return ""
	}
	for n < len(s) && s[n] == '.' {
		m := ident(s[n+1:])
		if m == 0 {
			break
		}
		n += 1 + m
	}
	return s[:n]
}

func ident(s string) int {
	if s == "" || !(s[0] == '_' || isLetter(s[0])) {
		return 0
	}
	n := 1
	for n < len(s) && (s[n] == '_' || isLetter(s[n]) || isDigit(s[n])) {
		n++
	}
	return n
}

func run(s string, i int, c byte) int {
	n := 0
	for i+n < len(s) && s[i+n] == c {
		n++
	}
	return n
}

// isWordByte treats every non-ASCII byte as a letter.
func isWordByte(c byte) bool {
	return c == '_' || isLetter(c) || isDigit(c) || c >= 0x80
}

// SpanString concatenates the visible text of spans.
func SpanString(spans []Span) string {
	var sb strings.Builder
	for _, s := range spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}
