// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package source

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"regexp"
	"strings"

	"grimm.is/docwriter/internal/diag"
)

// Syntax selects which comment forms open a documentation block.
type Syntax int

const (
	SyntaxAuto  Syntax = iota // both forms
	SyntaxBlock               // /** ... */
	SyntaxLine                // runs of /// lines
)

func (s Syntax) String() string {
	switch s {
	case SyntaxBlock:
		return "block"
	case SyntaxLine:
		return "line"
	default:
		return "auto"
	}
}

// ParseSyntax parses "auto", "block" or "line".
func ParseSyntax(s string) (Syntax, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return SyntaxAuto, nil
	case "block":
		return SyntaxBlock, nil
	case "line":
		return SyntaxLine, nil
	}
	return SyntaxAuto, fmt.Errorf("unknown comment syntax %q (want auto, block or line)", s)
}

const tabWidth = 4

var (
	markerRe = regexp.MustCompile(`^@([A-Za-z][A-Za-z0-9_-]*):\s*(.*)$`)
	fieldRe  = regexp.MustCompile(`^:([^:\s][^:]*):(?:\s+(.*))?$`)
)

type lexState int

const (
	outside lexState = iota
	inBlock
	inLineBlock
)

// Lexer turns the text of one file into tokens, one line at a time.
// It is single-pass: once drained it yields nothing more.
type Lexer struct {
	file   string
	sc     *bufio.Scanner
	syntax Syntax
	diags  *diag.List

	line    int
	state   lexState
	openPos diag.Pos
	fence   string // delimiter of the open code fence
	fenceAt int    // indent of the open code fence
	queue   []Token
	done    bool
}

// NewLexer returns a lexer reading r. Warnings are appended to diags.
func NewLexer(file string, r io.Reader, syntax Syntax, diags *diag.List) *Lexer {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Lexer{file: file, sc: sc, syntax: syntax, diags: diags}
}

// Next returns the next token, or false once the input is exhausted.
func (l *Lexer) Next() (Token, bool) {
	for len(l.queue) == 0 {
		if l.done {
			return Token{}, false
		}
		l.scan()
	}
	tok := l.queue[0]
	l.queue = l.queue[1:]
	return tok, true
}

// All yields the remaining tokens. Ranging over it a second time yields nothing.
func (l *Lexer) All() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for {
			tok, ok := l.Next()
			if !ok || !yield(tok) {
				return
			}
		}
	}
}

func (l *Lexer) pos() diag.Pos {
	return diag.Pos{File: l.file, Line: l.line}
}

func (l *Lexer) emit(tok Token) {
	if tok.Pos == (diag.Pos{}) {
		tok.Pos = l.pos()
	}
	l.queue = append(l.queue, tok)
}

func (l *Lexer) scan() {
	if !l.sc.Scan() {
		if err := l.sc.Err(); err != nil {
			l.diags.Warnf(diag.CodeRead, l.pos(), "reading stopped: %v", err)
		}
		l.eof()
		l.done = true
		return
	}
	l.line++
	raw := expandTabs(l.sc.Text())

	switch l.state {
	case outside:
		l.outside(raw)
	case inBlock:
		l.block(raw)
	case inLineBlock:
		l.lineBlock(raw)
	}
}

func (l *Lexer) outside(raw string) {
	trimmed := strings.TrimSpace(raw)

	if l.syntax != SyntaxLine && strings.HasPrefix(trimmed, "/**") {
		rest := strings.TrimLeft(trimmed[2:], "*")
		if strings.HasPrefix(rest, "/") {
			return // /**/ or a banner of stars
		}
		l.open(inBlock)
		if end := strings.Index(rest, "*/"); end >= 0 {
			l.closing(rest[:end])
			return
		}
		if strings.TrimSpace(rest) != "" {
			l.content(strings.TrimPrefix(rest, " "))
		}
		return
	}

	if l.syntax != SyntaxBlock && isLineComment(trimmed) {
		l.open(inLineBlock)
		l.content(lineCommentBody(trimmed))
	}
}

func (l *Lexer) block(raw string) {
	trimmed := strings.TrimSpace(raw)

	if strings.HasPrefix(trimmed, "/**") && !strings.HasPrefix(strings.TrimLeft(trimmed[2:], "*"), "/") {
		l.diags.Warnf(diag.CodeUnterminatedBlock, l.openPos,
			"documentation block is not closed before the next block at line %d", l.line)
		l.close()
		l.outside(raw)
		return
	}
	if end := strings.Index(raw, "*/"); end >= 0 {
		l.closing(raw[:end])
		return
	}
	l.content(stripDecoration(raw))
}

func (l *Lexer) lineBlock(raw string) {
	trimmed := strings.TrimSpace(raw)
	if isLineComment(trimmed) {
		l.content(lineCommentBody(trimmed))
		return
	}
	// The first line that is not a /// comment ends the block.
	l.line--
	l.close()
	l.line++
	l.outside(raw)
}

func (l *Lexer) eof() {
	switch l.state {
	case inBlock:
		l.diags.Warnf(diag.CodeUnterminatedBlock, l.openPos,
			"documentation block is not closed before end of file")
		l.close()
	case inLineBlock:
		l.close()
	}
}

func (l *Lexer) open(state lexState) {
	l.state = state
	l.openPos = l.pos()
	l.emit(Token{Kind: CommentOpen})
}

// closing handles the text before "*/" on a block's last line.
func (l *Lexer) closing(before string) {
	body := strings.TrimRight(stripDecoration(before), " *")
	if strings.TrimSpace(body) != "" {
		l.content(body)
	}
	l.close()
}

func (l *Lexer) close() {
	if l.fence != "" {
		l.diags.Warnf(diag.CodeUnterminatedBlock, l.pos(), "code fence is not closed before the end of its block")
		l.fence = ""
	}
	l.state = outside
	l.emit(Token{Kind: CommentClose})
}

// content classifies one line of block text with its decoration removed.
func (l *Lexer) content(body string) {
	text := strings.TrimLeft(body, " ")
	indent := len(body) - len(text)
	text = strings.TrimRight(text, " ")

	if l.fence != "" {
		if indent <= l.fenceAt+3 && strings.HasPrefix(text, l.fence) && strings.Trim(text, l.fence[:1]) == "" {
			l.fence = ""
			l.emit(Token{Kind: CodeFence, Indent: indent})
			return
		}
		l.emit(Token{Kind: CodeLine, Text: dedent(body, l.fenceAt), Indent: indent})
		return
	}

	if text == "" || strings.Trim(text, "*") == "" {
		l.emit(Token{Kind: CommentLine, Indent: indent})
		return
	}

	if strings.HasPrefix(text, "```") || strings.HasPrefix(text, "~~~") {
		delim := text[:run(text, 0, text[0])]
		l.fence = delim
		l.fenceAt = indent
		l.emit(Token{Kind: CodeFence, Text: strings.TrimSpace(text[len(delim):]), Marker: delim, Indent: indent})
		return
	}

	if m := markerRe.FindStringSubmatch(text); m != nil {
		if tag := strings.ToLower(m[1]); IsKnownTag(tag) {
			l.emit(Token{Kind: MarkupMarker, Text: m[2], Marker: tag, Indent: indent, Spans: ParseInline(m[2], l.pos())})
			return
		}
	}

	if m := fieldRe.FindStringSubmatch(text); m != nil {
		l.emit(Token{Kind: FieldItem, Text: m[2], Marker: m[1], Indent: indent, Spans: ParseInline(m[2], l.pos())})
		return
	}

	l.emit(Token{Kind: PlainText, Text: text, Indent: indent, Spans: ParseInline(text, l.pos())})
}

// stripDecoration removes leading blanks and one leading '*' (plus one blank)
// from a line inside a /** block.
func stripDecoration(raw string) string {
	s := strings.TrimLeft(raw, " ")
	if strings.HasPrefix(s, "*") {
		s = strings.TrimPrefix(s[1:], " ")
		return s
	}
	return raw
}

func isLineComment(trimmed string) bool {
	return strings.HasPrefix(trimmed, "///") && !strings.HasPrefix(trimmed, "////")
}

func lineCommentBody(trimmed string) string {
	return strings.TrimPrefix(trimmed[3:], " ")
}

func dedent(s string, n int) string {
	i := 0
	for i < n && i < len(s) && s[i] == ' ' {
		i++
	}
	return strings.TrimRight(s[i:], " ")
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var sb strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := tabWidth - col%tabWidth
			sb.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		sb.WriteRune(r)
		col++
	}
	return sb.String()
}


