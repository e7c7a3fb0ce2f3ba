// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package source

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/docwriter/internal/diag"
)

func lex(t *testing.T, src string, syntax Syntax) ([]Token, diag.List) {
	t.Helper()
	var diags diag.List
	l := NewLexer("test.c", strings.NewReader(src), syntax, &diags)
	var toks []Token
	for tok := range l.All() {
		toks = append(toks, tok)
	}
	return toks, diags
}

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestLexerBlockComment(t *testing.T) {
	src := `#include <stdio.h>

/**************************************************************************
 *
 * @type: Widget
 *
 * @description:
 *   A widget. See @Gadget.
 *
 * :width: The width.
 */
typedef struct Widget_ Widget;
`
	toks, diags := lex(t, src, SyntaxAuto)
	assert.Empty(t, diags)

	assert.Equal(t, []Kind{
		CommentOpen,
		CommentLine,
		MarkupMarker,
		CommentLine,
		MarkupMarker,
		PlainText,
		CommentLine,
		FieldItem,
		CommentClose,
	}, kinds(toks))

	assert.Equal(t, "type", toks[2].Marker)
	assert.Equal(t, "Widget", toks[2].Text)
	assert.Equal(t, diag.Pos{File: "test.c", Line: 5}, toks[2].Pos)

	assert.Equal(t, "A widget. See @Gadget.", toks[5].Text)
	assert.Equal(t, 2, toks[5].Indent)

	assert.Equal(t, "width", toks[7].Marker)
	assert.Equal(t, "The width.", toks[7].Text)
	assert.Equal(t, 11, toks[8].Pos.Line)
}

func TestLexerDiscardsTextOutsideBlocks(t *testing.T) {
	toks, diags := lex(t, "int x; /* plain comment */\n/**/\n/*****/\n// @type: Nope\n", SyntaxAuto)
	assert.Empty(t, toks)
	assert.Empty(t, diags)
}

func TestLexerOneLineBlock(t *testing.T) {
	toks, _ := lex(t, "/** @entry: Solo */\n", SyntaxBlock)
	require.Equal(t, []Kind{CommentOpen, MarkupMarker, CommentClose}, kinds(toks))
	assert.Equal(t, "Solo", toks[1].Text)
	assert.Equal(t, "entry", toks[1].Marker)
}

func TestLexerUnterminatedAtEOF(t *testing.T) {
	src := "/**\n * @type: Widget\n * Still documented.\n"
	toks, diags := lex(t, src, SyntaxAuto)

	require.Len(t, diags, 1)
	assert.Equal(t, diag.CodeUnterminatedBlock, diags[0].Code)
	assert.Equal(t, diag.Warning, diags[0].Severity)
	assert.Equal(t, diag.Pos{File: "test.c", Line: 1}, diags[0].Pos)

	assert.Equal(t, []Kind{CommentOpen, MarkupMarker, PlainText, CommentClose}, kinds(toks))
}

func TestLexerNewOpenerClosesPrevious(t *testing.T) {
	src := "/**\n * @type: A\n/**\n * @type: B\n */\n"
	toks, diags := lex(t, src, SyntaxAuto)

	require.Equal(t, 1, diags.Count(diag.CodeUnterminatedBlock))
	assert.Equal(t, []Kind{
		CommentOpen, MarkupMarker, CommentClose,
		CommentOpen, MarkupMarker, CommentClose,
	}, kinds(toks))
}

func TestLexerLineComments(t *testing.T) {
	src := "/// @function: run\n///\n/// Runs it.\nfunc run() {}\n/// trailing\n"
	toks, diags := lex(t, src, SyntaxAuto)
	assert.Empty(t, diags, "line blocks close implicitly without a warning")

	assert.Equal(t, []Kind{
		CommentOpen, MarkupMarker, CommentLine, PlainText, CommentClose,
		CommentOpen, PlainText, CommentClose,
	}, kinds(toks))
	assert.Equal(t, 3, toks[4].Pos.Line)
}

func TestLexerSyntaxSelection(t *testing.T) {
	src := "/// @entry: A\n/** @entry: B */\n"

	toks, _ := lex(t, src, SyntaxBlock)
	assert.Equal(t, []Kind{CommentOpen, MarkupMarker, CommentClose}, kinds(toks))
	assert.Equal(t, "B", toks[1].Text)

	toks, _ = lex(t, src, SyntaxLine)
	assert.Equal(t, []Kind{CommentOpen, MarkupMarker, CommentClose}, kinds(toks))
	assert.Equal(t, "A", toks[1].Text)
}

func TestLexerCodeFence(t *testing.T) {
	src := "/**\n * @example:\n *   ```c\n *   w = widget_new(@x, *y*);\n *     indented();\n *   ```\n */\n"
	toks, diags := lex(t, src, SyntaxAuto)
	assert.Empty(t, diags)

	require.Equal(t, []Kind{
		CommentOpen, MarkupMarker, CodeFence, CodeLine, CodeLine, CodeFence, CommentClose,
	}, kinds(toks))
	assert.Equal(t, "c", toks[2].Text)
	assert.Equal(t, "```", toks[2].Marker)
	assert.Equal(t, "w = widget_new(@x, *y*);", toks[3].Text)
	assert.Nil(t, toks[3].Spans, "code lines carry no inline markup")
	assert.Equal(t, "  indented();", toks[4].Text)
	assert.Equal(t, "", toks[5].Marker)
}

func TestLexerUnclosedFence(t *testing.T) {
	src := "/**\n * ```\n * code\n */\n"
	toks, diags := lex(t, src, SyntaxAuto)
	assert.Equal(t, 1, diags.Count(diag.CodeUnterminatedBlock))
	assert.Equal(t, []Kind{CommentOpen, CodeFence, CodeLine, CommentClose}, kinds(toks))
}

func TestLexerUnknownTagIsText(t *testing.T) {
	toks, _ := lex(t, "/**\n * @Widget: is not a tag\n */\n", SyntaxAuto)
	require.Len(t, toks, 3)
	assert.Equal(t, PlainText, toks[1].Kind)
}

func TestLexerIsSinglePass(t *testing.T) {
	var diags diag.List
	l := NewLexer("x.c", strings.NewReader("/** @entry: A */\n"), SyntaxAuto, &diags)

	n := 0
	for range l.All() {
		n++
	}
	assert.Equal(t, 3, n)

	for range l.All() {
		t.Fatal("second pass must yield nothing")
	}
	_, ok := l.Next()
	assert.False(t, ok)
}

func TestLexerTabs(t *testing.T) {
	toks, _ := lex(t, "/**\n *\t:name:\tvalue\n */\n", SyntaxAuto)
	require.Len(t, toks, 3)
	assert.Equal(t, FieldItem, toks[1].Kind)
	assert.Equal(t, "name", toks[1].Marker)
	assert.Equal(t, "value", toks[1].Text)
}

func TestParseSyntax(t *testing.T) {
	for in, want := range map[string]Syntax{"": SyntaxAuto, "AUTO": SyntaxAuto, "block": SyntaxBlock, "line": SyntaxLine} {
		got, err := ParseSyntax(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseSyntax("hash")
	assert.Error(t, err)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "comment-open", CommentOpen.String())
	assert.Equal(t, "plain-text", PlainText.String())
	assert.Equal(t, "invalid", Kind(99).String())
}


