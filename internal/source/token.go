// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package source

import (
	"strings"

	"grimm.is/docwriter/internal/diag"
)

// Kind classifies a token.
type Kind int

const (
	Invalid      Kind = iota
	CommentOpen       // start of a documentation block
	CommentClose      // end of a documentation block, explicit or implicit
	CommentLine       // comment line with no text; separates paragraphs
	MarkupMarker      // "@tag: value"
	FieldItem         // ":name: description"
	CodeFence         // ``` or ~~~ line, opening or closing
	CodeLine          // verbatim line inside a fence
	PlainText         // any other text inside a block
)

var kindNames = [...]string{
	Invalid:      "invalid",
	CommentOpen:  "comment-open",
	CommentClose: "comment-close",
	CommentLine:  "comment-line",
	MarkupMarker: "markup-marker",
	FieldItem:    "field-item",
	CodeFence:    "code-fence",
	CodeLine:     "code-line",
	PlainText:    "plain-text",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "invalid"
	}
	return kindNames[k]
}

// Token is one classified line of a documentation block.
type Token struct {
	Kind Kind
	// Text is the payload with comment decoration removed. Leading blanks are
	// removed too, except for CodeLine where indentation is significant.
	Text string
	// Marker is the lower-cased tag of a MarkupMarker, the field name of a
	// FieldItem, and the fence delimiter of an opening CodeFence.
	Marker string
	// Indent is the column of the first non-blank character after decoration.
	Indent int
	// Spans holds the inline markup of Text for PlainText, FieldItem and
	// MarkupMarker tokens.
	Spans []Span
	Pos   diag.Pos
}

// Markup tags. Declaring tags name the entry a block documents.
const (
	TagSection     = "section"
	TagEntry       = "entry"
	TagTitle       = "title"
	TagAbstract    = "abstract"
	TagDescription = "description"
	TagFields      = "fields"
)

var declaringTags = map[string]bool{
	TagSection: true,
	TagEntry:   true,
	"type":     true,
	"struct":   true,
	"enum":     true,
	"union":    true,
	"function": true,
	"macro":    true,
	"constant": true,
	"variable": true,
}

var contentTags = map[string]bool{
	TagTitle:       true,
	TagAbstract:    true,
	TagDescription: true,
	TagFields:      true,
	"params":       true,
	"values":       true,
	"input":        true,
	"output":       true,
	"return":       true,
	"note":         true,
	"example":      true,
	"since":        true,
	"deprecated":   true,
	"see":          true,
}

// fieldGroupTags may hold field lists; a field under any other tag is filed under "fields".
var fieldGroupTags = map[string]bool{
	TagFields: true,
	"params":  true,
	"values":  true,
	"input":   true,
	"output":  true,
	"return":  true,
}

// IsDeclaring reports whether tag names the entry of its block.
func IsDeclaring(tag string) bool {
	return declaringTags[tag]
}

// IsKnownTag reports whether "@tag:" is a markup marker rather than text.
func IsKnownTag(tag string) bool {
	return declaringTags[tag] || contentTags[tag]
}

// ValidName reports whether s is a well-formed field name:
// a letter or underscore followed by letters, digits, '_', '.', '-', '[' or ']'.
func ValidName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_' || isLetter(c):
		case i > 0 && (isDigit(c) || strings.IndexByte(".-[]", c) >= 0):
		default:
			return false
		}
	}
	return true
}

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
