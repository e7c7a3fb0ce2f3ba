// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package source

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"grimm.is/docwriter/internal/diag"
)

var bom = []byte("\xef\xbb\xbf")

// Decode returns data as UTF-8 without a byte order mark. Input that is not
// valid UTF-8 is reported and decoded as Windows-1252, which maps every byte.
func Decode(file string, data []byte, diags *diag.List) []byte {
	data = bytes.TrimPrefix(data, bom)
	if utf8.Valid(data) {
		return data
	}

	diags.Warnf(diag.CodeEncoding, diag.Pos{File: file, Line: firstInvalidLine(data)},
		"file is not valid UTF-8; decoded as Windows-1252")

	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return bytes.ToValidUTF8(data, []byte("�"))
	}
	return out
}

func firstInvalidLine(data []byte) int {
	line := 1
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size <= 1 {
			return line
		}
		if r == '\n' {
			line++
		}
		data = data[size:]
	}
	return line
}


