// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package render

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"grimm.is/docwriter/internal/content"
)

// symbolGroup heads index entries that do not start with a letter.
const symbolGroup = "#"

type indexItem struct {
	entry *content.Entry
	group string
}

// Index renders the alphabetical index of every entry, grouped by initial.
func (r *Renderer) Index() Document {
	items := r.indexItems()

	w := r.newWriter(r.layout.index)
	w.printf("# %s: Index\n\n", escapeText(r.opts.Title))
	w.printf("[Contents](%s)\n\n", r.layout.toc)

	group := ""
	for _, it := range items {
		if it.group != group {
			if group != "" {
				w.printf("\n")
			}
			group = it.group
			w.printf("## %s\n\n", escapeText(group))
		}
		e := it.entry
		s, _ := r.model.Section(e.Section)
		w.printf("- [%s](%s) (%s, %s)\n",
			escapeText(e.Name), r.layout.link(r.layout.index, e), e.Kind, escapeText(s.Title()))
	}
	return Document{Name: r.layout.index, Kind: DocIndex, Content: w.bytes()}
}

// indexItems sorts entries by initial group, then by collation order. Ties
// fall back to byte order of the name and then model order.
func (r *Renderer) indexItems() []indexItem {
	entries := r.model.Entries()
	items := make([]indexItem, len(entries))
	for i, e := range entries {
		items[i] = indexItem{entry: e, group: initial(e.Name)}
	}

	col := collate.New(language.English, collate.Loose)
	slices.SortStableFunc(items, func(a, b indexItem) int {
		if a.group != b.group {
			switch {
			case a.group == symbolGroup:
				return -1
			case b.group == symbolGroup:
				return 1
			}
			if c := col.CompareString(a.group, b.group); c != 0 {
				return c
			}
			return strings.Compare(a.group, b.group)
		}
		if c := col.CompareString(a.entry.Name, b.entry.Name); c != 0 {
			return c
		}
		return strings.Compare(a.entry.Name, b.entry.Name)
	})
	return items
}

// initial returns the upper-case first letter of name with accents removed,
// or symbolGroup.
func initial(name string) string {
	r, _ := utf8.DecodeRuneInString(foldMarks(name))
	if !unicode.IsLetter(r) {
		return symbolGroup
	}
	return string(unicode.ToUpper(r))
}
