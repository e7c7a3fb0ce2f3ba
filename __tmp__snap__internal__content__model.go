// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package content merges extracted blocks from many files into a model of
// sections and entries and resolves the cross-references between them.
//
// Aggregation has two phases. A Processor accepts blocks file by file in the
// caller's order, then Finish assigns sections, orders everything, resolves
// references and returns the frozen Model. The renderer only accepts a Model,
// so nothing can be rendered before Finish has run.
package content

import (
	"slices"

	"grimm.is/docwriter/internal/diag"
	"grimm.is/docwriter/internal/source"
)

// Level tells section-level entries from item-level ones.
type Level int

const (
	LevelItem Level = iota
	LevelSection
)

func (l Level) String() string {
	if l == LevelSection {
		return "section"
	}
	return "item"
}

// Ref is one cross-reference made by an entry.
type Ref struct {
	Name   string // as written after '@'
	Pos    diag.Pos
	Target string // name of the resolved entry, empty when unresolved
}

// Resolved reports whether the reference has a target.
func (r Ref) Resolved() bool { return r.Target != "" }

// Entry is one documented thing, merged from every block that declares or
// continues it.
type Entry struct {
	Name  string
	Level Level
	Kind  string // declaring tag of the first declaration
	// Section is the owning section. A section-level entry owns itself.
	Section string
	Title   string
	Pos     diag.Pos // first declaration

	Blocks []*source.Block
	Chunks []source.Chunk
	Fields []source.Field

	Refs       []Ref
	Unresolved []string // distinct unresolved names in first-use order

	explicit    string // first explicit @section
	explicitPos diag.Pos
	context     string // section of the last header in the declaring file
}

// DisplayTitle returns the title, falling back to the name.
func (e *Entry) DisplayTitle() string {
	if e.Title != "" {
		return e.Title
	}
	return e.Name
}

// ChunksByTag returns the merged chunks carrying tag, in arrival order.
func (e *Entry) ChunksByTag(tag string) []source.Chunk {
	var out []source.Chunk
	for _, c := range e.Chunks {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// Section groups entries under one name.
type Section struct {
	Name string
	// Entry is the section-level entry describing the section, nil when the
	// section was only named by @section fields or is the default section.
	Entry   *Entry
	Entries []*Entry
}

// Title returns the section title, falling back to its name.
func (s *Section) Title() string {
	if s.Entry != nil {
		return s.Entry.DisplayTitle()
	}
	return s.Name
}

// Abstract returns the abstract elements of the section header, if any.
func (s *Section) Abstract() []source.Element {
	if s.Entry == nil {
		return nil
	}
	var out []source.Element
	for _, c := range s.Entry.ChunksByTag(source.TagAbstract) {
		out = append(out, c.Elements...)
	}
	return out
}

// Model is the finished, read-only result of aggregation. Only
// Processor.Finish constructs one. Accessors return fresh slices; the
// entries and sections they point to must be treated as read-only.
type Model struct {
	sections []*Section
	bySect   map[string]*Section
	entries  []*Entry
	byName   map[string]*Entry
	targets  map[string]*Entry // reference name -> resolved entry
	diags    diag.List
}

// Sections returns the sections in display order.
func (m *Model) Sections() []*Section {
	return slices.Clone(m.sections)
}

// Section looks a section up by name.
func (m *Model) Section(name string) (*Section, bool) {
	s, ok := m.bySect[name]
	return s, ok
}

// Entries returns every entry in declaration order.
func (m *Model) Entries() []*Entry {
	return slices.Clone(m.entries)
}

// Lookup finds an entry by its exact name.
func (m *Model) Lookup(name string) (*Entry, bool) {
	e, ok := m.byName[name]
	return e, ok
}

// Resolve returns the entry a reference name resolved to during Finish.
func (m *Model) Resolve(name string) (*Entry, bool) {
	e, ok := m.targets[name]
	return e, ok
}

// Diagnostics returns the aggregation diagnostics.
func (m *Model) Diagnostics() diag.List {
	return slices.Clone(m.diags)
}

// Stats summarizes a model for logging and metrics.
type Stats struct {
	Sections   int
	Entries    int
	Refs       int
	Unresolved int
}

// Stats counts sections, entries and references.
func (m *Model) Stats() Stats {
	st := Stats{Sections: len(m.sections), Entries: len(m.entries)}
	for _, e := range m.entries {
		st.Refs += len(e.Refs)
		for _, r := range e.Refs {
			if !r.Resolved() {
				st.Unresolved++
			}
		}
	}
	return st
}


