// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/docwriter/internal/diag"
	"grimm.is/docwriter/internal/errors"
	"grimm.is/docwriter/internal/source"
)

type file struct {
	name string
	src  string
}

func build(t *testing.T, opts Options, files ...file) *Model {
	t.Helper()
	p := NewProcessor(opts)
	for _, f := range files {
		var diags diag.List
		blocks := source.ParseFile(f.name, []byte(f.src), source.SyntaxAuto, &diags)
		require.Empty(t, diags, "unexpected parse diagnostics in %s", f.name)
		require.NoError(t, p.AddBlocks(f.name, blocks))
	}
	m, err := p.Finish()
	require.NoError(t, err)
	return m
}

func descriptions(e *Entry) []string {
	var out []string
	for _, c := range e.ChunksByTag(source.TagDescription) {
		for _, el := range c.Elements {
			out = append(out, source.SpanString(el.Spans))
		}
	}
	return out
}

func sectionNames(m *Model) []string {
	var out []string
	for _, s := range m.Sections() {
		out = append(out, s.Name)
	}
	return out
}

var (
	widgetA = file{"a.src", `/**
 * @section: widgets
 * @title: Widgets
 * @abstract: Things with knobs.
 */

/**
 * @type: Widget
 * From a. See @Gadget and @Gadget again.
 */
`}
	widgetB = file{"b.src", `/**
 * @type: Widget
 * From b.
 */

/**
 * @function: widget_new
 * Creates a @widget.
 */
`}
)

func TestMergeFollowsFileOrder(t *testing.T) {
	m := build(t, Options{}, widgetA, widgetB)
	w, ok := m.Lookup("Widget")
	require.True(t, ok)
	assert.Equal(t, []string{"From a. See Gadget and Gadget again.", "From b."}, descriptions(w))
	assert.Len(t, w.Blocks, 2)

	m = build(t, Options{}, widgetB, widgetA)
	w, ok = m.Lookup("Widget")
	require.True(t, ok)
	assert.Equal(t, []string{"From b.", "From a. See Gadget and Gadget again."}, descriptions(w))
}

func TestSectionAssignment(t *testing.T) {
	m := build(t, Options{}, widgetA, widgetB)
	assert.Equal(t, []string{"widgets", DefaultSectionName}, sectionNames(m))

	s, ok := m.Section("widgets")
	require.True(t, ok)
	require.NotNil(t, s.Entry)
	assert.Equal(t, "Widgets", s.Title())
	require.Len(t, s.Abstract(), 1)
	assert.Equal(t, "Things with knobs.", source.SpanString(s.Abstract()[0].Spans))
	require.Len(t, s.Entries, 1)
	assert.Equal(t, "Widget", s.Entries[0].Name)

	g, ok := m.Section(DefaultSectionName)
	require.True(t, ok)
	assert.Nil(t, g.Entry)
	assert.Equal(t, DefaultSectionName, g.Title())
	require.Len(t, g.Entries, 1)
	assert.Equal(t, "widget_new", g.Entries[0].Name)
}

func TestCustomDefaultSection(t *testing.T) {
	m := build(t, Options{DefaultSection: "misc"}, widgetB)
	assert.Equal(t, []string{"misc"}, sectionNames(m))
}

func TestUnresolvedReportedOnce(t *testing.T) {
	m := build(t, Options{}, widgetA, widgetB)
	diags := m.Diagnostics()
	require.Equal(t, 1, diags.Count(diag.CodeUnresolvedRef))
	assert.Contains(t, diags.Filter(func(d diag.Diagnostic) bool {
		return d.Code == diag.CodeUnresolvedRef
	})[0].Message, "@Gadget")
	assert.False(t, diags.HasFatal())

	w, _ := m.Lookup("Widget")
	assert.Equal(t, []string{"Gadget"}, w.Unresolved)
	require.Len(t, w.Refs, 2)
	assert.False(t, w.Refs[0].Resolved())

	_, ok := m.Resolve("Gadget")
	assert.False(t, ok)
}

func TestCaseInsensitiveResolution(t *testing.T) {
	m := build(t, Options{}, widgetA, widgetB)
	fn, _ := m.Lookup("widget_new")
	require.Len(t, fn.Refs, 1)
	assert.Equal(t, "Widget", fn.Refs[0].Target)

	target, ok := m.Resolve("widget")
	require.True(t, ok)
	assert.Equal(t, "Widget", target.Name)
}

func TestAmbiguousReference(t *testing.T) {
	m := build(t, Options{}, file{"x.src", `/**
 * @constant: Mode
 */
/**
 * @constant: MODE
 */
/**
 * @function: set
 * Uses @mode but also @Mode.
 */
`})
	diags := m.Diagnostics()
	assert.Equal(t, 1, diags.Count(diag.CodeAmbiguousRef))
	assert.Equal(t, 0, diags.Count(diag.CodeUnresolvedRef))

	set, _ := m.Lookup("set")
	assert.Equal(t, []string{"mode"}, set.Unresolved)
	require.Len(t, set.Refs, 2)
	assert.Equal(t, "Mode", set.Refs[1].Target)
}

func TestContinuationBlocks(t *testing.T) {
	m := build(t, Options{}, file{"c.src", `/**
 * @struct: Point
 */

/**
 * :x: Horizontal.
 * :y: Vertical.
 */

/**
 * Points are immutable.
 */
`})
	pt, ok := m.Lookup("Point")
	require.True(t, ok)
	require.Len(t, pt.Fields, 2)
	assert.Equal(t, "x", pt.Fields[0].Name)
	assert.Equal(t, []string{"Points are immutable."}, descriptions(pt))
	assert.Len(t, pt.Blocks, 3)
}

func TestOrphanedBlock(t *testing.T) {
	m := build(t, Options{},
		file{"a.src", "/**\n * @entry: First\n */\n"},
		file{"b.src", "/**\n * Floating text.\n */\n"},
	)
	diags := m.Diagnostics()
	require.Equal(t, 1, diags.Count(diag.CodeOrphanedBlock))
	orphan := diags.Filter(func(d diag.Diagnostic) bool { return d.Code == diag.CodeOrphanedBlock })[0]
	assert.Equal(t, diag.Pos{File: "b.src", Line: 1}, orphan.Pos)

	first, _ := m.Lookup("First")
	assert.Len(t, first.Blocks, 1)
}

func TestKindConflict(t *testing.T) {
	m := build(t, Options{},
		file{"a.src", "/**\n * @type: Thing\n * One.\n */\n"},
		file{"b.src", "/**\n * @function: Thing\n * Two.\n */\n"},
	)
	assert.Equal(t, 1, m.Diagnostics().Count(diag.CodeKindConflict))
	th, _ := m.Lookup("Thing")
	assert.Equal(t, "type", th.Kind)
	assert.Equal(t, []string{"One.", "Two."}, descriptions(th))
}

func TestSectionHeaderConflictsWithItem(t *testing.T) {
	m := build(t, Options{},
		file{"a.src", "/**\n * @type: Thing\n */\n"},
		file{"b.src", "/**\n * @section: Thing\n */\n/**\n * @entry: Other\n */\n"},
	)
	assert.Equal(t, 1, m.Diagnostics().Count(diag.CodeKindConflict))
	_, ok := m.Section("Thing")
	assert.False(t, ok)
	th, _ := m.Lookup("Thing")
	assert.Equal(t, LevelItem, th.Level)
	assert.Equal(t, []string{DefaultSectionName}, sectionNames(m))
}

func TestExplicitSectionWins(t *testing.T) {
	m := build(t, Options{},
		file{"a.src", `/**
 * @section: core
 */
/**
 * @section: extras
 */
/**
 * @function: run
 * @section: core
 */
/**
 * @function: stop
 */
`},
		file{"b.src", `/**
 * @function: run
 * @section: extras
 */
`},
	)
	run, _ := m.Lookup("run")
	assert.Equal(t, "core", run.Section)
	stop, _ := m.Lookup("stop")
	assert.Equal(t, "extras", stop.Section)
	assert.Equal(t, 1, m.Diagnostics().Count(diag.CodeSectionConflict))
	assert.Equal(t, []string{"core", "extras"}, sectionNames(m))
}

func TestSectionOrderFollowsFirstDeclaration(t *testing.T) {
	m := build(t, Options{},
		file{"a.src", "/**\n * @entry: A\n * @section: zeta\n */\n"},
		file{"b.src", "/**\n * @section: alpha\n */\n/**\n * @entry: B\n */\n"},
	)
	assert.Equal(t, []string{"zeta", "alpha"}, sectionNames(m))
	a, _ := m.Lookup("A")
	assert.Equal(t, "zeta", a.Section)
	zeta, _ := m.Section("zeta")
	assert.Nil(t, zeta.Entry)
}

func TestNoContentIsFatal(t *testing.T) {
	p := NewProcessor(Options{})
	require.NoError(t, p.AddBlocks("empty.src", nil))
	m, err := p.Finish()
	require.NoError(t, err)
	diags := m.Diagnostics()
	assert.True(t, diags.HasFatal())
	assert.Equal(t, 1, diags.Count(diag.CodeNoContent))
	assert.Empty(t, m.Sections())
}

func TestFinishOnce(t *testing.T) {
	p := NewProcessor(Options{})
	_, err := p.Finish()
	require.NoError(t, err)

	_, err = p.Finish()
	assert.True(t, errors.Is(err, ErrFinished))
	assert.True(t, errors.Is(p.AddBlocks("late.src", nil), ErrFinished))
}

func TestModelAccessorsReturnCopies(t *testing.T) {
	m := build(t, Options{}, widgetA, widgetB)
	secs := m.Sections()
	secs[0] = nil
	assert.NotNil(t, m.Sections()[0])

	ents := m.Entries()
	ents[0] = nil
	assert.NotNil(t, m.Entries()[0])

	st := m.Stats()
	assert.Equal(t, Stats{Sections: 2, Entries: 3, Refs: 3, Unresolved: 2}, st)
}
