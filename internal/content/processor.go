// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package content

import (
	"grimm.is/docwriter/internal/diag"
	"grimm.is/docwriter/internal/errors"
	"grimm.is/docwriter/internal/logging"
	"grimm.is/docwriter/internal/source"
)

// DefaultSectionName receives entries with neither an explicit nor an inferred section.
const DefaultSectionName = "general"

// ErrFinished is returned by AddBlocks and Finish once Finish has run.
var ErrFinished = errors.New(errors.KindInternal, "content processor already finished")

// Options configures a Processor.
type Options struct {
	DefaultSection string
	Logger         *logging.Logger
}

// Processor accumulates blocks and produces a Model.
//
// A Processor is not safe for concurrent use. Blocks must be added in the
// order their files were given, since that order decides merge order and
// the order of sections and entries.
type Processor struct {
	opts     Options
	log      *logging.Logger
	finished bool

	entries []*Entry
	byName  map[string]*Entry

	sections    []string
	sectionSeen map[string]bool

	// per-file state
	lastEntry   map[string]*Entry
	lastSection map[string]string

	orphans []*source.Block
	diags   diag.List
}

// NewProcessor returns an empty Processor.
func NewProcessor(opts Options) *Processor {
	if opts.DefaultSection == "" {
		opts.DefaultSection = DefaultSectionName
	}
	lg := opts.Logger
	if lg == nil {
		lg = logging.WithComponent("content")
	}
	return &Processor{
		opts:        opts,
		log:         lg,
		byName:      make(map[string]*Entry),
		sectionSeen: make(map[string]bool),
		lastEntry:   make(map[string]*Entry),
		lastSection: make(map[string]string),
	}
}

// AddBlocks merges the blocks of one file. It never fails on bad content;
// problems become diagnostics on the finished model.
func (p *Processor) AddBlocks(file string, blocks []*source.Block) error {
	if p.finished {
		return ErrFinished
	}
	for _, b := range blocks {
		switch b.Variant {
		case source.VariantSectionHeader:
			p.addSectionHeader(file, b)
		case source.VariantEntry:
			p.addEntry(file, b)
		default:
			p.addContinuation(file, b)
		}
	}
	p.log.Debug("blocks added", "file", file, "blocks", len(blocks), "entries", len(p.entries))
	return nil
}

func (p *Processor) addSectionHeader(file string, b *source.Block) {
	e, ok := p.byName[b.Name]
	switch {
	case !ok:
		e = p.newEntry(b, LevelSection)
		e.Section = b.Name
		p.declareSection(b.Name)
	case e.Level != LevelSection:
		p.diags.Warnf(diag.CodeKindConflict, b.NamePos,
			"%q is declared as a section here but as a %s at %s; keeping %s", b.Name, e.Kind, e.Pos, e.Kind)
	}
	p.merge(e, b)
	p.lastEntry[file] = e
	if e.Level == LevelSection {
		p.lastSection[file] = e.Name
	}
}

func (p *Processor) addEntry(file string, b *source.Block) {
	e, ok := p.byName[b.Name]
	if !ok {
		e = p.newEntry(b, LevelItem)
	} else if e.Level == LevelSection || e.Kind != b.Kind {
		p.diags.Warnf(diag.CodeKindConflict, b.NamePos,
			"%q is declared as a %s here but as a %s at %s; keeping %s", b.Name, b.Kind, e.Kind, e.Pos, e.Kind)
	}

	if e.Level == LevelItem {
		if b.Section != "" {
			switch {
			case e.explicit == "":
				e.explicit, e.explicitPos = b.Section, b.SectionPos
				p.declareSection(b.Section)
			case e.explicit != b.Section:
				p.diags.Warnf(diag.CodeSectionConflict, b.SectionPos,
					"%q is assigned to section %q here but to %q at %s; keeping %q",
					e.Name, b.Section, e.explicit, e.explicitPos, e.explicit)
			}
		}
		if e.context == "" {
			e.context = p.lastSection[file]
		}
	}

	p.merge(e, b)
	p.lastEntry[file] = e
}

func (p *Processor) addContinuation(file string, b *source.Block) {
	e := p.lastEntry[file]
	if e == nil {
		p.orphans = append(p.orphans, b)
		return
	}
	p.merge(e, b)
}

func (p *Processor) newEntry(b *source.Block, level Level) *Entry {
	e := &Entry{Name: b.Name, Level: level, Kind: b.Kind, Pos: b.NamePos}
	p.entries = append(p.entries, e)
	p.byName[e.Name] = e
	return e
}

func (p *Processor) merge(e *Entry, b *source.Block) {
	e.Blocks = append(e.Blocks, b)
	e.Chunks = append(e.Chunks, b.Chunks...)
	e.Fields = append(e.Fields, b.Fields...)
	if e.Title == "" {
		e.Title = b.Title
	}
}

func (p *Processor) declareSection(name string) {
	if p.sectionSeen[name] {
		return
	}
	p.sectionSeen[name] = true
	p.sections = append(p.sections, name)
}

// Finish assigns sections, resolves references and freezes the result.
// It may be called once; later calls return ErrFinished.
func (p *Processor) Finish() (*Model, error) {
	if p.finished {
		return nil, ErrFinished
	}
	p.finished = true

	m := &Model{
		bySect: make(map[string]*Section),
		byName: p.byName,
	}

	for _, e := range p.entries {
		if e.Level != LevelItem {
			continue
		}
		switch {
		case e.explicit != "":
			e.Section = e.explicit
		case e.context != "":
			e.Section = e.context
		default:
			e.Section = p.opts.DefaultSection
			p.declareSection(e.Section)
		}
	}

	for _, name := range p.sections {
		s := &Section{Name: name}
		if e, ok := p.byName[name]; ok && e.Level == LevelSection {
			s.Entry = e
		}
		m.sections = append(m.sections, s)
		m.bySect[name] = s
	}
	for _, e := range p.entries {
		if e.Level == LevelItem {
			s := m.bySect[e.Section]
			s.Entries = append(s.Entries, e)
		}
	}
	m.entries = p.entries

	m.targets = p.resolve()

	for _, b := range p.orphans {
		p.diags.Warnf(diag.CodeOrphanedBlock, b.Pos(),
			"%s block has no preceding entry in %s; dropped", b.Variant, b.File)
	}
	if len(p.entries) == 0 {
		p.diags.Fatalf(diag.CodeNoContent, diag.Pos{}, "no documentation entries found in the input")
	}
	m.diags = p.diags

	p.log.Debug("model finished",
		"sections", len(m.sections), "entries", len(m.entries), "diagnostics", len(m.diags))
	return m, nil
}
