// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package content

import (
	"strings"

	"grimm.is/docwriter/internal/diag"
)

// resolve fills in Refs and Unresolved on every entry and returns the
// reference name to entry table used by the renderer. An exact name wins;
// otherwise a single case-insensitive match is accepted and several are
// reported as ambiguous and left unresolved.
func (p *Processor) resolve() map[string]*Entry {
	folded := make(map[string][]*Entry)
	for _, e := range p.entries {
		k := strings.ToLower(e.Name)
		folded[k] = append(folded[k], e)
	}

	targets := make(map[string]*Entry)
	lookup := func(name string) (*Entry, []*Entry) {
		if e, ok := p.byName[name]; ok {
			return e, nil
		}
		cands := folded[strings.ToLower(name)]
		if len(cands) == 1 {
			return cands[0], nil
		}
		return nil, cands
	}

	for _, e := range p.entries {
		reported := make(map[string]bool)
		for _, b := range e.Blocks {
			for _, span := range b.Refs() {
				ref := Ref{Name: span.Text, Pos: span.Pos}
				target, cands := lookup(span.Text)
				if target != nil {
					ref.Target = target.Name
					targets[span.Text] = target
					e.Refs = append(e.Refs, ref)
					continue
				}
				e.Refs = append(e.Refs, ref)
				if reported[span.Text] {
					continue
				}
				reported[span.Text] = true
				e.Unresolved = append(e.Unresolved, span.Text)
				if len(cands) > 1 {
					p.diags.Warnf(diag.CodeAmbiguousRef, span.Pos,
						"reference @%s in %q matches %s; not linked", span.Text, e.Name, names(cands))
				} else {
					p.diags.Warnf(diag.CodeUnresolvedRef, span.Pos,
						"reference @%s in %q does not name any entry", span.Text, e.Name)
				}
			}
		}
	}
	return targets
}

func names(entries []*Entry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.Name
	}
	return strings.Join(parts, ", ")
}
