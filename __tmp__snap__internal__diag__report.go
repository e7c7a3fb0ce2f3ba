// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package diag

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Report writes one line per diagnostic followed by a summary line.
// Colors are only emitted when w is a terminal that supports them.
func Report(w io.Writer, l List) error {
	r := lipgloss.NewRenderer(w)
	posStyle := r.NewStyle().Bold(true)
	warnStyle := r.NewStyle().Foreground(lipgloss.Color("11"))
	fatalStyle := r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	codeStyle := r.NewStyle().Faint(true)

	warnings, fatals := 0, 0
	for _, d := range l {
		sev := warnStyle.Render(d.Severity.String())
		if d.Severity == Fatal {
			sev = fatalStyle.Render(d.Severity.String())
			fatals++
		} else {
			warnings++
		}

		line := fmt.Sprintf("%s: %s %s", sev, d.Message, codeStyle.Render("["+string(d.Code)+"]"))
		if p := d.Pos.String(); p != "" {
			line = posStyle.Render(p) + ": " + line
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if len(l) == 0 {
		return nil
	}
	_, err := fmt.Fprintf(w, "%d warning(s), %d fatal\n", warnings, fatals)
	return err
}


