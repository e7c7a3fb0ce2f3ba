// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package output

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"

	"grimm.is/docwriter/internal/errors"
	"grimm.is/docwriter/internal/render"
)

// Drift is a document whose file on disk differs from the rendered bytes.
type Drift struct {
	Name    string
	Missing bool
	Diff    string // unified diff from the file on disk to the rendered document
}

// Check compares docs with the files in dir without writing anything.
// Files in dir that are not among docs are ignored.
func Check(dir string, docs []render.Document) ([]Drift, error) {
	var drifts []Drift
	for _, d := range docs {
		path := filepath.Join(dir, filepath.Base(d.Name))
		old, err := os.ReadFile(path)
		missing := false
		switch {
		case os.IsNotExist(err):
			missing = true
		case err != nil:
			return nil, errors.Wrapf(err, errors.KindOutput, "reading %s", path)
		case bytes.Equal(old, d.Content):
			continue
		}

		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(old)),
			B:        difflib.SplitLines(string(d.Content)),
			FromFile: "a/" + d.Name,
			ToFile:   "b/" + d.Name,
			Context:  3,
		})
		if err != nil {
			return nil, errors.Wrapf(err, errors.KindInternal, "diffing %s", d.Name)
		}
		drifts = append(drifts, Drift{Name: d.Name, Missing: missing, Diff: diff})
	}
	return drifts, nil
}

// DriftError summarizes drifts as a KindDrift error, or returns nil.
func DriftError(drifts []Drift) error {
	if len(drifts) == 0 {
		return nil
	}
	err := errors.Errorf(errors.KindDrift, "%d document(s) out of date, first: %s", len(drifts), drifts[0].Name)
	return errors.Attr(err, "files", len(drifts))
}


