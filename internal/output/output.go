// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package output writes rendered documents to the output directory and
// compares them with what is already there.
package output

import (
	"context"
	"os"
	"path/filepath"

	"grimm.is/docwriter/internal/errors"
	"grimm.is/docwriter/internal/logging"
	"grimm.is/docwriter/internal/render"
)

const (
	filePerm = 0o644
	dirPerm  = 0o755
)

// Writer writes documents into one directory. Every file is written to a
// temporary file in the same directory and renamed into place, so readers
// never see a partial document.
type Writer struct {
	dir string
	log *logging.Logger
}

// NewWriter returns a Writer for dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, log: logging.WithComponent("output")}
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// Prepare creates the output directory if needed and checks that files can
// be created in it.
func (w *Writer) Prepare() error {
	if err := os.MkdirAll(w.dir, dirPerm); err != nil {
		return errors.Wrapf(err, errors.KindOutput, "cannot create output directory %s", w.dir)
	}
	probe, err := os.CreateTemp(w.dir, ".docwriter-probe-*")
	if err != nil {
		return errors.Wrapf(err, errors.KindOutput, "output directory %s is not writable", w.dir)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return nil
}

// Write writes docs in order. It stops at the first failure.
func (w *Writer) Write(ctx context.Context, docs []render.Document) error {
	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		dest := filepath.Join(w.dir, filepath.Base(d.Name))
		if err := writeAtomic(dest, d.Content); err != nil {
			return errors.Attr(errors.Wrapf(err, errors.KindOutput, "writing %s", dest), "file", d.Name)
		}
		w.log.Debug("document written", "file", dest, "kind", d.Kind.String(), "bytes", len(d.Content))
	}
	return nil
}

func writeAtomic(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, filePerm)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
