// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"grimm.is/docwriter/internal/config"
	"grimm.is/docwriter/internal/errors"
	"grimm.is/docwriter/internal/logging"
)

// settle is how long input files must stay quiet before a rebuild.
var settle = 200 * time.Millisecond

// watchAndRun builds once, then rebuilds whenever an input file changes,
// until ctx is done. Failed builds are reported and watching continues.
func (o *rootOptions) watchAndRun(ctx context.Context, cfg *config.Config) error {
	log := logging.WithComponent("watch")

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.KindInternal, "starting file watcher")
	}
	defer w.Close()

	// Editors often replace files instead of writing them, so the
	// directories are watched and events filtered by name.
	inputs := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, in := range cfg.Inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return errors.Wrapf(err, errors.KindConfig, "resolving %s", in)
		}
		inputs[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			log.WithError(err).Warn("cannot watch directory", "dir", dir)
		}
	}

	rebuild := func() {
		if err := o.generate(ctx, cfg); err != nil && !errors.Is(err, errReported) {
			log.WithError(err).Error("build failed")
		}
	}
	rebuild()
	log.Info("watching for changes", "files", len(inputs))

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !inputs[filepath.Clean(ev.Name)] || ev.Op == fsnotify.Chmod {
				continue
			}
			log.Debug("input changed", "file", ev.Name, "op", ev.Op.String())
			pending = time.After(settle)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watch error")
		case <-pending:
			pending = nil
			rebuild()
		}
	}
}
