// Copyright (C) 2026 Katmai Labs (dev@katmailabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/KatmaiLabs/KatmaiRisk/pkg/risk"
)

// watchPMITable reloads the PMI table whenever the file changes and
// hands the new immutable snapshot to apply. The directory is watched
// rather than the file itself so editors that replace-on-save (rename
// over the original) keep working.
//
// A reload failure keeps the previous table and logs the error.
func watchPMITable(path string, apply func(*risk.PMITable)) (stop func(), err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != absPath {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				table, err := risk.LoadPMITable(absPath)
				if err != nil {
					slog.Error("PMI table reload failed, keeping previous table",
						"path", absPath, "error", err)
					continue
				}
				apply(table)
				slog.Info("PMI table reloaded", "path", absPath, "entries", table.Len())
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("PMI table watcher error", "error", err)
			}
		}
	}()

	return func() { watcher.Close() }, nil
}
