// Copyright 2024 The ember authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/emberlang/semacore/config"
)

// watchDelay is how long the watcher waits for writes on other unit
// files to settle before re-checking, the same debounce purpose
// gopls/internal/filewatcher.Watcher's timer serves for its own
// batched LSP notifications.
const watchDelay = 200 * time.Millisecond

// watch re-runs recheck whenever any file under m.Units changes, until
// ctx is canceled. Unlike gopls's filewatcher (which watches whole
// directory trees and filters by glob), this watches exactly the
// manifest's own unit files: a single-package driver has no broader
// tree to reason about.
func watch(ctx context.Context, m *config.Manifest, recheck func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, path := range m.Units {
		if err := w.Add(path); err != nil {
			return err
		}
	}

	var mu sync.Mutex
	dirty := false
	timer := time.NewTimer(watchDelay)
	if !timer.Stop() {
		<-timer.C
	}

	recheck()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			mu.Lock()
			dirty = true
			mu.Unlock()
			timer.Reset(watchDelay)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("emberchk: watch: %v", err)
		case <-timer.C:
			mu.Lock()
			wasDirty := dirty
			dirty = false
			mu.Unlock()
			if wasDirty {
				recheck()
			}
		}
	}
}
