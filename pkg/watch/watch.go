// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package watch reruns a build whenever the watched directory changes.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultDelay is how long the watcher waits for changes to settle.
const DefaultDelay = 300 * time.Millisecond

// BuildFunc performs one complete build.
type BuildFunc func(ctx context.Context) error

// 👀 Watcher rebuilds after changes under a directory settle
type Watcher struct {
	dir      string
	excludes []string
	delay    time.Duration
	build    BuildFunc
}

// 🏭 New creates a watcher for dir. Changes under any of excludes (typically the
// destination directory) never trigger a rebuild.
func New(dir string, build BuildFunc, excludes ...string) *Watcher {
	return &Watcher{dir: dir, excludes: excludes, delay: DefaultDelay, build: build}
}

// WithDelay sets the debounce delay.
func (w *Watcher) WithDelay(d time.Duration) *Watcher {
	w.delay = d
	return w
}

// 🔄 Run watches until ctx is done. Each settled burst of changes triggers one
// full build; build failures are logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := w.addRecursive(ctx, fsw, w.dir); err != nil {
		return err
	}

	logger.Info().Str("dir", w.dir).Dur("delay", w.delay).Msg("watching for changes")

	// a nil channel blocks until the first change arms the timer
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.skip(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					_ = w.addRecursive(ctx, fsw, ev.Name)
				}
			}
			logger.Debug().Str("path", ev.Name).Str("op", ev.Op.String()).Msg("change detected")

			if timer == nil {
				timer = time.NewTimer(w.delay)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.delay)
			}
			fire = timer.C
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watcher error")
		case <-fire:
			fire = nil
			logger.Info().Msg("changes settled, rebuilding")
			if err := w.build(ctx); err != nil {
				logger.Warn().Err(err).Msg("rebuild failed")
			}
		}
	}
}

func (w *Watcher) addRecursive(ctx context.Context, fsw *fsnotify.Watcher, root string) error {
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.skip(path) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("dir", path).Msg("watch add failed")
		}
		return nil
	})
	if err != nil {
		return errors.Errorf("watching %s: %w", root, err)
	}
	return nil
}

// skip reports whether a change at path should be ignored: editor swap and
// temp files, hidden entries, and anything under an excluded directory.
func (w *Watcher) skip(path string) bool {
	for _, ex := range w.excludes {
		if path == ex || strings.HasPrefix(path, ex+string(filepath.Separator)) {
			return true
		}
	}
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	return strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".tmp")
}
