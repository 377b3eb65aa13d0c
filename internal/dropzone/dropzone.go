// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dropzone turns a watched directory into a drop target. A file
// appearing in the directory arms the target; once the file has been quiet
// for the settle period it is dropped. A file that disappears before it
// settles disarms the target again.
package dropzone

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pdiddy/cobol-lens/internal/logging"
	"github.com/pdiddy/cobol-lens/pkg/types"
)

// Target receives drag gestures.
type Target interface {
	DragEnter()
	DragLeave()
	Drop(f *types.CandidateFile)
}

// Watcher watches one directory.
type Watcher struct {
	dir    string
	settle time.Duration
	target Target
	log    logging.Logger
	fs     *fsnotify.Watcher
}

type settled struct {
	name string
	gen  uint64
}

// New starts watching dir. Events are not delivered until Run is called.
func New(dir string, settle time.Duration, target Target, log logging.Logger) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("drop directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("drop directory %s is not a directory", dir)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Watcher{dir: dir, settle: settle, target: target, log: log, fs: fw}, nil
}

// Run delivers gestures to the target until ctx is cancelled. The
// underlying watcher is closed when Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	var gen uint64
	pending := make(map[string]uint64)
	timers := make(map[string]*time.Timer)
	fired := make(chan settled)
	done := make(chan struct{})
	defer close(done)

	arm := func(name string) {
		gen++
		g := gen
		if t, ok := timers[name]; ok {
			t.Stop()
		}
		pending[name] = g
		timers[name] = time.AfterFunc(w.settle, func() {
			select {
			case fired <- settled{name: name, gen: g}:
			case <-done:
			}
		})
	}
	disarm := func(name string) {
		if t, ok := timers[name]; ok {
			t.Stop()
		}
		delete(timers, name)
		delete(pending, name)
	}
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if ignored(name) {
				continue
			}
			switch {
			case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
				if _, armed := pending[name]; !armed {
					w.log.Debug(ctx, "file arriving", "file", name)
					w.target.DragEnter()
				}
				arm(name)
			case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
				if _, armed := pending[name]; armed {
					w.log.Debug(ctx, "file left before settling", "file", name)
					disarm(name)
					w.target.DragLeave()
				}
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn(ctx, "watch error", "dir", w.dir, "error", err)

		case s := <-fired:
			if pending[s.name] != s.gen {
				continue
			}
			disarm(s.name)
			path := filepath.Join(w.dir, s.name)
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				w.target.DragLeave()
				continue
			}
			w.log.Info(ctx, "file dropped", "file", s.name, "bytes", info.Size())
			f := types.CandidateFromPath(path)
			w.target.Drop(&f)
		}
	}
}

// ignored reports whether name looks like a hidden or editor temp file.
func ignored(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~")
}
