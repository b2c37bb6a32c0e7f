// Package watch turns filesystem events in a vault into processing
// signals for paper notes.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/logctx"
)

// Sink receives vault-relative paths of changed notes.
type Sink interface {
	Push(p string)
}

// Watcher forwards create and write events for markdown notes to a Sink.
type Watcher struct {
	root   string
	skip   map[string]bool
	sink   Sink
	notify *fsnotify.Watcher
}

// New watches the vault at root. Directories named in skip (vault-relative)
// and dot directories are not watched.
func New(root string, sink Sink, skip ...string) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving vault path: %w", err)
	}
	nw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	w := &Watcher{root: abs, skip: make(map[string]bool), sink: sink, notify: nw}
	for _, s := range skip {
		if s = filepath.ToSlash(filepath.Clean(s)); s != "." && s != "" {
			w.skip[s] = true
		}
	}
	if err := w.addTree(abs); err != nil {
		nw.Close()
		return nil, err
	}
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.notify.Close()
}

// addTree registers dir and every watchable directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root && w.ignored(p) {
			return filepath.SkipDir
		}
		if err := w.notify.Add(p); err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
		return nil
	})
}

// rel returns the vault-relative slash path of p.
func (w *Watcher) rel(p string) (string, bool) {
	r, err := filepath.Rel(w.root, p)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(r), true
}

func (w *Watcher) ignored(p string) bool {
	r, ok := w.rel(p)
	if !ok {
		return true
	}
	for _, part := range strings.Split(r, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	for s := range w.skip {
		if r == s || strings.HasPrefix(r, s+"/") {
			return true
		}
	}
	return false
}

// Run forwards events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	log := logctx.From(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.notify.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "error", err)
		case ev, ok := <-w.notify.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	if w.ignored(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				logctx.From(ctx).Warn("watching new directory", "path", ev.Name, "error", err)
			}
			return
		}
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}
	if !strings.HasSuffix(ev.Name, ".md") {
		return
	}
	if r, ok := w.rel(ev.Name); ok {
		logctx.From(ctx).Debug("note changed", "path", r, "op", ev.Op.String())
		w.sink.Push(r)
	}
}
