// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync/atomic"
	"time"

	"cogentcore.org/loom/base/errors"
	"cogentcore.org/loom/persist"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// Version is the project document version this package writes.
// Documents with other versions are rejected at load.
const Version = 3

// File is a [Store] backed by a single JSON document. All operations
// work on an in-memory copy; [File.Flush] writes the document and
// [File.Load] replaces the copy from disk. An optional watcher reports
// external modification of the document.
type File struct {
	*Memory

	path        string
	watcher     *fsnotify.Watcher
	doneWatcher chan bool

	// lastFlush guards the watcher against reacting to our own writes.
	lastFlush atomic.Int64
}

// document is the on-disk shape of the project file.
type document struct {
	Version     int                         `json:"version"`
	Collections map[string][]map[string]any `json:"collections"`
	Trash       []Entry                     `json:"trash,omitempty"`
}

// NewFile returns a file store for the given path, loading the
// document if it already exists.
func NewFile(path string) (*File, error) {
	f := &File{Memory: NewMemory(), path: path}
	if _, err := os.Stat(path); err == nil {
		if err := f.Load(); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Path returns the document path.
func (f *File) Path() string { return f.path }

// Load replaces the in-memory state with the document on disk.
func (f *File) Load() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return err
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("storage: reading %s: %w", f.path, err)
	}
	if doc.Version != Version {
		return fmt.Errorf("storage: %s has version %d, want %d", f.path, doc.Version, Version)
	}
	mem := NewMemory()
	for name, dicts := range doc.Collections {
		for _, dict := range dicts {
			u, err := persist.DictUUID(dict, "uuid")
			if err != nil {
				return fmt.Errorf("storage: reading %s collection %q: %w", f.path, name, err)
			}
			if err := mem.Write(name, u, dict); err != nil {
				return err
			}
		}
	}
	for _, entry := range doc.Trash {
		u, err := persist.DictUUID(entry.Dict, "uuid")
		if err != nil {
			return fmt.Errorf("storage: reading %s trash: %w", f.path, err)
		}
		mem.trash[u] = entry
	}
	f.Memory = mem
	return nil
}

// Flush writes the in-memory state to the document on disk.
func (f *File) Flush() error {
	doc := document{Version: Version, Collections: map[string][]map[string]any{}}
	names := make([]string, 0, len(f.collections))
	for name := range f.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		doc.Collections[name] = f.ReadAll(name)
	}
	trashed := make([]uuid.UUID, 0, len(f.trash))
	for u := range f.trash {
		trashed = append(trashed, u)
	}
	sort.Slice(trashed, func(i, j int) bool { return trashed[i].String() < trashed[j].String() })
	for _, u := range trashed {
		doc.Trash = append(doc.Trash, f.trash[u])
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	f.lastFlush.Store(time.Now().UnixNano())
	return os.WriteFile(f.path, data, 0664)
}

// Watch starts watching the document for external modification,
// calling onChange for changes not made through this store. The
// callback runs on the watcher goroutine; it must hand off to the
// graph owner rather than mutate anything itself.
func (f *File) Watch(onChange func()) error {
	if f.watcher != nil {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(f.path); err != nil {
		errors.Log(watcher.Close())
		return err
	}
	f.watcher = watcher
	f.doneWatcher = make(chan bool)
	go func() {
		watch := f.watcher
		done := f.doneWatcher
		for {
			select {
			case <-done:
				return
			case event := <-watch.Events:
				switch {
				case event.Op&fsnotify.Write == fsnotify.Write ||
					event.Op&fsnotify.Create == fsnotify.Create ||
					event.Op&fsnotify.Rename == fsnotify.Rename:
					if f.selfWrite() {
						continue
					}
					slog.Debug("storage: external change", "path", f.path)
					onChange()
				}
			case err := <-watch.Errors:
				if err != nil {
					slog.Error("storage: watcher error", "path", f.path, "err", err)
				}
			}
		}
	}()
	return nil
}

// selfWrite reports whether a watcher event is close enough to our own
// last flush to be its echo.
func (f *File) selfWrite() bool {
	last := f.lastFlush.Load()
	return last != 0 && time.Since(time.Unix(0, last)) < 500*time.Millisecond
}

// Close stops the watcher and flushes the document.
func (f *File) Close() error {
	if f.watcher != nil {
		close(f.doneWatcher)
		errors.Log(f.watcher.Close())
		f.watcher = nil
		f.doneWatcher = nil
	}
	return f.Flush()
}
