// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package storage persists entity dicts for a project. Dicts live in
// named, ordered collections; deleting moves a dict to the trash,
// where it stays until restored. [Memory] keeps everything in memory;
// [File] backs it with a single JSON document on disk.
package storage

import "github.com/google/uuid"

// Entry is one trashed entity: the collection it was deleted from, the
// index it occupied there, and its last persisted dict.
type Entry struct {
	Collection string         `json:"collection"`
	Index      int            `json:"index"`
	Dict       map[string]any `json:"dict"`
}

// Store persists entity dicts keyed by UUID within named collections.
type Store interface {
	// Write saves the dict for the given entity, replacing any previous
	// dict with the same UUID and appending to the collection order if
	// the entity is new.
	Write(collection string, u uuid.UUID, dict map[string]any) error

	// Read returns the dict stored for the entity.
	Read(collection string, u uuid.UUID) (map[string]any, bool)

	// ReadAll returns every dict in the collection, in order.
	ReadAll(collection string) []map[string]any

	// Delete moves the entity's dict from its collection to the trash.
	// Deleting an entity that is not stored is an error.
	Delete(collection string, u uuid.UUID) error

	// Restore removes the entity's entry from the trash and returns it.
	// The caller re-creates the entity and writes it back.
	Restore(u uuid.UUID) (Entry, error)

	// InTrash reports whether the entity is in the trash.
	InTrash(u uuid.UUID) bool

	// Close releases the store, flushing any buffered state.
	Close() error
}
