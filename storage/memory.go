// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package storage

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Memory is an in-memory [Store]. The zero value is not usable; use
// [NewMemory].
type Memory struct {
	collections map[string]*collection
	trash       map[uuid.UUID]Entry
}

type collection struct {
	order []uuid.UUID
	dicts map[uuid.UUID]map[string]any
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		collections: map[string]*collection{},
		trash:       map[uuid.UUID]Entry{},
	}
}

func (m *Memory) collectionFor(name string) *collection {
	c := m.collections[name]
	if c == nil {
		c = &collection{dicts: map[uuid.UUID]map[string]any{}}
		m.collections[name] = c
	}
	return c
}

// Write saves the dict for the given entity.
func (m *Memory) Write(name string, u uuid.UUID, dict map[string]any) error {
	c := m.collectionFor(name)
	if _, ok := c.dicts[u]; !ok {
		c.order = append(c.order, u)
	}
	c.dicts[u] = dict
	return nil
}

// Read returns the dict stored for the entity.
func (m *Memory) Read(name string, u uuid.UUID) (map[string]any, bool) {
	c := m.collections[name]
	if c == nil {
		return nil, false
	}
	dict, ok := c.dicts[u]
	return dict, ok
}

// ReadAll returns every dict in the collection, in order.
func (m *Memory) ReadAll(name string) []map[string]any {
	c := m.collections[name]
	if c == nil {
		return nil
	}
	dicts := make([]map[string]any, len(c.order))
	for i, u := range c.order {
		dicts[i] = c.dicts[u]
	}
	return dicts
}

// Delete moves the entity's dict from its collection to the trash.
func (m *Memory) Delete(name string, u uuid.UUID) error {
	c := m.collections[name]
	if c == nil {
		return fmt.Errorf("storage: delete of unknown collection %q", name)
	}
	dict, ok := c.dicts[u]
	if !ok {
		return fmt.Errorf("storage: delete of unknown entity %s in %q", u, name)
	}
	delete(c.dicts, u)
	idx := slices.Index(c.order, u)
	if idx >= 0 {
		c.order = slices.Delete(c.order, idx, idx+1)
	}
	m.trash[u] = Entry{Collection: name, Index: idx, Dict: dict}
	return nil
}

// Restore removes the entity's entry from the trash and returns it.
func (m *Memory) Restore(u uuid.UUID) (Entry, error) {
	entry, ok := m.trash[u]
	if !ok {
		return Entry{}, fmt.Errorf("storage: nothing in trash for %s", u)
	}
	delete(m.trash, u)
	return entry, nil
}

// InTrash reports whether the entity is in the trash.
func (m *Memory) InTrash(u uuid.UUID) bool {
	_, ok := m.trash[u]
	return ok
}

// Close releases the store.
func (m *Memory) Close() error { return nil }
