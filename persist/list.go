// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package persist

import (
	"cogentcore.org/loom/events"
	"github.com/google/uuid"
)

// ItemIndex is the payload of collection insert and remove
// notifications: the item and its index at the time of the event.
type ItemIndex[T Object] struct {
	Item  T
	Index int
}

// List is an ordered collection of persistent objects with unique
// UUIDs and an index for constant-time lookup by UUID. It drives the
// object lifecycle hooks and emits insert/remove notifications in the
// required order: the object's own hook first, then the notification
// with the object and its index.
//
// Appending a duplicate UUID and removing an object that is not in the
// list are programmer errors and panic.
type List[T Object] struct {

	// Inserted is emitted after an item has been added, with the item
	// and the index it was added at.
	Inserted events.Event[ItemIndex[T]]

	// Removed is emitted after an item has been removed, with the item
	// and the index it was removed from.
	Removed events.Event[ItemIndex[T]]

	items []T
	index map[uuid.UUID]int
}

// Len returns the number of items in the list.
func (l *List[T]) Len() int { return len(l.items) }

// At returns the item at the given index.
func (l *List[T]) At(idx int) T { return l.items[idx] }

// ByUUID returns the item with the given UUID, if present.
func (l *List[T]) ByUUID(u uuid.UUID) (T, bool) {
	if i, ok := l.index[u]; ok {
		return l.items[i], true
	}
	var zero T
	return zero, false
}

// Contains reports whether an item with the given UUID is present.
func (l *List[T]) Contains(u uuid.UUID) bool {
	_, ok := l.index[u]
	return ok
}

// IndexOf returns the index of the item with the given UUID, or -1.
func (l *List[T]) IndexOf(u uuid.UUID) int {
	if i, ok := l.index[u]; ok {
		return i
	}
	return -1
}

// Items returns a copy of the item slice, safe to iterate while the
// list is being mutated (as cascade removal does).
func (l *List[T]) Items() []T {
	items := make([]T, len(l.items))
	copy(items, l.items)
	return items
}

// Append adds an item at the end of the list.
// The item's UUID must not already be present.
func (l *List[T]) Append(item T) {
	l.Insert(len(l.items), item)
}

// Insert adds an item at the given index, which must be in range.
// The item's UUID must not already be present: a duplicate is a
// programmer error and panics. The item's AboutToBeInserted hook runs
// before the Inserted notification fires.
func (l *List[T]) Insert(idx int, item T) {
	u := item.AsBase().UUID
	if u == uuid.Nil {
		panic("persist: inserting object without identity; call Init first")
	}
	if _, ok := l.index[u]; ok {
		panic("persist: duplicate UUID in collection: " + u.String())
	}
	if idx < 0 || idx > len(l.items) {
		panic("persist: insert index out of range")
	}
	item.AboutToBeInserted()
	if l.index == nil {
		l.index = make(map[uuid.UUID]int)
	}
	l.items = append(l.items, item)
	copy(l.items[idx+1:], l.items[idx:])
	l.items[idx] = item
	l.reindex(idx)
	l.Inserted.Emit(ItemIndex[T]{Item: item, Index: idx})
}

// Remove removes the given item from the list. The item must be
// present: removing a non-member is a programmer error and panics.
// The item's AboutToBeRemoved hook runs before detachment; the Removed
// notification fires after, with the former index.
func (l *List[T]) Remove(item T) int {
	u := item.AsBase().UUID
	idx, ok := l.index[u]
	if !ok {
		panic("persist: removing object not in collection: " + u.String())
	}
	l.RemoveAt(idx)
	return idx
}

// RemoveAt removes the item at the given index, which must be in range.
func (l *List[T]) RemoveAt(idx int) {
	item := l.items[idx]
	item.AboutToBeRemoved()
	delete(l.index, item.AsBase().UUID)
	l.items = append(l.items[:idx], l.items[idx+1:]...)
	l.reindex(idx)
	l.Removed.Emit(ItemIndex[T]{Item: item, Index: idx})
}

func (l *List[T]) reindex(from int) {
	for i := from; i < len(l.items); i++ {
		l.index[l.items[i].AsBase().UUID] = i
	}
}
