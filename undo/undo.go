// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package undo records cascading deletes so they can be reversed.
//
// A delete that cascades removes several entities in dependency order.
// Each removal appends one [Record] to a [Log]; restoring replays the
// records newest first, so everything an entity depends on is back
// before the entity itself.
package undo

// Record captures enough of one deleted entity to recreate it in a
// target of type T.
type Record[T any] interface {
	// Undelete recreates the captured entity in the given target.
	Undelete(target T)

	// Close releases the record without restoring it.
	Close()
}

// Log is the ordered list of records produced by one cascading delete.
// Records are appended in removal order and restored in reverse.
type Log[T any] struct {
	records []Record[T]
	spent   bool
}

// NewLog returns an empty log.
func NewLog[T any]() *Log[T] { return &Log[T]{} }

// Append adds a record. Records must be appended in the order the
// entities were removed.
func (l *Log[T]) Append(r Record[T]) {
	if l.spent {
		panic("undo: append to a spent log")
	}
	l.records = append(l.records, r)
}

// Len returns the number of records held.
func (l *Log[T]) Len() int { return len(l.records) }

// UndeleteAll restores every record in reverse order, consuming the
// log. The log must still be closed afterwards.
func (l *Log[T]) UndeleteAll(target T) {
	if l.spent {
		panic("undo: undelete on a spent log")
	}
	for i := len(l.records) - 1; i >= 0; i-- {
		l.records[i].Undelete(target)
	}
	l.records = nil
	l.spent = true
}

// Close releases any records that were not restored, newest first.
// Closing an already closed or fully restored log does nothing.
func (l *Log[T]) Close() {
	for i := len(l.records) - 1; i >= 0; i-- {
		l.records[i].Close()
	}
	l.records = nil
	l.spent = true
}
