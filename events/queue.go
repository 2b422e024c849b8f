// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package events

import (
	"log/slog"
	"sync"
)

// Queue is a bounded FIFO hand-off from background goroutines to the
// single mutating goroutine. Producers call [Queue.Add] from any
// goroutine; the owner drains with [Queue.Drain] before mutating the
// graph, so change notifications are never delivered while the graph
// is partially bound. When full, the oldest entry is dropped and the
// drop is logged; producers are fire-and-forget.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
	limit int
}

// NewQueue returns a queue holding at most limit entries.
// A non-positive limit selects the default of 1024.
func NewQueue[T any](limit int) *Queue[T] {
	if limit <= 0 {
		limit = 1024
	}
	return &Queue[T]{limit: limit}
}

// Add appends a value, dropping the oldest entry if the queue is full.
// It reports whether anything was dropped.
func (q *Queue[T]) Add(val T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	dropped := false
	if len(q.items) >= q.limit {
		q.items = q.items[1:]
		dropped = true
		slog.Warn("events.Queue: full, dropping oldest entry", "limit", q.limit)
	}
	q.items = append(q.items, val)
	return dropped
}

// Drain removes and returns all queued values in arrival order.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// Len returns the number of queued values.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
