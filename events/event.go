// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package events provides the notification primitives for the reference
// graph: typed broadcast events, no-payload signals, and the bounded
// queue used to hand background changes to the single mutating goroutine.
//
// Listeners are called in the order they were added, synchronously on
// the emitting goroutine. A [Listener] must be closed when its owner is
// done with it; all graph teardown paths rely on that to stop
// notification forwarding immediately.
package events

import "sync"

// Event is a broadcast of values of type T to an ordered list of
// listener functions. The zero value is ready to use. Emitting and
// listening are safe for concurrent use, but the graph itself assumes
// a single mutator, so handlers run without further synchronization.
type Event[T any] struct {
	mu       sync.Mutex
	handlers []*handler[T]
}

type handler[T any] struct {
	fun   func(T)
	alive bool
}

// Listen adds a listener function called on every subsequent [Event.Emit],
// returning a [Listener] handle that removes it when closed.
func (ev *Event[T]) Listen(fun func(T)) *Listener {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	h := &handler[T]{fun: fun, alive: true}
	ev.handlers = append(ev.handlers, h)
	return &Listener{close: func() { ev.remove(h) }}
}

func (ev *Event[T]) remove(h *handler[T]) {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	h.alive = false
	for i, eh := range ev.handlers {
		if eh == h {
			ev.handlers = append(ev.handlers[:i], ev.handlers[i+1:]...)
			break
		}
	}
}

// Emit calls every live listener with the given value, in the order
// the listeners were added. Listeners added or closed while an emit is
// in progress take effect for the next emit; a listener closed during
// dispatch is not called again within the same emit.
func (ev *Event[T]) Emit(val T) {
	ev.mu.Lock()
	snapshot := make([]*handler[T], len(ev.handlers))
	copy(snapshot, ev.handlers)
	ev.mu.Unlock()
	for _, h := range snapshot {
		ev.mu.Lock()
		alive := h.alive
		ev.mu.Unlock()
		if alive {
			h.fun(val)
		}
	}
}

// HasListeners reports whether any listener is currently attached.
func (ev *Event[T]) HasListeners() bool {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	return len(ev.handlers) > 0
}

// Listener is a handle for one attached listener function.
// Closing it detaches the function; further emits will not call it.
// Close is idempotent.
type Listener struct {
	close func()
}

// Close detaches the listener from its event.
func (l *Listener) Close() {
	if l == nil || l.close == nil {
		return
	}
	l.close()
	l.close = nil
}
