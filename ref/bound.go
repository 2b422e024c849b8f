// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ref

import (
	"cogentcore.org/loom/events"
	"cogentcore.org/loom/persist"
)

// Bound is the capability contract for a resolved live reference.
// Exactly one owner (the variable, output, or connection slot that
// created it) holds each Bound and must close it when replacing or
// releasing its specifier; a Bound's lifetime never exceeds that of
// the specifier it was resolved from.
type Bound interface {

	// Value returns the current value of the reference: the target
	// object itself, one property of it, or derived data for facet
	// specifiers.
	Value() any

	// Changed reports mutations of the target's observable content.
	// Consumers re-evaluate in response.
	Changed() *events.Signal

	// NeedsRebind reports that the identity the specifier points to
	// has become invalid or ambiguous. Consumers must unbind and then
	// rebind the owning slot; the value is no longer trustworthy.
	NeedsRebind() *events.Signal

	// Objects returns the concrete persistent entities this binding
	// depends on, for the store's dependency bookkeeping.
	Objects() []persist.Object

	// Close releases the binding and all of its subscriptions,
	// synchronously stopping all notification forwarding.
	// Closing twice is a programmer error.
	Close()
}

// Resolver resolves specifiers against current store state. Resolution
// is pure with respect to that state: identical inputs against an
// unchanged store return an equivalent binding. Unknown or dangling
// targets resolve to nil, never an error, so failed resolution is a
// representable state rather than an exception path.
type Resolver interface {

	// Resolve returns a live binding for the given specifier, or nil.
	// The secondary specifier names the auxiliary object facet forms
	// need (such as the crop graphic); property selects one property
	// of the target. List-valued slots resolve element-wise.
	Resolve(spec, secondary Specifier, property string) Bound
}

// Proxy is the value-only capability used for reference proxies in
// data structures: current-value lookup with no change or rebind
// notifications.
type Proxy interface {
	Value() any
	Close()
}

// BoundBase supplies the notification and teardown half of [Bound].
// Concrete bindings embed it, register the listeners they hold with
// [BoundBase.Watch], and override Value and Objects.
type BoundBase struct {
	changed     events.Signal
	needsRebind events.Signal
	watched     []*events.Listener
	closed      bool
}

// Changed implements [Bound].
func (bb *BoundBase) Changed() *events.Signal { return &bb.changed }

// NeedsRebind implements [Bound].
func (bb *BoundBase) NeedsRebind() *events.Signal { return &bb.needsRebind }

// Objects implements [Bound] with no dependencies;
// concrete bindings override it.
func (bb *BoundBase) Objects() []persist.Object { return nil }

// Watch registers listeners to be closed when the binding closes.
func (bb *BoundBase) Watch(ls ...*events.Listener) {
	bb.watched = append(bb.watched, ls...)
}

// IsClosed reports whether the binding has been closed.
func (bb *BoundBase) IsClosed() bool { return bb.closed }

// Close releases all watched listeners. Closing twice is a programmer
// error and panics.
func (bb *BoundBase) Close() {
	if bb.closed {
		panic("ref: bound item closed twice")
	}
	bb.closed = true
	for _, l := range bb.watched {
		l.Close()
	}
	bb.watched = nil
}

// BoundList aggregates an ordered list of bindings into one [Bound]
// for list-valued slots. Member change and rebind notifications fan in
// to the aggregate's; the value is the slice of member values.
// The list owns its members: closing it closes them.
type BoundList struct {
	BoundBase
	items []Bound
}

// NewBoundList returns an aggregate over the given members, all of
// which must be non-nil.
func NewBoundList(items []Bound) *BoundList {
	bl := &BoundList{items: items}
	for _, it := range items {
		bl.Watch(
			it.Changed().Listen(func() { bl.Changed().Emit() }),
			it.NeedsRebind().Listen(func() { bl.NeedsRebind().Emit() }),
		)
	}
	return bl
}

// Value returns the slice of member values.
func (bl *BoundList) Value() any {
	vals := make([]any, len(bl.items))
	for i, it := range bl.items {
		vals[i] = it.Value()
	}
	return vals
}

// Items returns the member bindings.
func (bl *BoundList) Items() []Bound { return bl.items }

// Objects returns the union of the members' dependencies.
func (bl *BoundList) Objects() []persist.Object {
	var objs []persist.Object
	seen := map[persist.Object]bool{}
	for _, it := range bl.items {
		for _, o := range it.Objects() {
			if !seen[o] {
				seen[o] = true
				objs = append(objs, o)
			}
		}
	}
	return objs
}

// Take unwires the aggregate and returns the member bindings without
// closing them, so a list rebind can reuse members whose specifiers
// are unchanged. The list is spent afterwards.
func (bl *BoundList) Take() []Bound {
	bl.BoundBase.Close()
	items := bl.items
	bl.items = nil
	return items
}

// Close releases the aggregate and closes every member.
func (bl *BoundList) Close() {
	for _, it := range bl.Take() {
		it.Close()
	}
}
