// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package persist

import (
	"time"

	"cogentcore.org/loom/events"
	"github.com/google/uuid"
)

// Base is the embeddable core of every persistent entity. It carries
// the permanent UUID identity, the last modification time, and the
// property-change notification, and provides default no-op lifecycle
// hooks that concrete types override as needed.
type Base struct {

	// UUID is the permanent identity of the object. It is assigned
	// once by [Base.Init] (or restored by [Base.ReadBase]) and is the
	// only valid way to reference the object across entities.
	UUID uuid.UUID

	// Modified is the time of the last tracked mutation.
	Modified time.Time

	// PropertyChanged is emitted with the persisted property name
	// after any tracked property mutation.
	PropertyChanged events.Event[string] `copier:"-"`

	closed bool
}

// Init assigns a fresh UUID and modification time.
// It is a no-op if the object already has an identity,
// so it is safe to call from layered constructors.
func (b *Base) Init() {
	if b.UUID != uuid.Nil {
		return
	}
	b.UUID = uuid.New()
	b.Modified = time.Now()
}

// AsBase returns the base, implementing the [Object] interface.
func (b *Base) AsBase() *Base { return b }

// Notify records a mutation of the named property: it updates
// [Base.Modified] and emits [Base.PropertyChanged]. Setters call this
// after storing the new value.
func (b *Base) Notify(property string) {
	b.Modified = time.Now()
	b.PropertyChanged.Emit(property)
}

// AboutToBeInserted is the default no-op lifecycle hook.
func (b *Base) AboutToBeInserted() {}

// AboutToBeRemoved is the default no-op lifecycle hook.
func (b *Base) AboutToBeRemoved() {}

// Close marks the object closed. Closing twice is a programmer error.
// Types overriding Close must call this first.
func (b *Base) Close() {
	if b.closed {
		panic("persist: object closed twice: " + b.UUID.String())
	}
	b.closed = true
}

// IsClosed reports whether [Base.Close] has been called.
func (b *Base) IsClosed() bool { return b.closed }

// WriteBase returns a dict seeded with the identity fields
// (type tag, uuid, modified). Entity WriteDict methods extend it.
func (b *Base) WriteBase(typeTag string) map[string]any {
	return map[string]any{
		"type":     typeTag,
		"uuid":     b.UUID.String(),
		"modified": b.Modified.UTC().Format(time.RFC3339Nano),
	}
}

// ReadBase restores the identity fields from a persisted dict.
func (b *Base) ReadBase(dict map[string]any) error {
	u, err := DictUUID(dict, "uuid")
	if err != nil {
		return err
	}
	b.UUID = u
	if tm, ok := DictTime(dict, "modified"); ok {
		b.Modified = tm
	}
	return nil
}
