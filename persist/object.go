// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package persist provides the persistent-object base for the reference
// graph: UUID identity, modification tracking, property-change
// notification, ordered UUID-keyed collections with lifecycle hooks,
// a type-tag factory registry, and helpers for the dict representation
// every object round-trips through.
//
// Objects are identified across the store only by UUID; no object holds
// a pointer back to its container. Containers own their objects and
// drive the lifecycle hooks; everything else reaches objects through
// lookups.
package persist

// Object is the interface satisfied by all persistent entities.
// Concrete types embed [Base], which provides the identity and
// notification plumbing and default no-op lifecycle hooks.
type Object interface {

	// AsBase returns the persistent [Base] of this object.
	AsBase() *Base

	// TypeTag returns the persisted type tag identifying this kind
	// of object, such as "data_item". Tags are registered with
	// [AddType] so objects can be rebuilt from persisted dicts.
	TypeTag() string

	// WriteDict returns the complete persisted representation of the
	// object. The result must contain only JSON-compatible values and
	// must be independent of the object's live state (no aliasing).
	WriteDict() map[string]any

	// ReadDict restores the object's state from a persisted
	// representation previously produced by [Object.WriteDict].
	ReadDict(dict map[string]any) error

	// AboutToBeInserted is called by the owning collection before the
	// insert notification fires, so the object's own setup runs first.
	AboutToBeInserted()

	// AboutToBeRemoved is called by the owning collection after
	// dependents have been warned but before the object is detached.
	AboutToBeRemoved()

	// Close releases everything the object holds. Closing an object
	// twice is a programmer error and panics.
	Close()
}

// PropertyAccessor is implemented by objects whose named properties
// can be read and written generically. Property-qualified references
// and property connections reach object state through this interface
// instead of concrete types. Property names match the keys the object
// persists.
type PropertyAccessor interface {

	// Property returns the named property's current value.
	Property(name string) (any, bool)

	// SetProperty sets the named property, notifying exactly as the
	// concrete setter does. It reports whether the property exists
	// and is settable.
	SetProperty(name string, value any) bool
}
