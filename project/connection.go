// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package project

import (
	"cogentcore.org/loom/compute"
	"cogentcore.org/loom/events"
	"cogentcore.org/loom/persist"
	"cogentcore.org/loom/ref"
	"github.com/google/uuid"
)

// Connection keeps one property of a target entity equal to one
// property of a source entity, in both directions: whichever side
// changes, the other follows. Both ends are named by specifier, so a
// connection survives its endpoints being removed and restored; while
// an end is missing the connection is dormant and retries as entities
// are inserted.
type Connection struct {
	persist.Base `copier:"-"`

	sourceSpec     ref.Specifier
	sourceProperty string
	targetSpec     ref.Specifier
	targetProperty string

	ctx      compute.Context
	source   ref.Bound
	target   ref.Bound
	wires    []*events.Listener
	retry    *events.Listener
	suppress bool
}

func init() {
	persist.AddType("connection", func() persist.Object { return &Connection{} })
}

// NewPropertyConnection returns a connection tying the source entity's
// named property to the target entity's named property.
func NewPropertyConnection(source ref.Specifier, sourceProperty string, target ref.Specifier, targetProperty string) *Connection {
	conn := &Connection{
		sourceSpec:     source,
		sourceProperty: sourceProperty,
		targetSpec:     target,
		targetProperty: targetProperty,
	}
	conn.Init()
	return conn
}

// TypeTag implements [persist.Object].
func (conn *Connection) TypeTag() string { return "connection" }

// SourceSpecifier returns the specifier naming the source entity.
func (conn *Connection) SourceSpecifier() ref.Specifier { return conn.sourceSpec }

// TargetSpecifier returns the specifier naming the target entity.
func (conn *Connection) TargetSpecifier() ref.Specifier { return conn.targetSpec }

// SourceProperty returns the synced property name on the source.
func (conn *Connection) SourceProperty() string { return conn.sourceProperty }

// TargetProperty returns the synced property name on the target.
func (conn *Connection) TargetProperty() string { return conn.targetProperty }

// IsBound reports whether the connection is bound to a context.
func (conn *Connection) IsBound() bool { return conn.ctx != nil }

// IsResolved reports whether both ends are currently bound to live
// entities.
func (conn *Connection) IsResolved() bool {
	return conn.source != nil && conn.target != nil
}

// Bind attaches the connection to a resolution context. When both ends
// resolve, the target property immediately takes the source's value
// and the two-way sync starts. Binding a bound connection is a
// programmer error.
func (conn *Connection) Bind(ctx compute.Context) {
	if conn.ctx != nil {
		panic("project: connection bound twice")
	}
	conn.ctx = ctx
	conn.resolve()
}

// Unbind detaches the connection, synchronously stopping the sync.
// Safe on an unbound connection.
func (conn *Connection) Unbind() {
	conn.stopRetry()
	conn.unresolve()
	conn.ctx = nil
}

// Close unbinds and closes the connection.
// Closing twice is a programmer error.
func (conn *Connection) Close() {
	conn.Unbind()
	conn.Base.Close()
}

func (conn *Connection) resolve() {
	conn.stopRetry()
	source := conn.ctx.Resolve(conn.sourceSpec, ref.Specifier{}, "")
	if source == nil {
		conn.watchInsertions()
		return
	}
	target := conn.ctx.Resolve(conn.targetSpec, ref.Specifier{}, "")
	if target == nil {
		source.Close()
		conn.watchInsertions()
		return
	}
	sourceObj, _ := source.Value().(persist.Object)
	targetObj, _ := target.Value().(persist.Object)
	if sourceObj == nil || targetObj == nil {
		source.Close()
		target.Close()
		conn.watchInsertions()
		return
	}
	conn.source = source
	conn.target = target
	conn.wires = []*events.Listener{
		sourceObj.AsBase().PropertyChanged.Listen(func(name string) {
			if name == conn.sourceProperty {
				conn.propagate(sourceObj, targetObj, conn.sourceProperty, conn.targetProperty)
			}
		}),
		targetObj.AsBase().PropertyChanged.Listen(func(name string) {
			if name == conn.targetProperty {
				conn.propagate(targetObj, sourceObj, conn.targetProperty, conn.sourceProperty)
			}
		}),
		source.NeedsRebind().Listen(conn.rebind),
		target.NeedsRebind().Listen(conn.rebind),
	}
	conn.propagate(sourceObj, targetObj, conn.sourceProperty, conn.targetProperty)
}

func (conn *Connection) unresolve() {
	for _, w := range conn.wires {
		w.Close()
	}
	conn.wires = nil
	if conn.source != nil {
		conn.source.Close()
		conn.source = nil
	}
	if conn.target != nil {
		conn.target.Close()
		conn.target = nil
	}
}

func (conn *Connection) rebind() {
	conn.unresolve()
	conn.resolve()
}

// propagate copies one property across the connection. The suppress
// flag breaks the reflection cycle: the set below notifies the other
// side, which must not copy back.
func (conn *Connection) propagate(from, to persist.Object, fromProperty, toProperty string) {
	if conn.suppress {
		return
	}
	fromAccessor, ok := from.(persist.PropertyAccessor)
	if !ok {
		return
	}
	toAccessor, ok := to.(persist.PropertyAccessor)
	if !ok {
		return
	}
	value, ok := fromAccessor.Property(fromProperty)
	if !ok {
		return
	}
	conn.suppress = true
	defer func() { conn.suppress = false }()
	toAccessor.SetProperty(toProperty, value)
}

func (conn *Connection) watchInsertions() {
	if conn.retry != nil || conn.ctx == nil {
		return
	}
	conn.retry = conn.ctx.ItemInserted().Listen(func(uuid.UUID) {
		conn.resolve()
	})
}

func (conn *Connection) stopRetry() {
	if conn.retry != nil {
		conn.retry.Close()
		conn.retry = nil
	}
}

// ReferencedUUIDs returns the UUIDs both ends name, for the store's
// cascade collector.
func (conn *Connection) ReferencedUUIDs() []uuid.UUID {
	return []uuid.UUID{conn.sourceSpec.UUID, conn.targetSpec.UUID}
}

// WriteDict implements [persist.Object].
func (conn *Connection) WriteDict() map[string]any {
	dict := conn.WriteBase(conn.TypeTag())
	dict["connection_type"] = "property-connection"
	dict["source_specifier"] = conn.sourceSpec.ToDict()
	dict["source_property"] = conn.sourceProperty
	dict["target_specifier"] = conn.targetSpec.ToDict()
	dict["target_property"] = conn.targetProperty
	return dict
}

// ReadDict implements [persist.Object].
func (conn *Connection) ReadDict(dict map[string]any) error {
	if err := conn.ReadBase(dict); err != nil {
		return err
	}
	if sd, ok := persist.DictMap(dict, "source_specifier"); ok {
		spec, err := ref.FromDict(sd)
		if err != nil {
			return err
		}
		conn.sourceSpec = spec
	}
	if td, ok := persist.DictMap(dict, "target_specifier"); ok {
		spec, err := ref.FromDict(td)
		if err != nil {
			return err
		}
		conn.targetSpec = spec
	}
	conn.sourceProperty, _ = persist.DictString(dict, "source_property")
	conn.targetProperty, _ = persist.DictString(dict, "target_property")
	return nil
}
