// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package project implements the store that owns every persistent
// entity: data items, display items, data structures, property
// connections, and computations. The project resolves indirect
// references for the computation graph, persists entity dicts through
// a [storage.Store] as they change, cascades deletes across dependents
// with undo records, and funnels background change notifications
// through a bounded queue drained by the single mutating goroutine.
package project

import (
	"fmt"

	"cogentcore.org/loom/base/errors"
	"cogentcore.org/loom/compute"
	"cogentcore.org/loom/events"
	"cogentcore.org/loom/item"
	"cogentcore.org/loom/persist"
	"cogentcore.org/loom/ref"
	"cogentcore.org/loom/storage"
	"cogentcore.org/loom/structure"
	"github.com/google/uuid"
)

// Collection names used in storage.
const (
	CollectionDataItems    = "data_items"
	CollectionDisplayItems = "display_items"
	CollectionStructures   = "data_structures"
	CollectionComputations = "computations"
	CollectionConnections  = "connections"
)

// Project owns the entity collections and the machinery around them.
// All structural mutation goes through project methods; the collection
// fields are exported for iteration and lookup only.
type Project struct {

	// DataItems holds the data items, in order.
	DataItems persist.List[*item.DataItem]

	// DisplayItems holds the display items, in order.
	DisplayItems persist.List[*item.DisplayItem]

	// Structures holds the data structures, in order.
	Structures persist.List[*structure.Data]

	// Computations holds the computations, in order.
	Computations persist.List[*compute.Computation]

	// Connections holds the property connections, in order.
	Connections persist.List[*Connection]

	store   storage.Store
	pending *events.Queue[uuid.UUID]

	// inserted reports every insertion project-wide; unresolved slots
	// listen to retry binding.
	inserted events.Event[uuid.UUID]

	// removed reports every removal project-wide, after detachment, so
	// dependent bounds can request rebind.
	removed events.Event[uuid.UUID]

	// watches holds the write-through and child listeners per entity.
	watches map[uuid.UUID][]*events.Listener

	closed bool
}

// NewProject returns an empty project persisting through the given
// store. A nil store selects a fresh in-memory store. The project does
// not own the store; the caller closes it after closing the project.
func NewProject(store storage.Store) *Project {
	if store == nil {
		store = storage.NewMemory()
	}
	return &Project{
		store:   store,
		pending: events.NewQueue[uuid.UUID](0),
		watches: map[uuid.UUID][]*events.Listener{},
	}
}

// Load builds a project from the entities persisted in the store.
// Collections load in dependency order; slots that resolve forward
// references retry as later entities are inserted.
func Load(store storage.Store) (*Project, error) {
	p := NewProject(store)
	for _, dict := range store.ReadAll(CollectionDataItems) {
		di, err := readAs[*item.DataItem](dict)
		if err != nil {
			return nil, err
		}
		p.AppendDataItem(di)
	}
	for _, dict := range store.ReadAll(CollectionDisplayItems) {
		dsp, err := readAs[*item.DisplayItem](dict)
		if err != nil {
			return nil, err
		}
		p.AppendDisplayItem(dsp)
	}
	for _, dict := range store.ReadAll(CollectionStructures) {
		s, err := readAs[*structure.Data](dict)
		if err != nil {
			return nil, err
		}
		p.AppendStructure(s)
	}
	for _, dict := range store.ReadAll(CollectionConnections) {
		conn, err := readAs[*Connection](dict)
		if err != nil {
			return nil, err
		}
		p.AppendConnection(conn)
	}
	for _, dict := range store.ReadAll(CollectionComputations) {
		c, err := readAs[*compute.Computation](dict)
		if err != nil {
			return nil, err
		}
		p.AppendComputation(c)
	}
	return p, nil
}

func readAs[T persist.Object](dict map[string]any) (T, error) {
	var zero T
	obj, err := persist.ReadNew(dict)
	if err != nil {
		return zero, err
	}
	t, ok := obj.(T)
	if !ok {
		return zero, fmt.Errorf("project: stored dict is %T, want %T", obj, zero)
	}
	return t, nil
}

// Store returns the backing store.
func (p *Project) Store() storage.Store { return p.store }

// SetQueueLimit replaces the pending-change queue with one holding at
// most limit entries. Call before wiring any background producer.
func (p *Project) SetQueueLimit(limit int) {
	p.pending = events.NewQueue[uuid.UUID](limit)
}

// ItemInserted implements [compute.Context]: the project-wide
// insertion event unresolved slots use to retry binding.
func (p *Project) ItemInserted() *events.Event[uuid.UUID] { return &p.inserted }

// AppendDataItem adds a data item at the end of its collection.
func (p *Project) AppendDataItem(di *item.DataItem) {
	p.InsertDataItem(p.DataItems.Len(), di)
}

// InsertDataItem adds a data item at the given index.
func (p *Project) InsertDataItem(idx int, di *item.DataItem) {
	p.DataItems.Insert(idx, di)
	p.watch(di, CollectionDataItems)
	p.inserted.Emit(di.UUID)
	p.write(CollectionDataItems, di)
}

// AppendDisplayItem adds a display item at the end of its collection.
func (p *Project) AppendDisplayItem(dsp *item.DisplayItem) {
	p.InsertDisplayItem(p.DisplayItems.Len(), dsp)
}

// InsertDisplayItem adds a display item at the given index. Its owned
// channels and graphics become reachable for resolution with it.
func (p *Project) InsertDisplayItem(idx int, dsp *item.DisplayItem) {
	p.DisplayItems.Insert(idx, dsp)
	p.watch(dsp, CollectionDisplayItems)
	p.watchDisplayChildren(dsp)
	for _, id := range dsp.ChildUUIDs() {
		p.inserted.Emit(id)
	}
	p.inserted.Emit(dsp.UUID)
	p.write(CollectionDisplayItems, dsp)
}

// AppendStructure adds a data structure at the end of its collection
// and binds its reference proxies against this project.
func (p *Project) AppendStructure(s *structure.Data) {
	p.InsertStructure(p.Structures.Len(), s)
}

// InsertStructure adds a data structure at the given index.
func (p *Project) InsertStructure(idx int, s *structure.Data) {
	p.Structures.Insert(idx, s)
	if !s.IsBound() {
		s.Bind(p.lookupObject)
	}
	p.watch(s, CollectionStructures)
	p.inserted.Emit(s.UUID)
	p.write(CollectionStructures, s)
}

// AppendConnection adds a property connection at the end of its
// collection and binds both of its ends against this project.
func (p *Project) AppendConnection(conn *Connection) {
	p.InsertConnection(p.Connections.Len(), conn)
}

// InsertConnection adds a property connection at the given index.
func (p *Project) InsertConnection(idx int, conn *Connection) {
	p.Connections.Insert(idx, conn)
	if !conn.IsBound() {
		conn.Bind(p)
	}
	p.watch(conn, CollectionConnections)
	p.inserted.Emit(conn.UUID)
	p.write(CollectionConnections, conn)
}

// AppendComputation adds a computation at the end of its collection
// and binds its slots against this project.
func (p *Project) AppendComputation(c *compute.Computation) {
	p.InsertComputation(p.Computations.Len(), c)
}

// InsertComputation adds a computation at the given index.
func (p *Project) InsertComputation(idx int, c *compute.Computation) {
	p.Computations.Insert(idx, c)
	if !c.IsBound() {
		c.Bind(p)
	}
	p.watch(c, CollectionComputations)
	p.inserted.Emit(c.UUID)
	p.write(CollectionComputations, c)
}

// RemoveDataItem removes a data item without cascading: dependents
// stay and become unresolved. Removing a non-member panics.
func (p *Project) RemoveDataItem(di *item.DataItem) {
	p.removeEntity(CollectionDataItems, di, nil, func() {
		p.DataItems.Remove(di)
	}, nil)
}

// RemoveDisplayItem removes a display item without cascading.
func (p *Project) RemoveDisplayItem(dsp *item.DisplayItem) {
	p.removeEntity(CollectionDisplayItems, dsp, nil, func() {
		p.DisplayItems.Remove(dsp)
	}, dsp.ChildUUIDs())
}

// RemoveStructure removes a data structure without cascading.
func (p *Project) RemoveStructure(s *structure.Data) {
	p.removeEntity(CollectionStructures, s, s.Unbind, func() {
		p.Structures.Remove(s)
	}, nil)
}

// RemoveConnection removes a property connection.
func (p *Project) RemoveConnection(conn *Connection) {
	p.removeEntity(CollectionConnections, conn, conn.Unbind, func() {
		p.Connections.Remove(conn)
	}, nil)
}

// RemoveComputation removes a computation without cascading.
func (p *Project) RemoveComputation(c *compute.Computation) {
	p.removeEntity(CollectionComputations, c, c.Unbind, func() {
		p.Computations.Remove(c)
	}, c.ChildUUIDs())
}

// removeEntity runs the removal sequence: detach, collection removal
// (which runs the entity's hook and fires the collection
// notification), the project-wide removed events, storage delete to
// trash, close.
func (p *Project) removeEntity(collection string, obj persist.Object, detach func(), listRemove func(), childIDs []uuid.UUID) {
	if detach != nil {
		detach()
	}
	p.unwatch(obj)
	listRemove()
	for _, id := range childIDs {
		p.removed.Emit(id)
	}
	u := obj.AsBase().UUID
	p.removed.Emit(u)
	errors.Log(p.store.Delete(collection, u))
	obj.Close()
}

// write persists the entity's current dict.
func (p *Project) write(collection string, obj persist.Object) {
	errors.Log(p.store.Write(collection, obj.AsBase().UUID, obj.WriteDict()))
}

// watch wires write-through: any property change persists the
// entity's dict. Computations also persist on mutation notifications,
// which cover edits to their owned slots.
func (p *Project) watch(obj persist.Object, collection string) {
	u := obj.AsBase().UUID
	wires := []*events.Listener{
		obj.AsBase().PropertyChanged.Listen(func(string) {
			p.write(collection, obj)
		}),
	}
	if c, ok := obj.(*compute.Computation); ok {
		wires = append(wires,
			c.Mutated.Listen(func() {
				p.write(collection, c)
			}),
			c.OutputChanged.Listen(func() {
				p.write(collection, c)
			}),
		)
	}
	p.watches[u] = append(p.watches[u], wires...)
}

// watchDisplayChildren wires the display's owned channels and graphics
// so their property changes persist the display's dict, and re-wires
// whenever the child lists change.
func (p *Project) watchDisplayChildren(dsp *item.DisplayItem) {
	for _, ch := range dsp.DataChannels.Items() {
		p.watchChild(dsp, ch)
	}
	for _, g := range dsp.Graphics.Items() {
		p.watchChild(dsp, g)
	}
	p.watches[dsp.UUID] = append(p.watches[dsp.UUID],
		dsp.DataChannels.Inserted.Listen(func(ii persist.ItemIndex[*item.DataChannel]) {
			p.watchChild(dsp, ii.Item)
			p.inserted.Emit(ii.Item.UUID)
		}),
		dsp.Graphics.Inserted.Listen(func(ii persist.ItemIndex[*item.Graphic]) {
			p.watchChild(dsp, ii.Item)
			p.inserted.Emit(ii.Item.UUID)
		}),
		dsp.DataChannels.Removed.Listen(func(ii persist.ItemIndex[*item.DataChannel]) {
			p.unwatch(ii.Item)
			p.removed.Emit(ii.Item.UUID)
		}),
		dsp.Graphics.Removed.Listen(func(ii persist.ItemIndex[*item.Graphic]) {
			p.unwatch(ii.Item)
			p.removed.Emit(ii.Item.UUID)
		}),
	)
}

// watchChild persists the owning display when a child changes. The
// wires live under the child's UUID so removal stops them with it.
func (p *Project) watchChild(dsp *item.DisplayItem, child persist.Object) {
	u := child.AsBase().UUID
	p.watches[u] = append(p.watches[u],
		child.AsBase().PropertyChanged.Listen(func(string) {
			p.write(CollectionDisplayItems, dsp)
		}),
	)
}

func (p *Project) unwatch(obj persist.Object) {
	u := obj.AsBase().UUID
	for _, w := range p.watches[u] {
		w.Close()
	}
	delete(p.watches, u)
}

// Contains reports whether an entity with the given UUID is in any
// collection, including display item children.
func (p *Project) Contains(u uuid.UUID) bool {
	if p.DataItems.Contains(u) || p.DisplayItems.Contains(u) ||
		p.Structures.Contains(u) || p.Computations.Contains(u) ||
		p.Connections.Contains(u) {
		return true
	}
	ch, _ := p.channelByUUID(u)
	if ch != nil {
		return true
	}
	g, _ := p.graphicByUUID(u)
	return g != nil
}

// channelByUUID finds a display data channel and its owning display.
func (p *Project) channelByUUID(u uuid.UUID) (*item.DataChannel, *item.DisplayItem) {
	for _, dsp := range p.DisplayItems.Items() {
		if ch, ok := dsp.DataChannels.ByUUID(u); ok {
			return ch, dsp
		}
	}
	return nil, nil
}

// graphicByUUID finds a graphic and its owning display.
func (p *Project) graphicByUUID(u uuid.UUID) (*item.Graphic, *item.DisplayItem) {
	for _, dsp := range p.DisplayItems.Items() {
		if g, ok := dsp.Graphics.ByUUID(u); ok {
			return g, dsp
		}
	}
	return nil, nil
}

// lookupObject resolves a specifier to its live object, for the
// value-only reference proxies of data structures.
func (p *Project) lookupObject(spec ref.Specifier) persist.Object {
	switch spec.Type {
	case ref.TypeDataItem:
		if di, ok := p.DataItems.ByUUID(spec.UUID); ok {
			return di
		}
	case ref.TypeDisplayItem:
		if dsp, ok := p.DisplayItems.ByUUID(spec.UUID); ok {
			return dsp
		}
	case ref.TypeDataSource:
		if ch, _ := p.channelByUUID(spec.UUID); ch != nil {
			return ch
		}
	case ref.TypeGraphic:
		if g, _ := p.graphicByUUID(spec.UUID); g != nil {
			return g
		}
	case ref.TypeStructure:
		if s, ok := p.Structures.ByUUID(spec.UUID); ok {
			return s
		}
	}
	return nil
}

// SpecifierFor returns the specifier referencing the given entity, or
// the zero specifier for entities that cannot be referenced.
func (p *Project) SpecifierFor(obj persist.Object) ref.Specifier {
	switch o := obj.(type) {
	case *item.DataItem:
		return ref.New(ref.TypeDataItem, o.UUID)
	case *item.DisplayItem:
		return ref.New(ref.TypeDisplayItem, o.UUID)
	case *item.DataChannel:
		return ref.New(ref.TypeDataSource, o.UUID)
	case *item.Graphic:
		return ref.New(ref.TypeGraphic, o.UUID)
	case *structure.Data:
		return ref.New(ref.TypeStructure, o.UUID)
	case *compute.Variable:
		return ref.New(ref.TypeVariable, o.UUID)
	}
	return ref.Specifier{}
}

// Close closes every entity, most dependent collections first, and
// stops the write-through listeners. The backing store stays open for
// the caller to flush and close. Closing twice panics.
func (p *Project) Close() {
	if p.closed {
		panic("project: closed twice")
	}
	p.closed = true
	for _, wires := range p.watches {
		for _, w := range wires {
			w.Close()
		}
	}
	p.watches = map[uuid.UUID][]*events.Listener{}
	for _, c := range p.Computations.Items() {
		c.Close()
	}
	for _, conn := range p.Connections.Items() {
		conn.Close()
	}
	for _, s := range p.Structures.Items() {
		s.Close()
	}
	for _, dsp := range p.DisplayItems.Items() {
		dsp.Close()
	}
	for _, di := range p.DataItems.Items() {
		di.Close()
	}
}
