// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package project

import (
	"cogentcore.org/loom/base/errors"
	"cogentcore.org/loom/compute"
	"cogentcore.org/loom/item"
	"cogentcore.org/loom/persist"
	"cogentcore.org/loom/structure"
	"cogentcore.org/loom/undo"
	"github.com/google/uuid"
)

// DeleteDataItem removes the data item and every entity that
// transitively references it, dependents first, returning the undelete
// log that restores them all in reverse order.
func (p *Project) DeleteDataItem(di *item.DataItem) *undo.Log[*Project] {
	return p.cascadeDelete(di)
}

// DeleteDisplayItem cascade-removes the display item; references to
// its channels and graphics count as references to it.
func (p *Project) DeleteDisplayItem(dsp *item.DisplayItem) *undo.Log[*Project] {
	return p.cascadeDelete(dsp)
}

// DeleteStructure cascade-removes the data structure.
func (p *Project) DeleteStructure(s *structure.Data) *undo.Log[*Project] {
	return p.cascadeDelete(s)
}

// DeleteComputation cascade-removes the computation; references to its
// variables and outputs count as references to it.
func (p *Project) DeleteComputation(c *compute.Computation) *undo.Log[*Project] {
	return p.cascadeDelete(c)
}

// DeleteConnection cascade-removes the connection.
func (p *Project) DeleteConnection(conn *Connection) *undo.Log[*Project] {
	return p.cascadeDelete(conn)
}

func (p *Project) cascadeDelete(seed persist.Object) *undo.Log[*Project] {
	doomed := p.collectDoomed(seed)
	log := undo.NewLog[*Project]()
	for _, c := range p.Computations.Items() {
		if doomed[c] && c != seed {
			p.deleteOne(log, c)
		}
	}
	for _, conn := range p.Connections.Items() {
		if doomed[conn] && conn != seed {
			p.deleteOne(log, conn)
		}
	}
	for _, s := range p.Structures.Items() {
		if doomed[s] && s != seed {
			p.deleteOne(log, s)
		}
	}
	for _, dsp := range p.DisplayItems.Items() {
		if doomed[dsp] && dsp != seed {
			p.deleteOne(log, dsp)
		}
	}
	for _, di := range p.DataItems.Items() {
		if doomed[di] && di != seed {
			p.deleteOne(log, di)
		}
	}
	p.deleteOne(log, seed)
	return log
}

// collectDoomed returns the transitive closure of cascade-dependent
// entities seeded by one entity. Referencing any UUID belonging to a
// doomed entity, its channels and graphics, or its variables and
// outputs dooms the referencer too; a display item whose channel shows
// a doomed data item goes with it.
func (p *Project) collectDoomed(seed persist.Object) map[persist.Object]bool {
	doomed := map[persist.Object]bool{}
	ids := map[uuid.UUID]bool{}
	doom := func(obj persist.Object) {
		doomed[obj] = true
		ids[obj.AsBase().UUID] = true
		switch o := obj.(type) {
		case *item.DisplayItem:
			for _, id := range o.ChildUUIDs() {
				ids[id] = true
			}
		case *compute.Computation:
			for _, id := range o.ChildUUIDs() {
				ids[id] = true
			}
		}
	}
	references := func(refs []uuid.UUID) bool {
		for _, id := range refs {
			if ids[id] {
				return true
			}
		}
		return false
	}
	doom(seed)
	for changed := true; changed; {
		changed = false
		for _, c := range p.Computations.Items() {
			if !doomed[c] && references(c.ReferencedUUIDs()) {
				doom(c)
				changed = true
			}
		}
		for _, conn := range p.Connections.Items() {
			if !doomed[conn] && references(conn.ReferencedUUIDs()) {
				doom(conn)
				changed = true
			}
		}
		for _, s := range p.Structures.Items() {
			if !doomed[s] && references(s.ReferencedUUIDs()) {
				doom(s)
				changed = true
			}
		}
		for _, dsp := range p.DisplayItems.Items() {
			if doomed[dsp] {
				continue
			}
			for _, ch := range dsp.DataChannels.Items() {
				if ids[ch.DataItemUUID] {
					doom(dsp)
					changed = true
					break
				}
			}
		}
	}
	return doomed
}

// deleteOne records an undelete for the entity and removes it.
func (p *Project) deleteOne(log *undo.Log[*Project], obj persist.Object) {
	switch o := obj.(type) {
	case *compute.Computation:
		log.Append(&undeleteRecord{
			collection: CollectionComputations,
			index:      p.Computations.IndexOf(o.UUID),
			dict:       o.WriteDict(),
		})
		p.RemoveComputation(o)
	case *Connection:
		log.Append(&undeleteRecord{
			collection: CollectionConnections,
			index:      p.Connections.IndexOf(o.UUID),
			dict:       o.WriteDict(),
		})
		p.RemoveConnection(o)
	case *structure.Data:
		log.Append(&undeleteRecord{
			collection: CollectionStructures,
			index:      p.Structures.IndexOf(o.UUID),
			dict:       o.WriteDict(),
		})
		p.RemoveStructure(o)
	case *item.DisplayItem:
		log.Append(&undeleteRecord{
			collection: CollectionDisplayItems,
			index:      p.DisplayItems.IndexOf(o.UUID),
			dict:       o.WriteDict(),
		})
		p.RemoveDisplayItem(o)
	case *item.DataItem:
		log.Append(&undeleteRecord{
			collection: CollectionDataItems,
			index:      p.DataItems.IndexOf(o.UUID),
			dict:       o.WriteDict(),
		})
		p.RemoveDataItem(o)
	default:
		panic("project: cascade delete of unknown entity kind")
	}
}

// undeleteRecord restores one removed entity: the collection it was
// in, the index it occupied, and a snapshot of its persisted dict.
// Restoring prefers the dict in storage's trash, which it pops, so the
// trash never holds an entity that is live again.
type undeleteRecord struct {
	collection string
	index      int
	dict       map[string]any
}

// Undelete implements [undo.Record].
func (r *undeleteRecord) Undelete(p *Project) {
	dict := r.dict
	if u, err := persist.DictUUID(dict, "uuid"); err == nil {
		if entry, err := p.store.Restore(u); err == nil {
			dict = entry.Dict
		}
	}
	obj, err := persist.ReadNew(dict)
	if err != nil {
		errors.Log(err)
		return
	}
	switch o := obj.(type) {
	case *item.DataItem:
		p.InsertDataItem(min(r.index, p.DataItems.Len()), o)
	case *item.DisplayItem:
		p.InsertDisplayItem(min(r.index, p.DisplayItems.Len()), o)
	case *structure.Data:
		p.InsertStructure(min(r.index, p.Structures.Len()), o)
	case *Connection:
		p.InsertConnection(min(r.index, p.Connections.Len()), o)
	case *compute.Computation:
		p.InsertComputation(min(r.index, p.Computations.Len()), o)
	}
}

// Close implements [undo.Record]. The snapshot needs no teardown and
// the trash entry stays available for an explicit restore.
func (r *undeleteRecord) Close() {}
