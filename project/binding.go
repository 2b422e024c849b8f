// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package project

import (
	"cogentcore.org/loom/item"
	"cogentcore.org/loom/persist"
	"cogentcore.org/loom/ref"
	"cogentcore.org/loom/structure"
	"github.com/google/uuid"
)

// Resolve implements [ref.Resolver] against the project's collections.
// Object specifiers bind to the entity itself or to one named property
// of it; data facet specifiers bind to derived data of a display data
// channel, accepting a data item UUID directly as well. Unknown or
// dangling targets resolve to nil.
func (p *Project) Resolve(spec, secondary ref.Specifier, property string) ref.Bound {
	if spec.IsZero() {
		return nil
	}
	if property == "" {
		property = spec.Property
	}
	switch spec.Type {
	case ref.TypeVariable:
		// Only computation-local resolution answers variable specifiers.
		return nil
	case ref.TypeDataItem, ref.TypeDisplayItem, ref.TypeDataSource,
		ref.TypeGraphic, ref.TypeStructure:
		obj := p.lookupObject(spec)
		if obj == nil {
			return nil
		}
		if property != "" {
			return p.bindProperty(obj, property)
		}
		return p.bindObject(obj)
	case ref.TypeXData, ref.TypeDisplayXData,
		ref.TypeCroppedXData, ref.TypeCroppedDisplayXData,
		ref.TypeFilterXData, ref.TypeFilteredXData:
		return p.bindData(spec, secondary)
	}
	return nil
}

// objectBound binds a specifier to a live entity. The value is the
// entity itself; content changes forward as value changes, and removal
// of the entity invalidates the binding.
type objectBound struct {
	ref.BoundBase
	obj persist.Object
}

func (p *Project) bindObject(obj persist.Object) ref.Bound {
	b := &objectBound{obj: obj}
	u := obj.AsBase().UUID
	b.Watch(p.removed.Listen(func(id uuid.UUID) {
		if id == u {
			b.NeedsRebind().Emit()
		}
	}))
	switch o := obj.(type) {
	case *item.DataItem:
		b.Watch(o.DataChanged.Listen(b.Changed().Emit))
	case *structure.Data:
		b.Watch(o.Changed.Listen(b.Changed().Emit))
	case *item.DataChannel:
		// Re-pointing a channel changes what it stands for, not its
		// content.
		b.Watch(o.PropertyChanged.Listen(func(name string) {
			if name == "data_item_uuid" {
				b.NeedsRebind().Emit()
			} else {
				b.Changed().Emit()
			}
		}))
	default:
		b.Watch(obj.AsBase().PropertyChanged.Listen(func(string) {
			b.Changed().Emit()
		}))
	}
	return b
}

func (b *objectBound) Value() any { return b.obj }

func (b *objectBound) Objects() []persist.Object { return []persist.Object{b.obj} }

// propertyBound binds one named property of an entity. Resolution
// fails when the entity has no such property.
type propertyBound struct {
	ref.BoundBase
	obj      persist.Object
	accessor persist.PropertyAccessor
	property string
}

func (p *Project) bindProperty(obj persist.Object, property string) ref.Bound {
	accessor, ok := obj.(persist.PropertyAccessor)
	if !ok {
		return nil
	}
	if _, ok := accessor.Property(property); !ok {
		return nil
	}
	b := &propertyBound{obj: obj, accessor: accessor, property: property}
	u := obj.AsBase().UUID
	b.Watch(
		p.removed.Listen(func(id uuid.UUID) {
			if id == u {
				b.NeedsRebind().Emit()
			}
		}),
		obj.AsBase().PropertyChanged.Listen(func(name string) {
			if name == b.property {
				b.Changed().Emit()
			}
		}),
	)
	return b
}

func (b *propertyBound) Value() any {
	v, _ := b.accessor.Property(b.property)
	return v
}

func (b *propertyBound) Objects() []persist.Object { return []persist.Object{b.obj} }

// dataBound binds a data facet specifier: the data of a channel's data
// item, optionally cropped by a secondary graphic or masked by the
// owning display's filter graphics. The value is derived fresh on
// every read, so it is never stale.
type dataBound struct {
	ref.BoundBase
	kind    ref.Type
	item    *item.DataItem
	channel *item.DataChannel
	display *item.DisplayItem
	crop    *item.Graphic
}

func (p *Project) bindData(spec, secondary ref.Specifier) ref.Bound {
	di, ch, dsp := p.dataSource(spec.UUID)
	if di == nil {
		return nil
	}
	var crop *item.Graphic
	switch spec.Type {
	case ref.TypeCroppedXData, ref.TypeCroppedDisplayXData:
		if !secondary.IsZero() {
			crop, _ = p.graphicByUUID(secondary.UUID)
			if crop == nil {
				return nil
			}
		}
	}
	b := &dataBound{kind: spec.Type, item: di, channel: ch, display: dsp, crop: crop}
	b.Watch(
		p.removed.Listen(func(id uuid.UUID) {
			if b.dependsOn(id) {
				b.NeedsRebind().Emit()
			}
		}),
		di.DataChanged.Listen(b.Changed().Emit),
	)
	if ch != nil {
		b.Watch(ch.PropertyChanged.Listen(func(name string) {
			if name == "data_item_uuid" {
				b.NeedsRebind().Emit()
			}
		}))
	}
	if crop != nil {
		b.Watch(crop.PropertyChanged.Listen(func(name string) {
			if name == "bounds" {
				b.Changed().Emit()
			}
		}))
	}
	if dsp != nil && (spec.Type == ref.TypeFilterXData || spec.Type == ref.TypeFilteredXData) {
		// Adding or removing a graphic changes the mask membership, so
		// the binding rewires itself; moving one only changes the value.
		b.Watch(dsp.PropertyChanged.Listen(func(name string) {
			if name == "graphics" {
				b.NeedsRebind().Emit()
			}
		}))
		for _, g := range b.maskGraphics() {
			b.Watch(g.PropertyChanged.Listen(func(name string) {
				if name == "bounds" {
					b.Changed().Emit()
				}
			}))
		}
	}
	return b
}

// dataSource resolves the target of a data facet specifier: a display
// data channel and through it the displayed data item, or a data item
// directly.
func (p *Project) dataSource(u uuid.UUID) (*item.DataItem, *item.DataChannel, *item.DisplayItem) {
	if ch, dsp := p.channelByUUID(u); ch != nil {
		di, _ := p.DataItems.ByUUID(ch.DataItemUUID)
		if di == nil {
			return nil, nil, nil
		}
		return di, ch, dsp
	}
	di, _ := p.DataItems.ByUUID(u)
	return di, nil, nil
}

func (b *dataBound) dependsOn(id uuid.UUID) bool {
	if id == b.item.UUID {
		return true
	}
	if b.channel != nil && id == b.channel.UUID {
		return true
	}
	if b.crop != nil && id == b.crop.UUID {
		return true
	}
	return false
}

func (b *dataBound) maskGraphics() []*item.Graphic {
	if b.display == nil {
		return nil
	}
	var out []*item.Graphic
	for _, g := range b.display.Graphics.Items() {
		if g.GraphicType == item.GraphicEllipse {
			out = append(out, g)
		}
	}
	return out
}

func (b *dataBound) Value() any {
	d := b.item.Data
	if d == nil {
		return nil
	}
	switch b.kind {
	case ref.TypeCroppedXData, ref.TypeCroppedDisplayXData:
		if b.crop != nil {
			return item.Crop(d, b.crop.Bounds)
		}
		return d
	case ref.TypeFilterXData:
		return item.Mask(d.Shape, b.maskGraphics()...)
	case ref.TypeFilteredXData:
		return item.ApplyMask(d, item.Mask(d.Shape, b.maskGraphics()...))
	}
	return d
}

func (b *dataBound) Objects() []persist.Object {
	objs := []persist.Object{b.item}
	if b.crop != nil {
		objs = append(objs, b.crop)
	}
	return objs
}
