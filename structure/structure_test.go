// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package structure_test

import (
	"testing"

	"cogentcore.org/loom/item"
	"cogentcore.org/loom/persist"
	"cogentcore.org/loom/ref"
	"cogentcore.org/loom/structure"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueDicts(t *testing.T) {
	spec := ref.New(ref.TypeDataItem, uuid.New())
	specs := []ref.Specifier{spec, ref.New(ref.TypeGraphic, uuid.New())}

	tests := []structure.Value{
		structure.ScalarValue(3.5),
		structure.ScalarValue("interval"),
		structure.ScalarValue(true),
		structure.SpecifierValue(spec),
		structure.SpecifierListValue(specs),
	}
	for _, v := range tests {
		got, err := structure.ValueFromDict(v.ToDict())
		require.NoError(t, err)
		assert.True(t, v.Equal(got), "round trip of %v", v.Kind)
	}

	_, err := structure.ValueFromDict(map[string]any{"kind": "nope"})
	assert.Error(t, err)
	_, err = structure.ValueFromDict(map[string]any{"value": 1})
	assert.Error(t, err)
}

func TestProperties(t *testing.T) {
	s := structure.New("calibration")
	assert.Equal(t, "calibration", s.StructureType)

	changes := 0
	s.Changed.Listen(func() { changes++ })
	var notified []string
	s.PropertyChanged.Listen(func(name string) { notified = append(notified, name) })

	s.SetPropertyValue("offset", 1.5)
	s.SetPropertyValue("scale", 2.0)
	s.SetPropertyValue("units", "nm")

	v, ok := s.ScalarValue("offset")
	require.True(t, ok)
	assert.Equal(t, 1.5, v)
	_, ok = s.ScalarValue("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"offset", "scale", "units"}, s.PropertyNames())
	assert.Equal(t, []string{"offset", "scale", "units"}, notified)
	assert.Equal(t, 3, changes)

	s.SetPropertyValue("offset", 2.5)
	v, _ = s.ScalarValue("offset")
	assert.Equal(t, 2.5, v)
	assert.Equal(t, 4, changes)

	s.RemovePropertyValue("units")
	assert.Equal(t, []string{"offset", "scale"}, s.PropertyNames())
	assert.Equal(t, 5, changes)

	// Removing an absent property is silent.
	s.RemovePropertyValue("units")
	assert.Equal(t, 5, changes)
}

func TestReferences(t *testing.T) {
	di := item.NewDataItem(nil)
	gr := item.NewGraphic(item.GraphicRect, item.Rect{X: 0.25, Y: 0.25, W: 0.5, H: 0.5})
	byUUID := map[uuid.UUID]persist.Object{di.UUID: di, gr.UUID: gr}
	lookup := func(spec ref.Specifier) persist.Object { return byUUID[spec.UUID] }

	s := structure.New("roi_group")
	s.SetReferencedObject("source", ref.New(ref.TypeDataItem, di.UUID))
	s.SetReferencedObjects("regions", []ref.Specifier{
		ref.New(ref.TypeGraphic, gr.UUID),
		ref.New(ref.TypeGraphic, uuid.New()),
	})

	// Unbound structures have values but no live references.
	assert.False(t, s.IsBound())
	assert.Nil(t, s.ReferencedObject("source"))
	assert.Nil(t, s.ReferencedObjects("regions"))

	s.Bind(lookup)
	assert.True(t, s.IsBound())
	assert.Same(t, di, s.ReferencedObject("source"))
	objs := s.ReferencedObjects("regions")
	require.Len(t, objs, 2)
	assert.Same(t, gr, objs[0])
	assert.Nil(t, objs[1])

	// Scalar properties never resolve as references.
	s.SetPropertyValue("count", 2)
	assert.Nil(t, s.ReferencedObject("count"))

	// Re-pointing a bound reference resolves through the new target.
	di2 := item.NewDataItem(nil)
	byUUID[di2.UUID] = di2
	s.SetReferencedObject("source", ref.New(ref.TypeDataItem, di2.UUID))
	assert.Same(t, di2, s.ReferencedObject("source"))

	uuids := s.ReferencedUUIDs()
	require.Len(t, uuids, 3)
	assert.Contains(t, uuids, di2.UUID)
	assert.Contains(t, uuids, gr.UUID)

	s.Unbind()
	assert.Nil(t, s.ReferencedObject("source"))

	assert.Panics(t, func() {
		s.Bind(lookup)
		s.Bind(lookup)
	})
}

func TestStructureDict(t *testing.T) {
	spec := ref.New(ref.TypeDataItem, uuid.New())
	s := structure.New("calibration")
	s.SetPropertyValue("offset", 1.5)
	s.SetPropertyValue("units", "nm")
	s.SetReferencedObject("source", spec)

	obj, err := persist.ReadNew(s.WriteDict())
	require.NoError(t, err)
	got, ok := obj.(*structure.Data)
	require.True(t, ok)

	assert.Equal(t, s.UUID, got.UUID)
	assert.Equal(t, "calibration", got.StructureType)
	assert.Equal(t, []string{"offset", "source", "units"}, got.PropertyNames())
	v, ok := got.PropertyValue("source")
	require.True(t, ok)
	assert.Equal(t, structure.KindSpecifier, v.Kind)
	assert.Equal(t, spec, v.Specifier)

	sv, ok := got.ScalarValue("offset")
	require.True(t, ok)
	assert.Equal(t, 1.5, sv)
}

func TestStructureClose(t *testing.T) {
	s := structure.New("calibration")
	s.Bind(func(spec ref.Specifier) persist.Object { return nil })
	s.SetReferencedObject("source", ref.New(ref.TypeDataItem, uuid.New()))
	s.Close()
	assert.True(t, s.IsClosed())
	assert.False(t, s.IsBound())
}
