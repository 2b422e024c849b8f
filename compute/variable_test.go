// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compute_test

import (
	"testing"

	"cogentcore.org/loom/compute"
	"cogentcore.org/loom/persist"
	"cogentcore.org/loom/ref"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariableLiteral(t *testing.T) {
	ctx := newTestContext()
	v := compute.NewVariable("k", compute.ValueIntegral, int64(2))
	assert.Equal(t, "k", v.Name())
	assert.Equal(t, "k", v.Label(), "label defaults to the name")
	v.SetLabel("scale")
	assert.Equal(t, "scale", v.Label())

	assert.Nil(t, v.ResolvedValue())
	v.Attach(ctx)
	assert.Equal(t, int64(2), v.ResolvedValue())

	changes := 0
	v.Changed.Listen(func() { changes++ })
	v.SetValue(int64(3))
	assert.Equal(t, int64(3), v.ResolvedValue())
	assert.Greater(t, changes, 0)

	assert.Panics(t, func() { v.Attach(ctx) })
	v.Detach()
	assert.Nil(t, v.ResolvedValue())
	v.Close()
}

func TestVariableExclusiveForms(t *testing.T) {
	u := uuid.New()
	v := compute.NewVariable("x", compute.ValueReal, 1.5)

	// Pointing the variable at an object drops the literal form.
	v.SetSpecifier(ref.New(ref.TypeDataItem, u))
	assert.Empty(t, v.ValueType())
	assert.Nil(t, v.Value())
	assert.Equal(t, ref.New(ref.TypeDataItem, u), v.Specifier())

	// Making it a list drops the single specifier.
	v.SetObjectSpecifiers([]ref.Specifier{ref.New(ref.TypeXData, u)})
	assert.True(t, v.IsList())
	assert.True(t, v.Specifier().IsZero())

	// And a literal value type drops the list.
	v.SetValueType(compute.ValueString)
	assert.False(t, v.IsList())
	assert.Empty(t, v.ObjectSpecifiers())
}

func TestVariableRebindSignals(t *testing.T) {
	v := compute.NewInputItem("a", ref.New(ref.TypeDataItem, uuid.New()), ref.Specifier{}, "")
	rebinds := 0
	v.RebindRequested.Listen(func() { rebinds++ })

	v.SetSpecifier(ref.New(ref.TypeDataItem, uuid.New()))
	assert.Equal(t, 1, rebinds)
	v.SetSecondarySpecifier(ref.New(ref.TypeGraphic, uuid.New()))
	assert.Equal(t, 2, rebinds)
	v.SetPropertyName("title")
	assert.Equal(t, 3, rebinds)
	v.SetValueType(compute.ValueReal)
	assert.Equal(t, 4, rebinds)
	v.Close()
}

func TestVariableDict(t *testing.T) {
	u := uuid.New()
	g := uuid.New()

	v := compute.NewInputItem("a", ref.New(ref.TypeXData, u), ref.New(ref.TypeGraphic, g), "bounds")
	v.SetLabel("Source A")
	obj, err := persist.ReadNew(v.WriteDict())
	require.NoError(t, err)
	got, ok := obj.(*compute.Variable)
	require.True(t, ok)
	assert.Equal(t, v.UUID, got.UUID)
	assert.Equal(t, "a", got.Name())
	assert.Equal(t, "Source A", got.Label())
	assert.Equal(t, ref.New(ref.TypeXData, u), got.Specifier())
	assert.Equal(t, ref.New(ref.TypeGraphic, g), got.SecondarySpecifier())
	assert.Equal(t, "bounds", got.PropertyName())
	assert.False(t, got.IsList())

	uuids := got.ReferencedUUIDs()
	assert.Contains(t, uuids, u)
	assert.Contains(t, uuids, g)
}

func TestVariableDictValues(t *testing.T) {
	cases := []struct {
		valueType string
		value     any
	}{
		{compute.ValueBoolean, true},
		{compute.ValueIntegral, int64(-4)},
		{compute.ValueReal, 2.5},
		{compute.ValueComplex, complex(1.5, -0.5)},
		{compute.ValueString, "text"},
	}
	for _, tc := range cases {
		v := compute.NewVariable("v", tc.valueType, tc.value)
		obj, err := persist.ReadNew(v.WriteDict())
		require.NoError(t, err)
		got := obj.(*compute.Variable)
		assert.Equal(t, tc.valueType, got.ValueType())
		assert.Equal(t, tc.value, got.Value(), "value type %s", tc.valueType)
	}
}

func TestOutputDict(t *testing.T) {
	u1 := uuid.New()
	u2 := uuid.New()

	single := compute.NewOutputItem("result", ref.New(ref.TypeDataItem, u1))
	obj, err := persist.ReadNew(single.WriteDict())
	require.NoError(t, err)
	got := obj.(*compute.Output)
	assert.Equal(t, "result", got.Name())
	assert.Equal(t, ref.New(ref.TypeDataItem, u1), got.Specifier())
	assert.False(t, got.IsList())

	list := compute.NewListOutput("results", []ref.Specifier{
		ref.New(ref.TypeDataItem, u1),
		ref.New(ref.TypeDataItem, u2),
	})
	obj, err = persist.ReadNew(list.WriteDict())
	require.NoError(t, err)
	got = obj.(*compute.Output)
	assert.True(t, got.IsList())
	assert.Len(t, got.Specifiers(), 2)

	empty := compute.NewListOutput("results", nil)
	assert.True(t, empty.IsList())
	obj, err = persist.ReadNew(empty.WriteDict())
	require.NoError(t, err)
	got = obj.(*compute.Output)
	assert.True(t, got.IsList(), "list-ness survives a round trip even when empty")
}
