// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package project_test

import (
	"testing"

	"cogentcore.org/loom/compute"
	"cogentcore.org/loom/item"
	"cogentcore.org/loom/project"
	"cogentcore.org/loom/ref"
	"cogentcore.org/loom/structure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCascadeDelete(t *testing.T) {
	p := project.NewProject(nil)
	d1 := item.NewDataItem(item.NewData([]float64{1, 2}))
	keep := item.NewDataItem(item.NewData([]float64{3}))
	out := item.NewDataItem(nil)
	p.AppendDataItem(d1)
	p.AppendDataItem(keep)
	p.AppendDataItem(out)

	c := mulComputation(ref.New(ref.TypeXData, d1.UUID), ref.New(ref.TypeDataItem, out.UUID))
	p.AppendComputation(c)

	s := structure.New("annotation")
	s.SetReferencedObject("subject", ref.New(ref.TypeDataItem, d1.UUID))
	p.AppendStructure(s)

	other := compute.NewComputation("invert(b)")
	other.CreateInputItem("b", ref.New(ref.TypeXData, keep.UUID), ref.Specifier{}, "")
	p.AppendComputation(other)

	log := p.DeleteDataItem(d1)
	assert.Equal(t, 3, log.Len())
	assert.False(t, p.DataItems.Contains(d1.UUID))
	assert.False(t, p.Computations.Contains(c.UUID))
	assert.False(t, p.Structures.Contains(s.UUID))

	// an unrelated computation and the output object stay
	assert.True(t, p.Computations.Contains(other.UUID))
	assert.True(t, p.DataItems.Contains(out.UUID))

	assert.True(t, p.Store().InTrash(d1.UUID))
	assert.True(t, p.Store().InTrash(c.UUID))
	assert.True(t, p.Store().InTrash(s.UUID))
	log.Close()
}

func TestUndoSymmetry(t *testing.T) {
	p := project.NewProject(nil)
	d1 := item.NewDataItem(item.NewData([]float64{5}))
	out := item.NewDataItem(nil)
	p.AppendDataItem(d1)
	p.AppendDataItem(out)
	dsp := item.NewDisplayItemFor(d1)
	p.AppendDisplayItem(dsp)
	c := mulComputation(ref.New(ref.TypeXData, d1.UUID), ref.New(ref.TypeDataItem, out.UUID))
	p.AppendComputation(c)
	require.True(t, c.IsResolved())

	log := p.DeleteDataItem(d1)
	require.Equal(t, 3, log.Len())
	assert.Equal(t, 1, p.DataItems.Len())
	assert.Equal(t, 0, p.DisplayItems.Len())
	assert.Equal(t, 0, p.Computations.Len())

	log.UndeleteAll(p)
	assert.Equal(t, 0, log.Len())
	require.True(t, p.DataItems.Contains(d1.UUID))
	require.True(t, p.DisplayItems.Contains(dsp.UUID))
	require.True(t, p.Computations.Contains(c.UUID))

	// the data item is back at its old index, out of the trash
	assert.Equal(t, d1.UUID, p.DataItems.At(0).UUID)
	assert.False(t, p.Store().InTrash(d1.UUID))

	// the restored computation is resolved again and evaluates as before
	c2, ok := p.Computations.ByUUID(c.UUID)
	require.True(t, ok)
	require.True(t, c2.IsResolved())
	p.Recompute(newEvaluator())
	outb, ok := p.DataItems.ByUUID(out.UUID)
	require.True(t, ok)
	assert.Equal(t, []float64{10}, outb.Data.Values)
}

func TestCascadeThroughComputationChildren(t *testing.T) {
	p := project.NewProject(nil)
	d1 := item.NewDataItem(nil)
	p.AppendDataItem(d1)
	c := compute.NewComputation("")
	k := c.CreateVariable("k", compute.ValueReal, 1.5)
	p.AppendComputation(c)

	// the connection names the computation's own variable, so it goes
	// down with the computation
	conn := project.NewPropertyConnection(
		ref.New(ref.TypeDataItem, d1.UUID), "title",
		ref.New(ref.TypeVariable, k.UUID), "value")
	p.AppendConnection(conn)

	log := p.DeleteComputation(c)
	assert.Equal(t, 2, log.Len())
	assert.False(t, p.Computations.Contains(c.UUID))
	assert.False(t, p.Connections.Contains(conn.UUID))
	assert.True(t, p.DataItems.Contains(d1.UUID))

	log.UndeleteAll(p)
	assert.True(t, p.Computations.Contains(c.UUID))
	assert.True(t, p.Connections.Contains(conn.UUID))
}

func TestCascadeThroughDisplayChildren(t *testing.T) {
	p := project.NewProject(nil)
	d1 := item.NewDataItem(item.NewData([]float64{1, 2, 3, 4}, 2, 2))
	p.AppendDataItem(d1)
	dsp := item.NewDisplayItemFor(d1)
	crop := item.NewGraphic(item.GraphicRect, item.Rect{W: 0.5, H: 0.5})
	dsp.AddGraphic(crop)
	p.AppendDisplayItem(dsp)
	ch := dsp.DataChannels.At(0)

	c := compute.NewComputation("src")
	c.CreateInputItem("src", ref.New(ref.TypeCroppedXData, ch.UUID), ref.New(ref.TypeGraphic, crop.UUID), "")
	p.AppendComputation(c)

	// deleting the display dooms the computation referencing its
	// channel and graphic, but not the data item
	log := p.DeleteDisplayItem(dsp)
	assert.Equal(t, 2, log.Len())
	assert.False(t, p.DisplayItems.Contains(dsp.UUID))
	assert.False(t, p.Computations.Contains(c.UUID))
	assert.True(t, p.DataItems.Contains(d1.UUID))
	log.Close()
}

func TestRemoveDoesNotCascade(t *testing.T) {
	p := project.NewProject(nil)
	d1 := item.NewDataItem(item.NewData([]float64{2}))
	out := item.NewDataItem(nil)
	p.AppendDataItem(d1)
	p.AppendDataItem(out)
	c := mulComputation(ref.New(ref.TypeXData, d1.UUID), ref.New(ref.TypeDataItem, out.UUID))
	p.AppendComputation(c)
	require.True(t, c.IsResolved())

	// plain removal leaves the dependent in place, unresolved
	p.RemoveDataItem(d1)
	assert.True(t, p.Computations.Contains(c.UUID))
	assert.False(t, c.IsResolved())
	assert.Nil(t, c.VariableByName("a").Bound())
}
