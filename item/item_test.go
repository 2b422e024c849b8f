// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package item_test

import (
	"testing"

	"cogentcore.org/loom/item"
	"cogentcore.org/loom/persist"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataItemNotify(t *testing.T) {
	di := item.NewDataItem(item.NewData([]float64{5}))
	dataChanged := 0
	var props []string
	di.DataChanged.Listen(func() { dataChanged++ })
	di.PropertyChanged.Listen(func(name string) { props = append(props, name) })

	di.SetTitle("scan")
	di.SetData(item.NewData([]float64{6}))
	di.NotifyDataChanged()

	assert.Equal(t, 2, dataChanged)
	assert.Equal(t, []string{"title", "data", "data"}, props)
	assert.False(t, di.DataModified.IsZero())
}

func TestDataItemRoundTrip(t *testing.T) {
	di := item.NewDataItem(item.NewData([]float64{1, 2}))
	di.Title = "scan"

	obj, err := persist.ReadNew(di.WriteDict())
	require.NoError(t, err)
	got, ok := obj.(*item.DataItem)
	require.True(t, ok)
	assert.Equal(t, di.UUID, got.UUID)
	assert.Equal(t, "scan", got.Title)
	require.NotNil(t, got.Data)
	assert.Equal(t, []float64{1, 2}, got.Data.Values)
}

func TestDataItemCopyFrom(t *testing.T) {
	src := item.NewDataItem(item.NewData([]float64{1, 2}))
	src.Title = "src"
	dst := item.NewDataItem(nil)
	origUUID := dst.UUID

	dst.CopyFrom(src)
	assert.Equal(t, origUUID, dst.UUID, "identity must not be copied")
	assert.Equal(t, "src", dst.Title)
	require.NotNil(t, dst.Data)
	dst.Data.Values[0] = 99
	assert.Equal(t, 1.0, src.Data.Values[0], "data must not alias")
}

func TestDataChannelRePoint(t *testing.T) {
	ch := item.NewDataChannel(uuid.New())
	var props []string
	ch.PropertyChanged.Listen(func(name string) { props = append(props, name) })
	next := uuid.New()
	ch.SetDataItemUUID(next)
	assert.Equal(t, next, ch.DataItemUUID)
	assert.Equal(t, []string{"data_item_uuid"}, props)
}

func TestDisplayItemChildren(t *testing.T) {
	di := item.NewDataItem(item.NewData([]float64{5}))
	dsp := item.NewDisplayItemFor(di)
	g := item.NewGraphic(item.GraphicRect, item.Rect{X: 0.1, Y: 0.1, W: 0.5, H: 0.5})
	dsp.AddGraphic(g)

	require.Equal(t, 1, dsp.DataChannels.Len())
	ch := dsp.DataChannels.At(0)
	assert.Equal(t, di.UUID, ch.DataItemUUID)

	kids := dsp.ChildUUIDs()
	assert.Contains(t, kids, ch.UUID)
	assert.Contains(t, kids, g.UUID)

	obj, err := persist.ReadNew(dsp.WriteDict())
	require.NoError(t, err)
	got, ok := obj.(*item.DisplayItem)
	require.True(t, ok)
	assert.Equal(t, dsp.UUID, got.UUID)
	require.Equal(t, 1, got.DataChannels.Len())
	assert.Equal(t, di.UUID, got.DataChannels.At(0).DataItemUUID)
	require.Equal(t, 1, got.Graphics.Len())
	assert.Equal(t, g.Bounds, got.Graphics.At(0).Bounds)

	dsp.Close()
	assert.True(t, ch.IsClosed())
	assert.True(t, g.IsClosed())
}

func TestGraphicNotify(t *testing.T) {
	g := item.NewGraphic(item.GraphicRect, item.Rect{})
	assert.True(t, g.Bounds.IsZero())
	n := 0
	g.PropertyChanged.Listen(func(string) { n++ })
	g.SetBounds(item.Rect{X: 0.2, Y: 0.2, W: 0.3, H: 0.3})
	g.SetLabel("crop")
	assert.Equal(t, 2, n)
	assert.False(t, g.Bounds.IsZero())
}
