// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package item

import (
	"cogentcore.org/loom/persist"
	"github.com/google/uuid"
)

// DataChannel connects a display item to one data item it displays.
// The data item is referenced by UUID only; the live item is reached
// through the store. Channels are the targets of "data_source" and
// data facet references.
type DataChannel struct {
	persist.Base `copier:"-"`

	// DataItemUUID identifies the displayed data item.
	DataItemUUID uuid.UUID
}

func init() {
	persist.AddType("display_data_channel", func() persist.Object { return &DataChannel{} })
	persist.AddType("display_item", func() persist.Object { return &DisplayItem{} })
}

// NewDataChannel returns a channel displaying the given data item.
func NewDataChannel(dataItemUUID uuid.UUID) *DataChannel {
	ch := &DataChannel{DataItemUUID: dataItemUUID}
	ch.Init()
	return ch
}

// TypeTag implements [persist.Object].
func (ch *DataChannel) TypeTag() string { return "display_data_channel" }

// SetDataItemUUID re-points the channel at another data item and
// notifies. References bound to the channel see this as an identity
// change and rebind.
func (ch *DataChannel) SetDataItemUUID(u uuid.UUID) {
	ch.DataItemUUID = u
	ch.Notify("data_item_uuid")
}

// WriteDict implements [persist.Object].
func (ch *DataChannel) WriteDict() map[string]any {
	dict := ch.WriteBase(ch.TypeTag())
	dict["data_item_uuid"] = ch.DataItemUUID.String()
	return dict
}

// ReadDict implements [persist.Object].
func (ch *DataChannel) ReadDict(dict map[string]any) error {
	if err := ch.ReadBase(dict); err != nil {
		return err
	}
	u, err := persist.DictUUID(dict, "data_item_uuid")
	if err != nil {
		return err
	}
	ch.DataItemUUID = u
	return nil
}

// DisplayItem presents one or more data channels with graphics over
// them. It owns its channels and graphics: they are created, persisted,
// and closed with the display item, and referenced from outside only
// by UUID.
type DisplayItem struct {
	persist.Base `copier:"-"`

	// Title is the user-visible name of the display.
	Title string

	// DataChannels are the displayed data references, in display order.
	DataChannels persist.List[*DataChannel] `copier:"-"`

	// Graphics are the annotations over the display, in z order.
	Graphics persist.List[*Graphic] `copier:"-"`
}

// NewDisplayItem returns an empty display item.
func NewDisplayItem() *DisplayItem {
	dsp := &DisplayItem{}
	dsp.Init()
	return dsp
}

// NewDisplayItemFor returns a display item with one channel displaying
// the given data item.
func NewDisplayItemFor(di *DataItem) *DisplayItem {
	dsp := NewDisplayItem()
	dsp.Title = di.Title
	dsp.AddDataChannel(NewDataChannel(di.UUID))
	return dsp
}

// TypeTag implements [persist.Object].
func (dsp *DisplayItem) TypeTag() string { return "display_item" }

// SetTitle sets the title and notifies.
func (dsp *DisplayItem) SetTitle(title string) {
	dsp.Title = title
	dsp.Notify("title")
}

// Property implements [persist.PropertyAccessor].
func (dsp *DisplayItem) Property(name string) (any, bool) {
	if name == "title" {
		return dsp.Title, true
	}
	return nil, false
}

// SetProperty implements [persist.PropertyAccessor].
func (dsp *DisplayItem) SetProperty(name string, value any) bool {
	if name == "title" {
		if title, ok := value.(string); ok {
			dsp.SetTitle(title)
			return true
		}
	}
	return false
}

// AddDataChannel appends a channel and notifies.
func (dsp *DisplayItem) AddDataChannel(ch *DataChannel) {
	dsp.DataChannels.Append(ch)
	dsp.Notify("display_data_channels")
}

// RemoveDataChannel removes a channel, closes it, and notifies.
func (dsp *DisplayItem) RemoveDataChannel(ch *DataChannel) {
	dsp.DataChannels.Remove(ch)
	ch.Close()
	dsp.Notify("display_data_channels")
}

// AddGraphic appends a graphic and notifies.
func (dsp *DisplayItem) AddGraphic(g *Graphic) {
	dsp.Graphics.Append(g)
	dsp.Notify("graphics")
}

// RemoveGraphic removes a graphic, closes it, and notifies.
func (dsp *DisplayItem) RemoveGraphic(g *Graphic) {
	dsp.Graphics.Remove(g)
	g.Close()
	dsp.Notify("graphics")
}

// ChildUUIDs returns the UUIDs of every owned channel and graphic.
// Cascade collection treats references to children as references to
// the display item.
func (dsp *DisplayItem) ChildUUIDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, dsp.DataChannels.Len()+dsp.Graphics.Len())
	for _, ch := range dsp.DataChannels.Items() {
		out = append(out, ch.UUID)
	}
	for _, g := range dsp.Graphics.Items() {
		out = append(out, g.UUID)
	}
	return out
}

// Close closes the owned channels and graphics, then the base.
func (dsp *DisplayItem) Close() {
	for _, ch := range dsp.DataChannels.Items() {
		ch.Close()
	}
	for _, g := range dsp.Graphics.Items() {
		g.Close()
	}
	dsp.Base.Close()
}

// WriteDict implements [persist.Object].
func (dsp *DisplayItem) WriteDict() map[string]any {
	channels := make([]any, 0, dsp.DataChannels.Len())
	for _, ch := range dsp.DataChannels.Items() {
		channels = append(channels, ch.WriteDict())
	}
	graphics := make([]any, 0, dsp.Graphics.Len())
	for _, g := range dsp.Graphics.Items() {
		graphics = append(graphics, g.WriteDict())
	}
	dict := dsp.WriteBase(dsp.TypeTag())
	dict["title"] = dsp.Title
	dict["display_data_channels"] = channels
	dict["graphics"] = graphics
	return dict
}

// ReadDict implements [persist.Object].
func (dsp *DisplayItem) ReadDict(dict map[string]any) error {
	if err := dsp.ReadBase(dict); err != nil {
		return err
	}
	dsp.Title, _ = persist.DictString(dict, "title")
	if channels, ok := persist.DictSlice(dict, "display_data_channels"); ok {
		for _, cd := range channels {
			cdict, ok := cd.(map[string]any)
			if !ok {
				continue
			}
			ch := &DataChannel{}
			if err := ch.ReadDict(cdict); err != nil {
				return err
			}
			dsp.DataChannels.Append(ch)
		}
	}
	if graphics, ok := persist.DictSlice(dict, "graphics"); ok {
		for _, gd := range graphics {
			gdict, ok := gd.(map[string]any)
			if !ok {
				continue
			}
			g := &Graphic{}
			if err := g.ReadDict(gdict); err != nil {
				return err
			}
			dsp.Graphics.Append(g)
		}
	}
	return nil
}
