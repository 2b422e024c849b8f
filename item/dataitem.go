// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package item

import (
	"time"

	"cogentcore.org/loom/base/errors"
	"cogentcore.org/loom/events"
	"cogentcore.org/loom/persist"
	"github.com/jinzhu/copier"
)

// DataItem is a persistent item holding acquired or computed data.
// Its data is replaced wholesale by [DataItem.SetData]; consumers that
// need to react to data changes listen to [DataItem.DataChanged],
// which references resolved through the store forward as value
// changes.
type DataItem struct {
	persist.Base `copier:"-"`

	// Title is the user-visible name of the item.
	Title string

	// Data is the current array data; may be nil before first
	// acquisition. Use [DataItem.SetData] so the change is tracked.
	Data *Data

	// DataModified is the time the data was last replaced or marked
	// changed, as opposed to [persist.Base.Modified] which tracks any
	// property.
	DataModified time.Time

	// DataChanged is emitted whenever the data content changes,
	// including external marks funneled through the store's pending
	// queue.
	DataChanged events.Signal `copier:"-"`
}

func init() {
	persist.AddType("data_item", func() persist.Object { return &DataItem{} })
}

// NewDataItem returns a data item holding the given data (which may be
// nil).
func NewDataItem(data *Data) *DataItem {
	di := &DataItem{Data: data}
	di.Init()
	if data != nil {
		di.DataModified = di.Modified
	}
	return di
}

// TypeTag implements [persist.Object].
func (di *DataItem) TypeTag() string { return "data_item" }

// SetTitle sets the title and notifies.
func (di *DataItem) SetTitle(title string) {
	di.Title = title
	di.Notify("title")
}

// SetData replaces the data and notifies.
func (di *DataItem) SetData(data *Data) {
	di.Data = data
	di.NotifyDataChanged()
}

// Property implements [persist.PropertyAccessor].
func (di *DataItem) Property(name string) (any, bool) {
	if name == "title" {
		return di.Title, true
	}
	return nil, false
}

// SetProperty implements [persist.PropertyAccessor].
func (di *DataItem) SetProperty(name string, value any) bool {
	if name == "title" {
		if title, ok := value.(string); ok {
			di.SetTitle(title)
			return true
		}
	}
	return false
}

// NotifyDataChanged records a data mutation: it updates
// [DataItem.DataModified], emits [DataItem.DataChanged], and notifies
// the "data" property. The store's drain step calls this for changes
// queued by background producers.
func (di *DataItem) NotifyDataChanged() {
	di.DataModified = time.Now()
	di.DataChanged.Emit()
	di.Notify("data")
}

// CopyFrom copies the content of another data item into this one,
// leaving identity and notification state untouched. The data is
// deep-copied so the two items never alias.
func (di *DataItem) CopyFrom(src *DataItem) {
	errors.Log(copier.CopyWithOption(di, src, copier.Option{DeepCopy: true}))
	di.Data = src.Data.Clone()
}

// WriteDict implements [persist.Object].
func (di *DataItem) WriteDict() map[string]any {
	dict := di.WriteBase(di.TypeTag())
	dict["title"] = di.Title
	if di.Data != nil {
		dict["data"] = di.Data.ToDict()
	}
	if !di.DataModified.IsZero() {
		dict["data_modified"] = di.DataModified.UTC().Format(time.RFC3339Nano)
	}
	return dict
}

// ReadDict implements [persist.Object].
func (di *DataItem) ReadDict(dict map[string]any) error {
	if err := di.ReadBase(dict); err != nil {
		return err
	}
	di.Title, _ = persist.DictString(dict, "title")
	if dd, ok := persist.DictMap(dict, "data"); ok {
		data, err := DataFromDict(dd)
		if err != nil {
			return err
		}
		di.Data = data
	}
	if tm, ok := persist.DictTime(dict, "data_modified"); ok {
		di.DataModified = tm
	}
	return nil
}
