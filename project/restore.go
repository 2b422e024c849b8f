// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package project

import (
	"fmt"

	"cogentcore.org/loom/item"
	"cogentcore.org/loom/persist"
	"github.com/google/uuid"
)

// RestoreDataItem brings a data item back from storage's trash:
// it rebuilds the entity from the trashed dict and re-inserts it at
// the index it was removed from (clamped to the current length).
func (p *Project) RestoreDataItem(u uuid.UUID) (*item.DataItem, error) {
	entry, err := p.store.Restore(u)
	if err != nil {
		return nil, err
	}
	obj, err := persist.ReadNew(entry.Dict)
	if err != nil {
		return nil, err
	}
	di, ok := obj.(*item.DataItem)
	if !ok {
		return nil, fmt.Errorf("project: trash entry %s is %T, not a data item", u, obj)
	}
	idx := entry.Index
	if idx < 0 || idx > p.DataItems.Len() {
		idx = p.DataItems.Len()
	}
	p.InsertDataItem(idx, di)
	if !p.DataItems.Contains(di.UUID) {
		panic("project: restored data item not in collection")
	}
	return di, nil
}
