// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package persist_test

import (
	"testing"

	"cogentcore.org/loom/persist"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	persist.Base
	Name string

	hookLog *[]string
}

func init() {
	persist.AddType("test_item", func() persist.Object { return &testItem{} })
}

func newTestItem(name string) *testItem {
	ti := &testItem{Name: name}
	ti.Init()
	return ti
}

func (ti *testItem) TypeTag() string { return "test_item" }

func (ti *testItem) WriteDict() map[string]any {
	dict := ti.WriteBase(ti.TypeTag())
	dict["name"] = ti.Name
	return dict
}

func (ti *testItem) ReadDict(dict map[string]any) error {
	if err := ti.ReadBase(dict); err != nil {
		return err
	}
	ti.Name, _ = persist.DictString(dict, "name")
	return nil
}

func (ti *testItem) AboutToBeInserted() {
	if ti.hookLog != nil {
		*ti.hookLog = append(*ti.hookLog, "hook-insert:"+ti.Name)
	}
}

func (ti *testItem) AboutToBeRemoved() {
	if ti.hookLog != nil {
		*ti.hookLog = append(*ti.hookLog, "hook-remove:"+ti.Name)
	}
}

func TestListOrderAndLookup(t *testing.T) {
	var list persist.List[*testItem]
	a, b, c := newTestItem("a"), newTestItem("b"), newTestItem("c")
	list.Append(a)
	list.Append(c)
	list.Insert(1, b)

	require.Equal(t, 3, list.Len())
	assert.Equal(t, "a", list.At(0).Name)
	assert.Equal(t, "b", list.At(1).Name)
	assert.Equal(t, "c", list.At(2).Name)
	assert.Equal(t, 1, list.IndexOf(b.UUID))
	assert.True(t, list.Contains(c.UUID))

	got, ok := list.ByUUID(c.UUID)
	require.True(t, ok)
	assert.Same(t, c, got)

	idx := list.Remove(b)
	assert.Equal(t, 1, idx)
	assert.Equal(t, -1, list.IndexOf(b.UUID))
	assert.Equal(t, 1, list.IndexOf(c.UUID))
}

func TestListContractViolations(t *testing.T) {
	var list persist.List[*testItem]
	a := newTestItem("a")
	list.Append(a)
	assert.Panics(t, func() { list.Append(a) }, "duplicate UUID must panic")
	assert.Panics(t, func() { list.Remove(newTestItem("x")) }, "removing a non-member must panic")
	assert.Panics(t, func() { list.Append(&testItem{}) }, "inserting without identity must panic")
}

func TestListHookOrder(t *testing.T) {
	var list persist.List[*testItem]
	var log []string
	a := newTestItem("a")
	a.hookLog = &log
	list.Inserted.Listen(func(ii persist.ItemIndex[*testItem]) {
		log = append(log, "notify-insert:"+ii.Item.Name)
	})
	list.Removed.Listen(func(ii persist.ItemIndex[*testItem]) {
		log = append(log, "notify-remove:"+ii.Item.Name)
	})

	list.Append(a)
	list.Remove(a)
	assert.Equal(t, []string{"hook-insert:a", "notify-insert:a", "hook-remove:a", "notify-remove:a"}, log)
}

func TestBaseNotify(t *testing.T) {
	a := newTestItem("a")
	before := a.Modified
	var got []string
	a.PropertyChanged.Listen(func(name string) { got = append(got, name) })
	a.Notify("name")
	assert.Equal(t, []string{"name"}, got)
	assert.False(t, a.Modified.Before(before))
}

func TestBaseCloseTwice(t *testing.T) {
	a := newTestItem("a")
	a.Close()
	assert.True(t, a.IsClosed())
	assert.Panics(t, func() { a.Close() })
}

func TestDictRoundTrip(t *testing.T) {
	a := newTestItem("a")
	dict := a.WriteDict()

	obj, err := persist.ReadNew(dict)
	require.NoError(t, err)
	b, ok := obj.(*testItem)
	require.True(t, ok)
	assert.Equal(t, a.UUID, b.UUID)
	assert.Equal(t, "a", b.Name)

	_, err = persist.ReadNew(map[string]any{"type": "no_such_tag"})
	assert.Error(t, err)
	_, err = persist.ReadNew(map[string]any{})
	assert.Error(t, err)
}

func TestDictHelpers(t *testing.T) {
	u := uuid.New()
	dict := map[string]any{
		"s": "str", "b": true, "i": float64(3), "f": float64(1.5),
		"u": u.String(), "fs": []any{float64(1), float64(2)},
		"is": []any{float64(4), float64(5)},
		"m":  map[string]any{"k": "v"},
	}

	s, ok := persist.DictString(dict, "s")
	assert.True(t, ok)
	assert.Equal(t, "str", s)

	b, ok := persist.DictBool(dict, "b")
	assert.True(t, ok)
	assert.True(t, b)

	i, ok := persist.DictInt(dict, "i")
	assert.True(t, ok)
	assert.Equal(t, 3, i)

	f, ok := persist.DictFloat(dict, "f")
	assert.True(t, ok)
	assert.Equal(t, 1.5, f)

	gu, err := persist.DictUUID(dict, "u")
	assert.NoError(t, err)
	assert.Equal(t, u, gu)
	_, err = persist.DictUUID(dict, "s")
	assert.Error(t, err)

	fs, ok := persist.DictFloats(dict, "fs")
	assert.True(t, ok)
	assert.Equal(t, []float64{1, 2}, fs)

	is, ok := persist.DictInts(dict, "is")
	assert.True(t, ok)
	assert.Equal(t, []int{4, 5}, is)

	m, ok := persist.DictMap(dict, "m")
	assert.True(t, ok)
	assert.Equal(t, "v", m["k"])

	_, ok = persist.DictInt(dict, "missing")
	assert.False(t, ok)
}
