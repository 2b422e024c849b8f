// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package persist

import (
	"fmt"
	"slices"
)

var typeTags = map[string]func() Object{}

// AddType registers the factory for a persisted type tag, so objects
// of that kind can be rebuilt from dicts by [NewOfTag]. Entity
// packages call this in init. Registering a tag twice is a programmer
// error and panics.
func AddType(tag string, factory func() Object) {
	if _, ok := typeTags[tag]; ok {
		panic("persist: type tag registered twice: " + tag)
	}
	typeTags[tag] = factory
}

// NewOfTag returns a new, empty instance of the given persisted type
// tag, or an error if the tag was never registered.
func NewOfTag(tag string) (Object, error) {
	factory, ok := typeTags[tag]
	if !ok {
		return nil, fmt.Errorf("persist: unknown type tag %q", tag)
	}
	return factory(), nil
}

// ReadNew rebuilds an object from a persisted dict, dispatching on the
// dict's "type" entry.
func ReadNew(dict map[string]any) (Object, error) {
	tag, ok := DictString(dict, "type")
	if !ok {
		return nil, fmt.Errorf("persist: dict has no type tag")
	}
	obj, err := NewOfTag(tag)
	if err != nil {
		return nil, err
	}
	if err := obj.ReadDict(dict); err != nil {
		return nil, err
	}
	return obj, nil
}

// Tags returns the sorted registered type tags, for diagnostics.
func Tags() []string {
	tags := make([]string, 0, len(typeTags))
	for tag := range typeTags {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}
