// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metadata provides the open metadata maps attached to data items:
// maps of named any elements with generic support for type-safe Get and
// nil-safe Set. Acquisition sources typically populate session information
// here; everything else is free-form and survives persistence untouched.
package metadata

import (
	"fmt"
	"maps"

	"cogentcore.org/loom/base/errors"
)

// Data is an open metadata map of named any elements with generic support
// for type-safe Get and nil-safe Set. Values must remain JSON-compatible
// (strings, numbers, booleans, nested maps and slices) because the map is
// persisted verbatim with its owning item. It is good practice to provide
// access functions that establish standard key names, to avoid issues
// with typos; see [Data.SetSession] and [Data.SetTimeZone].
type Data map[string]any

func (md *Data) init() {
	if *md == nil {
		*md = make(map[string]any)
	}
}

// Set sets key to the given value, ensuring that
// the map is created if not previously.
func (md *Data) Set(key string, value any) {
	md.init()
	(*md)[key] = value
}

// Delete removes the given key from the map.
// It is a no-op if the map is nil or the key is absent.
func (md *Data) Delete(key string) {
	if *md == nil {
		return
	}
	delete(*md, key)
}

// Get gets the metadata value of the given type.
// It returns an error if the key is not present
// or the item is a different type.
func Get[T any](md Data, key string) (T, error) {
	var z T
	x, ok := md[key]
	if !ok {
		return z, fmt.Errorf("key %q not found in metadata", key)
	}
	v, ok := x.(T)
	if !ok {
		return z, fmt.Errorf("key %q has a different type than expected %T: is %T", key, z, x)
	}
	return v, nil
}

// Copy does a shallow copy of metadata from the source.
// Any pointer-based values will still point to the same
// underlying data as the source, but the two maps remain
// distinct. It uses [maps.Copy].
func (md *Data) Copy(src Data) {
	if src == nil {
		return
	}
	md.init()
	maps.Copy(*md, src)
}

// DeepCopy returns a fully independent copy of the metadata,
// recursively copying nested maps and slices. Snapshots taken
// for delete records use this so later edits to the live item
// cannot alias into recorded state.
func (md Data) DeepCopy() Data {
	if md == nil {
		return nil
	}
	out := make(Data, len(md))
	for k, v := range md {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = deepCopyValue(e)
		}
		return out
	case Data:
		return map[string]any(x.DeepCopy())
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = deepCopyValue(e)
		}
		return out
	default:
		return v
	}
}

// SetSession sets the "Session" standard key,
// identifying the acquisition session that produced an item.
func (md *Data) SetSession(session string) {
	md.Set("Session", session)
}

// GetSession returns the "Session" standard key value (empty if not set).
func (md *Data) GetSession() string {
	return errors.Ignore1(Get[string](*md, "Session"))
}

// SetTimeZone sets the "TimeZone" standard key,
// recording the local time zone name at acquisition time.
func (md *Data) SetTimeZone(tz string) {
	md.Set("TimeZone", tz)
}

// GetTimeZone returns the "TimeZone" standard key value (empty if not set).
func (md *Data) GetTimeZone() string {
	return errors.Ignore1(Get[string](*md, "TimeZone"))
}
