// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ref provides indirect references for the object graph.
//
// A [Specifier] names a persistent object (and optionally a facet or
// property of it) by type tag and UUID, never by pointer. Resolving a
// specifier against a [Resolver] yields a [Bound]: a live handle that
// reports value changes and identity invalidation. Specifiers are the
// only cross-entity reference mechanism that may be persisted.
package ref

import (
	"fmt"

	"cogentcore.org/loom/persist"
	"github.com/google/uuid"
)

// Type is the type tag of a [Specifier], drawn from a fixed vocabulary.
type Type string

const (
	// TypeDataItem references a data item by UUID.
	TypeDataItem Type = "data_item"

	// TypeDisplayItem references a display item by UUID.
	TypeDisplayItem Type = "display_item"

	// TypeDataSource references a display data channel by UUID.
	TypeDataSource Type = "data_source"

	// TypeGraphic references a graphic by UUID.
	TypeGraphic Type = "graphic"

	// TypeStructure references a data structure by UUID.
	TypeStructure Type = "structure"

	// TypeVariable references a computation's own value-typed variable
	// by UUID; only computation-local resolution answers it.
	TypeVariable Type = "variable"

	// TypeXData references the data of a display data channel.
	TypeXData Type = "xdata"

	// TypeDisplayXData references the displayed (post-display-processing)
	// data of a display data channel.
	TypeDisplayXData Type = "display_xdata"

	// TypeCroppedXData references the data of a display data channel
	// cropped by the secondary graphic's bounds.
	TypeCroppedXData Type = "cropped_xdata"

	// TypeCroppedDisplayXData references the displayed data of a display
	// data channel cropped by the secondary graphic's bounds.
	TypeCroppedDisplayXData Type = "cropped_display_xdata"

	// TypeFilterXData references the mask data of a display data
	// channel's filter graphics.
	TypeFilterXData Type = "filter_xdata"

	// TypeFilteredXData references the data of a display data channel
	// with its filter mask applied.
	TypeFilteredXData Type = "filtered_xdata"
)

var knownTypes = map[Type]bool{
	TypeDataItem:            true,
	TypeDisplayItem:         true,
	TypeDataSource:          true,
	TypeGraphic:             true,
	TypeStructure:           true,
	TypeVariable:            true,
	TypeXData:               true,
	TypeDisplayXData:        true,
	TypeCroppedXData:        true,
	TypeCroppedDisplayXData: true,
	TypeFilterXData:         true,
	TypeFilteredXData:       true,
}

// Valid reports whether the type tag is part of the fixed vocabulary.
func (t Type) Valid() bool { return knownTypes[t] }

// Version is the specifier wire format version written by this package.
const Version = 1

// Specifier is an immutable, serializable indirect reference: a type
// tag, the target's UUID, and an optional property name selecting one
// property of the target instead of the target itself. Specifiers are
// replaced, never mutated; the zero value means "absent".
type Specifier struct {
	Version  int       `json:"version"`
	Type     Type      `json:"type"`
	UUID     uuid.UUID `json:"uuid"`
	Property string    `json:"property,omitempty"`
}

// New returns a specifier for the given type tag and target UUID,
// at the current wire version.
func New(typ Type, u uuid.UUID) Specifier {
	return Specifier{Version: Version, Type: typ, UUID: u}
}

// NewProperty returns a specifier selecting the named property
// of the given target.
func NewProperty(typ Type, u uuid.UUID, property string) Specifier {
	return Specifier{Version: Version, Type: typ, UUID: u, Property: property}
}

// IsZero reports whether the specifier is absent.
func (s Specifier) IsZero() bool {
	return s == Specifier{}
}

// String renders the specifier for logging.
func (s Specifier) String() string {
	if s.IsZero() {
		return "ref.Specifier(zero)"
	}
	if s.Property != "" {
		return string(s.Type) + ":" + s.UUID.String() + "." + s.Property
	}
	return string(s.Type) + ":" + s.UUID.String()
}

// ToDict returns the wire representation:
// {version:int, type:string, uuid:string, property?:string}.
func (s Specifier) ToDict() map[string]any {
	dict := map[string]any{
		"version": s.Version,
		"type":    string(s.Type),
		"uuid":    s.UUID.String(),
	}
	if s.Property != "" {
		dict["property"] = s.Property
	}
	return dict
}

// FromDict parses the wire representation written by [Specifier.ToDict].
// Round-tripping is lossless: FromDict(s.ToDict()) == s for any valid s.
func FromDict(dict map[string]any) (Specifier, error) {
	version, ok := persist.DictInt(dict, "version")
	if !ok {
		return Specifier{}, fmt.Errorf("ref: specifier dict has no version")
	}
	if version != Version {
		return Specifier{}, fmt.Errorf("ref: unsupported specifier version %d", version)
	}
	typ, ok := persist.DictString(dict, "type")
	if !ok {
		return Specifier{}, fmt.Errorf("ref: specifier dict has no type")
	}
	if !Type(typ).Valid() {
		return Specifier{}, fmt.Errorf("ref: unknown specifier type %q", typ)
	}
	u, err := persist.DictUUID(dict, "uuid")
	if err != nil {
		return Specifier{}, err
	}
	s := Specifier{Version: version, Type: Type(typ), UUID: u}
	s.Property, _ = persist.DictString(dict, "property")
	return s, nil
}

// ToDicts returns the wire representations of a specifier list.
func ToDicts(specs []Specifier) []any {
	out := make([]any, len(specs))
	for i, s := range specs {
		out[i] = s.ToDict()
	}
	return out
}

// FromDicts parses a list of wire representations.
func FromDicts(dicts []any) ([]Specifier, error) {
	out := make([]Specifier, 0, len(dicts))
	for _, d := range dicts {
		dict, ok := d.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("ref: specifier list entry is not a dict")
		}
		s, err := FromDict(dict)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
