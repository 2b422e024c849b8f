// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package structure provides data structures: generic persisted
// property bags whose properties are scalars, object references, or
// reference lists. They hold auxiliary structured data outside the
// computation evaluation loop and are resolvable as "structure"
// reference targets.
package structure

import (
	"fmt"
	"reflect"

	"cogentcore.org/loom/persist"
	"cogentcore.org/loom/ref"
)

// Kind discriminates the three property value shapes. The kind is
// decided when the property is written and persisted with it; it is
// never inferred from the value's shape at read time.
type Kind int

const (
	// KindScalar is a plain JSON-compatible scalar value.
	KindScalar Kind = iota

	// KindSpecifier is a single object reference.
	KindSpecifier

	// KindSpecifierList is an ordered list of object references.
	KindSpecifierList
)

// String returns the persisted name of the kind.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSpecifier:
		return "specifier"
	case KindSpecifierList:
		return "specifier_list"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func kindFromString(s string) (Kind, error) {
	switch s {
	case "scalar":
		return KindScalar, nil
	case "specifier":
		return KindSpecifier, nil
	case "specifier_list":
		return KindSpecifierList, nil
	}
	return 0, fmt.Errorf("structure: unknown property kind %q", s)
}

// Value is a tagged-union property value: exactly one of the three
// shapes is populated, per [Value.Kind].
type Value struct {
	Kind       Kind
	Scalar     any
	Specifier  ref.Specifier
	Specifiers []ref.Specifier
}

// ScalarValue returns a scalar-kind value.
func ScalarValue(v any) Value {
	return Value{Kind: KindScalar, Scalar: v}
}

// SpecifierValue returns a reference-kind value.
func SpecifierValue(s ref.Specifier) Value {
	return Value{Kind: KindSpecifier, Specifier: s}
}

// SpecifierListValue returns a reference-list-kind value.
func SpecifierListValue(specs []ref.Specifier) Value {
	return Value{Kind: KindSpecifierList, Specifiers: specs}
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	return reflect.DeepEqual(v, o)
}

// ToDict returns the persisted representation, tagged with the kind.
func (v Value) ToDict() map[string]any {
	switch v.Kind {
	case KindSpecifier:
		return map[string]any{"kind": v.Kind.String(), "specifier": v.Specifier.ToDict()}
	case KindSpecifierList:
		return map[string]any{"kind": v.Kind.String(), "specifiers": ref.ToDicts(v.Specifiers)}
	default:
		return map[string]any{"kind": KindScalar.String(), "value": v.Scalar}
	}
}

// ValueFromDict parses the representation written by [Value.ToDict].
func ValueFromDict(dict map[string]any) (Value, error) {
	ks, ok := persist.DictString(dict, "kind")
	if !ok {
		return Value{}, fmt.Errorf("structure: property dict has no kind")
	}
	kind, err := kindFromString(ks)
	if err != nil {
		return Value{}, err
	}
	switch kind {
	case KindSpecifier:
		sd, ok := persist.DictMap(dict, "specifier")
		if !ok {
			return Value{}, fmt.Errorf("structure: specifier property has no specifier")
		}
		spec, err := ref.FromDict(sd)
		if err != nil {
			return Value{}, err
		}
		return SpecifierValue(spec), nil
	case KindSpecifierList:
		sl, ok := persist.DictSlice(dict, "specifiers")
		if !ok {
			return Value{}, fmt.Errorf("structure: specifier list property has no specifiers")
		}
		specs, err := ref.FromDicts(sl)
		if err != nil {
			return Value{}, err
		}
		return SpecifierListValue(specs), nil
	default:
		return ScalarValue(dict["value"]), nil
	}
}
