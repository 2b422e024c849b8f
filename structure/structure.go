// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package structure

import (
	"slices"

	"cogentcore.org/loom/events"
	"cogentcore.org/loom/persist"
	"cogentcore.org/loom/ref"
	"github.com/google/uuid"
)

// Lookup resolves a specifier to the live object it names, or nil.
// The store provides one while a structure is attached, backing the
// structure's reference proxies.
type Lookup func(spec ref.Specifier) persist.Object

// Data is a generic persisted property bag. Properties are
// tagged-union [Value]s; the specifier-valued ones additionally
// maintain reference proxies giving current-value access to the named
// objects, with no change or rebind notifications. There is no
// evaluation loop here: structures are passive stores consulted by
// computations and the UI.
type Data struct {
	persist.Base `copier:"-"`

	// StructureType tags what the structure represents,
	// such as "calibration" or "roi_group".
	StructureType string

	// Changed is emitted after every property mutation.
	Changed events.Signal `copier:"-"`

	properties map[string]Value
	proxies    map[string]ref.Proxy
	lookup     Lookup
}

func init() {
	persist.AddType("structure", func() persist.Object { return &Data{} })
}

// New returns an empty structure of the given type.
func New(structureType string) *Data {
	s := &Data{StructureType: structureType}
	s.Init()
	return s
}

// TypeTag implements [persist.Object].
func (s *Data) TypeTag() string { return "structure" }

// Bind attaches the structure to a store lookup, creating reference
// proxies for every specifier-valued property. Binding a bound
// structure is a programmer error.
func (s *Data) Bind(lookup Lookup) {
	if s.lookup != nil {
		panic("structure: Bind on a bound structure")
	}
	s.lookup = lookup
	for name, v := range s.properties {
		s.refreshProxy(name, v)
	}
}

// Unbind detaches the structure from its store lookup,
// closing all reference proxies. Safe to call when unbound.
func (s *Data) Unbind() {
	for name, p := range s.proxies {
		p.Close()
		delete(s.proxies, name)
	}
	s.lookup = nil
}

// IsBound reports whether the structure is attached to a store lookup.
func (s *Data) IsBound() bool { return s.lookup != nil }

// SetPropertyValue sets a scalar-kind property, replacing any previous
// value and dropping any associated reference proxy.
func (s *Data) SetPropertyValue(name string, scalar any) {
	s.setValue(name, ScalarValue(scalar))
}

// SetReferencedObject sets a reference-kind property to the given
// specifier, replacing both the persisted value and the associated
// reference proxy.
func (s *Data) SetReferencedObject(name string, spec ref.Specifier) {
	s.setValue(name, SpecifierValue(spec))
}

// SetReferencedObjects sets a reference-list-kind property,
// replacing both the persisted value and the associated proxies.
func (s *Data) SetReferencedObjects(name string, specs []ref.Specifier) {
	s.setValue(name, SpecifierListValue(specs))
}

func (s *Data) setValue(name string, v Value) {
	if s.properties == nil {
		s.properties = map[string]Value{}
	}
	s.properties[name] = v
	s.refreshProxy(name, v)
	s.Notify(name)
	s.Changed.Emit()
}

func (s *Data) refreshProxy(name string, v Value) {
	if p, ok := s.proxies[name]; ok {
		p.Close()
		delete(s.proxies, name)
	}
	if s.lookup == nil {
		return
	}
	switch v.Kind {
	case KindSpecifier:
		if s.proxies == nil {
			s.proxies = map[string]ref.Proxy{}
		}
		s.proxies[name] = &lookupProxy{spec: v.Specifier, lookup: s.lookup}
	case KindSpecifierList:
		if s.proxies == nil {
			s.proxies = map[string]ref.Proxy{}
		}
		s.proxies[name] = &lookupListProxy{specs: v.Specifiers, lookup: s.lookup}
	}
}

// RemovePropertyValue removes a property, dropping both the persisted
// value and any associated reference proxy. Removing an absent
// property is a no-op.
func (s *Data) RemovePropertyValue(name string) {
	if _, ok := s.properties[name]; !ok {
		return
	}
	delete(s.properties, name)
	if p, ok := s.proxies[name]; ok {
		p.Close()
		delete(s.proxies, name)
	}
	s.Notify(name)
	s.Changed.Emit()
}

// PropertyValue returns the full tagged value of a property.
func (s *Data) PropertyValue(name string) (Value, bool) {
	v, ok := s.properties[name]
	return v, ok
}

// ScalarValue returns the scalar content of a scalar-kind property.
func (s *Data) ScalarValue(name string) (any, bool) {
	v, ok := s.properties[name]
	if !ok || v.Kind != KindScalar {
		return nil, false
	}
	return v.Scalar, true
}

// Property implements [persist.PropertyAccessor], reading scalar-kind
// properties.
func (s *Data) Property(name string) (any, bool) {
	return s.ScalarValue(name)
}

// SetProperty implements [persist.PropertyAccessor], setting the
// property as a scalar.
func (s *Data) SetProperty(name string, value any) bool {
	s.SetPropertyValue(name, value)
	return true
}

// ReferencedObject returns the live object named by a reference-kind
// property, or nil when the property is not a reference, the structure
// is unbound, or the target does not currently exist.
func (s *Data) ReferencedObject(name string) persist.Object {
	p, ok := s.proxies[name].(*lookupProxy)
	if !ok {
		return nil
	}
	obj, _ := p.Value().(persist.Object)
	return obj
}

// ReferencedObjects returns the live objects named by a
// reference-list-kind property; unresolved members are nil.
func (s *Data) ReferencedObjects(name string) []persist.Object {
	p, ok := s.proxies[name].(*lookupListProxy)
	if !ok {
		return nil
	}
	objs, _ := p.Value().([]persist.Object)
	return objs
}

// PropertyNames returns the sorted property names.
func (s *Data) PropertyNames() []string {
	names := make([]string, 0, len(s.properties))
	for name := range s.properties {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ReferencedUUIDs returns every UUID named by any reference property,
// for cascade collection.
func (s *Data) ReferencedUUIDs() []uuid.UUID {
	var out []uuid.UUID
	for _, name := range s.PropertyNames() {
		switch v := s.properties[name]; v.Kind {
		case KindSpecifier:
			out = append(out, v.Specifier.UUID)
		case KindSpecifierList:
			for _, spec := range v.Specifiers {
				out = append(out, spec.UUID)
			}
		}
	}
	return out
}

// Close unbinds and closes the structure.
func (s *Data) Close() {
	s.Unbind()
	s.Base.Close()
}

// WriteDict implements [persist.Object].
func (s *Data) WriteDict() map[string]any {
	props := map[string]any{}
	for name, v := range s.properties {
		props[name] = v.ToDict()
	}
	dict := s.WriteBase(s.TypeTag())
	dict["structure_type"] = s.StructureType
	dict["properties"] = props
	return dict
}

// ReadDict implements [persist.Object].
func (s *Data) ReadDict(dict map[string]any) error {
	if err := s.ReadBase(dict); err != nil {
		return err
	}
	s.StructureType, _ = persist.DictString(dict, "structure_type")
	props, ok := persist.DictMap(dict, "properties")
	if !ok {
		return nil
	}
	s.properties = make(map[string]Value, len(props))
	for name, pd := range props {
		pdict, ok := pd.(map[string]any)
		if !ok {
			continue
		}
		v, err := ValueFromDict(pdict)
		if err != nil {
			return err
		}
		s.properties[name] = v
	}
	return nil
}

// lookupProxy is the value-only reference proxy for one specifier:
// each Value call resolves afresh through the store lookup, so the
// proxy is never stale and needs no notifications.
type lookupProxy struct {
	spec   ref.Specifier
	lookup Lookup
}

func (p *lookupProxy) Value() any {
	if obj := p.lookup(p.spec); obj != nil {
		return obj
	}
	return nil
}

func (p *lookupProxy) Close() {}

type lookupListProxy struct {
	specs  []ref.Specifier
	lookup Lookup
}

func (p *lookupListProxy) Value() any {
	objs := make([]persist.Object, len(p.specs))
	for i, spec := range p.specs {
		objs[i] = p.lookup(spec)
	}
	return objs
}

func (p *lookupListProxy) Close() {}
