// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compute

import (
	"slices"

	"cogentcore.org/loom/events"
	"cogentcore.org/loom/persist"
	"cogentcore.org/loom/ref"
	"github.com/google/uuid"
)

// Declared value types for literal variables.
const (
	ValueBoolean  = "boolean"
	ValueIntegral = "integral"
	ValueReal     = "real"
	ValueComplex  = "complex"
	ValueString   = "string"
)

// Variable is one named input slot on a computation. It holds either a
// literal value (declared by value type) or a specifier naming an
// object in the store, never both; setting one side clears the other.
// While attached to a resolution context the slot owns zero or one
// live binding and re-derives it whenever an identity-determining
// property changes or the binding reports that it needs rebinding.
type Variable struct {
	persist.Base `copier:"-"`

	// Changed fires when the resolved value of the slot may have
	// changed: a property edit, a change reported by the bound target,
	// or a successful retry of an unresolved slot. The owning
	// computation forwards it as "needs update".
	Changed events.Signal `copier:"-"`

	// RebindRequested asks the owning computation to unbind and rebind
	// this slot. Rebinding is driven from the computation so that its
	// forwarding listeners are torn down and rebuilt with the binding.
	RebindRequested events.Signal `copier:"-"`

	name         string
	label        string
	valueType    string
	value        any
	spec         ref.Specifier
	secondary    ref.Specifier
	propertyName string
	objectSpecs  []ref.Specifier
	isList       bool

	ctx         Context
	bound       ref.Bound
	wires       []*events.Listener
	members     []ref.Bound
	memberSpecs []ref.Specifier
	retry       *events.Listener
}

func init() {
	persist.AddType("variable", func() persist.Object { return &Variable{} })
}

// NewVariable returns a literal variable with the given declared value
// type and initial value.
func NewVariable(name, valueType string, value any) *Variable {
	v := &Variable{name: name, valueType: valueType, value: value}
	v.Init()
	return v
}

// NewInputItem returns a variable bound by specifier. The secondary
// specifier and property qualifier may be zero.
func NewInputItem(name string, spec, secondary ref.Specifier, property string) *Variable {
	v := &Variable{name: name, spec: spec, secondary: secondary, propertyName: property}
	v.Init()
	return v
}

// NewListInput returns a list-valued variable over the given
// specifiers.
func NewListInput(name string, specs []ref.Specifier) *Variable {
	v := &Variable{name: name, objectSpecs: slices.Clone(specs), isList: true}
	v.Init()
	return v
}

// TypeTag implements [persist.Object].
func (v *Variable) TypeTag() string { return "variable" }

// Name returns the slot name, which is also the identifier the
// expression sees.
func (v *Variable) Name() string { return v.name }

// Label returns the user-visible label, defaulting to the name.
func (v *Variable) Label() string {
	if v.label == "" {
		return v.name
	}
	return v.label
}

// ValueType returns the declared value type, or empty for
// specifier-valued variables.
func (v *Variable) ValueType() string { return v.valueType }

// Value returns the literal value.
func (v *Variable) Value() any { return v.value }

// Specifier returns the object specifier; zero for literal or
// list-valued variables.
func (v *Variable) Specifier() ref.Specifier { return v.spec }

// SecondarySpecifier returns the auxiliary specifier qualifying the
// primary one, such as a crop graphic on an image.
func (v *Variable) SecondarySpecifier() ref.Specifier { return v.secondary }

// PropertyName returns the property qualifier selecting one property
// of the referenced object.
func (v *Variable) PropertyName() string { return v.propertyName }

// IsList reports whether the slot is list-valued.
func (v *Variable) IsList() bool { return v.isList }

// ObjectSpecifiers returns the member specifiers of a list slot.
func (v *Variable) ObjectSpecifiers() []ref.Specifier { return slices.Clone(v.objectSpecs) }

func (v *Variable) notify(property string) {
	v.Notify(property)
	v.Changed.Emit()
}

// SetName renames the slot.
func (v *Variable) SetName(name string) {
	if v.name == name {
		return
	}
	v.name = name
	v.notify("name")
}

// SetLabel sets the user-visible label.
func (v *Variable) SetLabel(label string) {
	if v.label == label {
		return
	}
	v.label = label
	v.notify("label")
}

// SetValue sets the literal value of a value-typed variable.
func (v *Variable) SetValue(value any) {
	v.value = value
	v.notify("value")
}

// Property implements [persist.PropertyAccessor]. Variables expose
// "value" and "label", so connections can drive computation inputs.
func (v *Variable) Property(name string) (any, bool) {
	switch name {
	case "value":
		return v.value, true
	case "label":
		return v.Label(), true
	}
	return nil, false
}

// SetProperty implements [persist.PropertyAccessor].
func (v *Variable) SetProperty(name string, value any) bool {
	switch name {
	case "value":
		v.SetValue(value)
		return true
	case "label":
		if label, ok := value.(string); ok {
			v.SetLabel(label)
			return true
		}
	}
	return false
}

// SetValueType declares the variable literal with the given value
// type, clearing any specifiers so the slot is never both.
func (v *Variable) SetValueType(valueType string) {
	v.valueType = valueType
	v.spec = ref.Specifier{}
	v.secondary = ref.Specifier{}
	v.propertyName = ""
	v.objectSpecs = nil
	v.isList = false
	v.notify("value_type")
	v.RebindRequested.Emit()
}

// SetSpecifier points the variable at an object, clearing any literal
// value so the slot is never both.
func (v *Variable) SetSpecifier(spec ref.Specifier) {
	v.spec = spec
	v.valueType = ""
	v.value = nil
	v.objectSpecs = nil
	v.isList = false
	v.notify("specifier")
	v.RebindRequested.Emit()
}

// SetSecondarySpecifier replaces the auxiliary specifier.
func (v *Variable) SetSecondarySpecifier(spec ref.Specifier) {
	v.secondary = spec
	v.notify("secondary_specifier")
	v.RebindRequested.Emit()
}

// SetPropertyName replaces the property qualifier.
func (v *Variable) SetPropertyName(property string) {
	v.propertyName = property
	v.notify("property_name")
	v.RebindRequested.Emit()
}

// SetObjectSpecifiers replaces the member specifiers of a list slot,
// making the variable list-valued if it was not already. While
// attached, members whose specifier is unchanged keep their binding.
func (v *Variable) SetObjectSpecifiers(specs []ref.Specifier) {
	v.mutateList(func() {
		v.objectSpecs = slices.Clone(specs)
	})
}

// InsertObjectSpecifier inserts one member specifier at index.
func (v *Variable) InsertObjectSpecifier(index int, spec ref.Specifier) {
	v.mutateList(func() {
		v.objectSpecs = slices.Insert(v.objectSpecs, index, spec)
	})
}

// RemoveObjectSpecifier removes the member specifier at index.
func (v *Variable) RemoveObjectSpecifier(index int) {
	v.mutateList(func() {
		v.objectSpecs = slices.Delete(v.objectSpecs, index, index+1)
	})
}

func (v *Variable) mutateList(mutate func()) {
	mutate()
	v.isList = true
	v.valueType = ""
	v.value = nil
	v.spec = ref.Specifier{}
	v.Notify("object_specifiers")
	if v.ctx != nil {
		v.reconcileList()
	}
	v.Changed.Emit()
}

// Attach binds the slot against a resolution context. Attaching an
// attached variable is a programmer error.
func (v *Variable) Attach(ctx Context) {
	if v.ctx != nil {
		panic("compute: variable attached twice: " + v.name)
	}
	v.ctx = ctx
	v.resolve()
}

// Detach unbinds the slot, closing the binding and synchronously
// stopping all notification forwarding. Safe on a detached variable.
func (v *Variable) Detach() {
	v.stopRetry()
	v.unwire()
	if v.bound != nil {
		v.bound.Close()
	} else {
		for _, m := range v.members {
			if m != nil {
				m.Close()
			}
		}
	}
	v.bound = nil
	v.members = nil
	v.memberSpecs = nil
	v.ctx = nil
}

// IsAttached reports whether the slot is attached to a context.
func (v *Variable) IsAttached() bool { return v.ctx != nil }

// Bound returns the slot's current binding, or nil while unresolved.
func (v *Variable) Bound() ref.Bound { return v.bound }

// ResolvedValue returns the current value of the binding, or nil while
// unresolved.
func (v *Variable) ResolvedValue() any {
	if v.bound == nil {
		return nil
	}
	return v.bound.Value()
}

// ReferencedUUIDs returns every UUID named by the slot's specifiers,
// resolved or not, for the store's cascade collector.
func (v *Variable) ReferencedUUIDs() []uuid.UUID {
	var out []uuid.UUID
	if !v.spec.IsZero() {
		out = append(out, v.spec.UUID)
	}
	if !v.secondary.IsZero() {
		out = append(out, v.secondary.UUID)
	}
	for _, s := range v.objectSpecs {
		out = append(out, s.UUID)
	}
	return out
}

// Close detaches and closes the variable.
// Closing twice is a programmer error.
func (v *Variable) Close() {
	v.Detach()
	v.Base.Close()
}

func (v *Variable) resolve() {
	v.stopRetry()
	switch {
	case v.valueType != "":
		v.wire(v.literal())
	case v.isList:
		v.resolveList()
	case !v.spec.IsZero():
		if b := v.ctx.Resolve(v.spec, v.secondary, v.propertyName); b != nil {
			v.wire(b)
		} else {
			v.watchInsertions()
		}
	}
}

// reconcileList re-derives the member bindings of an attached list
// slot after a specifier-list mutation.
func (v *Variable) reconcileList() {
	switch b := v.bound.(type) {
	case *ref.BoundList:
		v.unwire()
		v.members = b.Take()
	case nil:
	default:
		v.unwire()
		b.Close()
	}
	v.bound = nil
	v.resolveList()
}

func (v *Variable) resolveList() {
	build := func(spec ref.Specifier) ref.Bound {
		return v.ctx.Resolve(spec, ref.Specifier{}, v.propertyName)
	}
	v.members, _ = ref.Reconcile(v.members, v.memberSpecs, v.objectSpecs, build)
	v.memberSpecs = slices.Clone(v.objectSpecs)
	for _, m := range v.members {
		if m == nil {
			v.watchInsertions()
			return
		}
	}
	agg := ref.NewBoundList(v.members)
	v.wire(agg)
}

func (v *Variable) wire(b ref.Bound) {
	v.bound = b
	v.wires = []*events.Listener{
		b.Changed().Listen(v.Changed.Emit),
		b.NeedsRebind().Listen(v.RebindRequested.Emit),
	}
}

func (v *Variable) unwire() {
	for _, w := range v.wires {
		w.Close()
	}
	v.wires = nil
}

// watchInsertions arms a retry for an unresolved slot: any insertion
// into the store runs resolution again. Retrying on every insertion
// rather than only on directly named UUIDs also covers indirect
// chains, such as a channel whose data item comes back. This is the
// path that rebinds slots after an undelete without anyone
// re-specifying them.
func (v *Variable) watchInsertions() {
	if v.retry != nil || v.ctx == nil {
		return
	}
	v.retry = v.ctx.ItemInserted().Listen(func(uuid.UUID) {
		v.resolve()
		if v.bound != nil {
			v.Changed.Emit()
		}
	})
}

func (v *Variable) stopRetry() {
	if v.retry != nil {
		v.retry.Close()
		v.retry = nil
	}
}

// literal returns a passthrough binding over the variable's declared
// value, so value-typed variables resolve uniformly with object ones.
func (v *Variable) literal() ref.Bound {
	b := &literalBound{variable: v}
	b.Watch(v.PropertyChanged.Listen(func(property string) {
		if property == "value" {
			b.Changed().Emit()
		}
	}))
	return b
}

type literalBound struct {
	ref.BoundBase
	variable *Variable
}

func (b *literalBound) Value() any { return b.variable.value }

// WriteDict implements [persist.Object].
func (v *Variable) WriteDict() map[string]any {
	dict := v.WriteBase(v.TypeTag())
	dict["name"] = v.name
	if v.label != "" {
		dict["label"] = v.label
	}
	if v.valueType != "" {
		dict["value_type"] = v.valueType
		dict["value"] = writeValue(v.valueType, v.value)
	}
	if !v.spec.IsZero() {
		dict["specifier"] = v.spec.ToDict()
	}
	if !v.secondary.IsZero() {
		dict["secondary_specifier"] = v.secondary.ToDict()
	}
	if v.propertyName != "" {
		dict["property_name"] = v.propertyName
	}
	if v.isList {
		dict["object_specifiers"] = ref.ToDicts(v.objectSpecs)
	}
	return dict
}

// ReadDict implements [persist.Object].
func (v *Variable) ReadDict(dict map[string]any) error {
	if err := v.ReadBase(dict); err != nil {
		return err
	}
	v.name, _ = persist.DictString(dict, "name")
	v.label, _ = persist.DictString(dict, "label")
	v.valueType, _ = persist.DictString(dict, "value_type")
	v.value = readValue(v.valueType, dict["value"])
	if sd, ok := persist.DictMap(dict, "specifier"); ok {
		spec, err := ref.FromDict(sd)
		if err != nil {
			return err
		}
		v.spec = spec
	}
	if sd, ok := persist.DictMap(dict, "secondary_specifier"); ok {
		spec, err := ref.FromDict(sd)
		if err != nil {
			return err
		}
		v.secondary = spec
	}
	v.propertyName, _ = persist.DictString(dict, "property_name")
	if sl, ok := persist.DictSlice(dict, "object_specifiers"); ok {
		specs, err := ref.FromDicts(sl)
		if err != nil {
			return err
		}
		v.objectSpecs = specs
		v.isList = true
	}
	return nil
}

// writeValue makes a literal value storable; complex values become a
// real and imaginary pair.
func writeValue(valueType string, value any) any {
	if valueType == ValueComplex {
		if c, ok := value.(complex128); ok {
			return map[string]any{"real": real(c), "imag": imag(c)}
		}
	}
	return value
}

// readValue undoes writeValue, also normalizing integral values that
// arrive as floats from serialization.
func readValue(valueType string, value any) any {
	switch valueType {
	case ValueComplex:
		if m, ok := value.(map[string]any); ok {
			re, _ := m["real"].(float64)
			im, _ := m["imag"].(float64)
			return complex(re, im)
		}
	case ValueIntegral:
		switch n := value.(type) {
		case float64:
			return int64(n)
		case int:
			return int64(n)
		}
	}
	return value
}
