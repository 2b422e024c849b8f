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

// Output is one named result slot on a computation, holding a
// specifier or a list of specifiers naming the objects results are
// committed to. When a result object disappears, the slot that named
// it is cleared so the output never keeps pointing at nothing.
type Output struct {
	persist.Base `copier:"-"`

	// RebindRequested asks the owning computation to unbind and rebind
	// this slot; fired when a specifier changes, when a result object
	// disappears, or when an unresolved slot can retry.
	RebindRequested events.Signal `copier:"-"`

	name  string
	label string
	spec  ref.Specifier
	specs []ref.Specifier

	ctx         Context
	bound       ref.Bound
	wires       []*events.Listener
	members     []ref.Bound
	memberSpecs []ref.Specifier
	retry       *events.Listener
}

func init() {
	persist.AddType("output", func() persist.Object { return &Output{} })
}

// NewOutputItem returns an output naming a single result object.
func NewOutputItem(name string, spec ref.Specifier) *Output {
	o := &Output{name: name, spec: spec}
	o.Init()
	return o
}

// NewListOutput returns a list-valued output over the given result
// objects.
func NewListOutput(name string, specs []ref.Specifier) *Output {
	o := &Output{name: name, specs: slices.Clone(specs)}
	if o.specs == nil {
		o.specs = []ref.Specifier{}
	}
	o.Init()
	return o
}

// TypeTag implements [persist.Object].
func (o *Output) TypeTag() string { return "output" }

// Name returns the slot name.
func (o *Output) Name() string { return o.name }

// Label returns the user-visible label, defaulting to the name.
func (o *Output) Label() string {
	if o.label == "" {
		return o.name
	}
	return o.label
}

// SetLabel sets the user-visible label.
func (o *Output) SetLabel(label string) {
	if o.label == label {
		return
	}
	o.label = label
	o.Notify("label")
}

// Specifier returns the single result specifier; zero for list-valued
// or cleared outputs.
func (o *Output) Specifier() ref.Specifier { return o.spec }

// Specifiers returns the member specifiers of a list-valued output,
// or nil for a single-valued one.
func (o *Output) Specifiers() []ref.Specifier { return slices.Clone(o.specs) }

// IsList reports whether the output is list-valued.
func (o *Output) IsList() bool { return o.specs != nil }

// SetSpecifier points the output at a new result object, clearing any
// list form.
func (o *Output) SetSpecifier(spec ref.Specifier) {
	o.spec = spec
	o.specs = nil
	o.Notify("specifier")
	o.RebindRequested.Emit()
}

// SetSpecifiers makes the output list-valued over the given result
// objects, clearing any single form.
func (o *Output) SetSpecifiers(specs []ref.Specifier) {
	o.specs = slices.Clone(specs)
	if o.specs == nil {
		o.specs = []ref.Specifier{}
	}
	o.spec = ref.Specifier{}
	o.Notify("specifiers")
	o.RebindRequested.Emit()
}

// Attach binds the slot against a resolution context. Attaching an
// attached output is a programmer error.
func (o *Output) Attach(ctx Context) {
	if o.ctx != nil {
		panic("compute: output attached twice: " + o.name)
	}
	o.ctx = ctx
	o.resolve()
}

// Detach unbinds the slot, closing all bindings. Safe on a detached
// output.
func (o *Output) Detach() {
	o.stopRetry()
	o.unwire()
	if o.bound != nil {
		o.bound.Close()
	}
	for _, m := range o.members {
		if m != nil {
			m.Close()
		}
	}
	o.bound = nil
	o.members = nil
	o.memberSpecs = nil
	o.ctx = nil
}

// IsAttached reports whether the slot is attached to a context.
func (o *Output) IsAttached() bool { return o.ctx != nil }

// IsResolved reports whether every named result slot is bound. An
// output with no specifiers is vacuously resolved.
func (o *Output) IsResolved() bool {
	if !o.spec.IsZero() {
		return o.bound != nil
	}
	if len(o.members) != len(o.specs) {
		return false
	}
	for _, m := range o.members {
		if m == nil {
			return false
		}
	}
	return true
}

// TargetObject returns the resolved result object of a single-valued
// output, or nil.
func (o *Output) TargetObject() persist.Object {
	if o.bound == nil {
		return nil
	}
	obj, _ := o.bound.Value().(persist.Object)
	return obj
}

// TargetObjects returns the resolved result objects of a list-valued
// output; unresolved members are nil.
func (o *Output) TargetObjects() []persist.Object {
	out := make([]persist.Object, len(o.members))
	for i, m := range o.members {
		if m != nil {
			out[i], _ = m.Value().(persist.Object)
		}
	}
	return out
}

// Objects returns the concrete entities the output bindings point at,
// for the store's dependency bookkeeping.
func (o *Output) Objects() []persist.Object {
	if o.bound != nil {
		return o.bound.Objects()
	}
	var out []persist.Object
	for _, m := range o.members {
		if m != nil {
			out = append(out, m.Objects()...)
		}
	}
	return out
}

// ReferencedUUIDs returns every UUID the output names, resolved or
// not, for the store's cascade collector.
func (o *Output) ReferencedUUIDs() []uuid.UUID {
	var out []uuid.UUID
	if !o.spec.IsZero() {
		out = append(out, o.spec.UUID)
	}
	for _, s := range o.specs {
		out = append(out, s.UUID)
	}
	return out
}

// Close detaches and closes the output.
// Closing twice is a programmer error.
func (o *Output) Close() {
	o.Detach()
	o.Base.Close()
}

func (o *Output) resolve() {
	o.stopRetry()
	if !o.spec.IsZero() {
		if b := o.ctx.Resolve(o.spec, ref.Specifier{}, ""); b != nil {
			o.bound = b
			o.wires = []*events.Listener{
				b.NeedsRebind().Listen(o.singleVanished),
			}
		} else {
			o.watchInsertions()
		}
		return
	}
	if o.specs != nil {
		o.resolveList()
	}
}

func (o *Output) resolveList() {
	build := func(spec ref.Specifier) ref.Bound {
		return o.ctx.Resolve(spec, ref.Specifier{}, "")
	}
	o.unwire()
	o.members, _ = ref.Reconcile(o.members, o.memberSpecs, o.specs, build)
	o.memberSpecs = slices.Clone(o.specs)
	unresolved := false
	for i, m := range o.members {
		if m == nil {
			unresolved = true
			continue
		}
		o.wires = append(o.wires, m.NeedsRebind().Listen(func() {
			o.memberVanished(i)
		}))
	}
	if unresolved {
		o.watchInsertions()
	}
}

// singleVanished clears the specifier after the result object it named
// disappeared, then asks for a rebind.
func (o *Output) singleVanished() {
	o.spec = ref.Specifier{}
	o.Notify("specifier")
	o.RebindRequested.Emit()
}

// memberVanished drops the member specifier whose result object
// disappeared, then asks for a rebind. The rebind rebuilds every
// member wire, so the captured index is never stale.
func (o *Output) memberVanished(index int) {
	o.specs = slices.Delete(o.specs, index, index+1)
	o.Notify("specifiers")
	o.RebindRequested.Emit()
}

func (o *Output) unwire() {
	for _, w := range o.wires {
		w.Close()
	}
	o.wires = nil
}

// watchInsertions arms a retry for an unresolved slot: any insertion
// into the store requests a rebind, which re-resolves every member.
func (o *Output) watchInsertions() {
	if o.retry != nil || o.ctx == nil {
		return
	}
	o.retry = o.ctx.ItemInserted().Listen(func(uuid.UUID) {
		o.RebindRequested.Emit()
	})
}

func (o *Output) stopRetry() {
	if o.retry != nil {
		o.retry.Close()
		o.retry = nil
	}
}

// WriteDict implements [persist.Object].
func (o *Output) WriteDict() map[string]any {
	dict := o.WriteBase(o.TypeTag())
	dict["name"] = o.name
	if o.label != "" {
		dict["label"] = o.label
	}
	if !o.spec.IsZero() {
		dict["specifier"] = o.spec.ToDict()
	}
	if o.specs != nil {
		dict["specifiers"] = ref.ToDicts(o.specs)
	}
	return dict
}

// ReadDict implements [persist.Object].
func (o *Output) ReadDict(dict map[string]any) error {
	if err := o.ReadBase(dict); err != nil {
		return err
	}
	o.name, _ = persist.DictString(dict, "name")
	o.label, _ = persist.DictString(dict, "label")
	if sd, ok := persist.DictMap(dict, "specifier"); ok {
		spec, err := ref.FromDict(sd)
		if err != nil {
			return err
		}
		o.spec = spec
	}
	if sl, ok := persist.DictSlice(dict, "specifiers"); ok {
		specs, err := ref.FromDicts(sl)
		if err != nil {
			return err
		}
		o.specs = specs
		if o.specs == nil {
			o.specs = []ref.Specifier{}
		}
	}
	return nil
}
