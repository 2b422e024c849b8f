// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compute implements the reactive computation graph: named
// variable and output slots bound through specifiers to live objects,
// and the evaluation state machine that re-runs an expression or a
// registered transform whenever its inputs change.
package compute

import (
	"time"

	"cogentcore.org/loom/events"
	"cogentcore.org/loom/persist"
	"cogentcore.org/loom/ref"
	"github.com/google/uuid"
)

// Result modes, selected at creation. A value-mode computation
// produces a fresh result that the store commits to its outputs; a
// target-mode computation mutates a supplied output object in place.
const (
	ModeValue  = "value"
	ModeTarget = "target"
)

const missingParameters = "Missing parameters."

// Computation is a reproducible derivation: an expression or a known
// transform over the values of its ordered variable slots, delivering
// into its ordered output slots. It tracks whether it needs updating
// and captures evaluation failures as error text on the entity.
//
// Mutate the slot lists only through the computation's methods, which
// keep binding state and notifications consistent.
type Computation struct {
	persist.Base `copier:"-"`

	// Variables and Outputs are the ordered slots. Their Inserted and
	// Removed events report structural edits.
	Variables persist.List[*Variable]
	Outputs   persist.List[*Output]

	// Mutated fires whenever the computation or any of its slots
	// changes in a way that affects its result or appearance.
	Mutated events.Signal `copier:"-"`

	// OutputChanged fires when an output slot has been rebound.
	OutputChanged events.Signal `copier:"-"`

	expression   string
	processingID string
	label        string
	errorText    string
	resultMode   string

	needsUpdate   bool
	lastResult    any
	lastEvaluated time.Time
	evalCount     int

	local         *localContext
	variableWires map[uuid.UUID][]*events.Listener
	outputWires   map[uuid.UUID][]*events.Listener
}

func init() {
	persist.AddType("computation", func() persist.Object { return &Computation{} })
}

// NewComputation returns a value-mode computation over the given
// expression, which may be empty when a processing id will drive it.
func NewComputation(expression string) *Computation {
	return newComputation(expression, ModeValue)
}

// NewTargetComputation returns a target-mode computation over the
// given expression, evaluated with [Computation.EvaluateWithTarget].
func NewTargetComputation(expression string) *Computation {
	return newComputation(expression, ModeTarget)
}

func newComputation(expression, mode string) *Computation {
	c := &Computation{expression: expression, resultMode: mode}
	c.Init()
	c.needsUpdate = expression != ""
	return c
}

// TypeTag implements [persist.Object].
func (c *Computation) TypeTag() string { return "computation" }

// Expression returns the expression text.
func (c *Computation) Expression() string { return c.expression }

// SetExpression replaces the expression text. Editing the expression
// clears the processing id, since the computation is no longer the
// known transform it was created as.
func (c *Computation) SetExpression(expression string) {
	if c.expression == expression {
		return
	}
	c.expression = expression
	c.processingID = ""
	c.Notify("original_expression")
	c.MarkUpdate()
}

// ProcessingID returns the tag identifying the registered transform
// this computation applies, or empty for free expressions.
func (c *Computation) ProcessingID() string { return c.processingID }

// SetProcessingID tags the computation as an application of a
// registered transform.
func (c *Computation) SetProcessingID(id string) {
	if c.processingID == id {
		return
	}
	c.processingID = id
	c.Notify("processing_id")
	c.MarkUpdate()
}

// Label returns the user-visible label.
func (c *Computation) Label() string { return c.label }

// SetLabel sets the user-visible label.
func (c *Computation) SetLabel(label string) {
	if c.label == label {
		return
	}
	c.label = label
	c.Notify("label")
	c.Mutated.Emit()
}

// ResultMode reports how evaluation delivers results, [ModeValue] or
// [ModeTarget].
func (c *Computation) ResultMode() string { return c.resultMode }

// ErrorText returns the captured failure of the last evaluation, or
// empty after success.
func (c *Computation) ErrorText() string { return c.errorText }

func (c *Computation) setErrorText(text string) {
	if c.errorText == text {
		return
	}
	// Failure capture is not a user edit, so the modified time is
	// deliberately left alone.
	c.errorText = text
	c.PropertyChanged.Emit("error_text")
	c.Mutated.Emit()
}

// NeedsUpdate reports whether the computation must be re-evaluated.
func (c *Computation) NeedsUpdate() bool { return c.needsUpdate }

// MarkUpdate records that inputs or structure changed and a new
// evaluation is needed, and fires Mutated.
func (c *Computation) MarkUpdate() {
	c.needsUpdate = true
	c.Mutated.Emit()
}

// IsBound reports whether the computation is bound to a context.
func (c *Computation) IsBound() bool { return c.local != nil }

// Bind attaches every variable and then every output to the given
// context, wrapped in a local context that answers specifiers naming
// the computation's own variables first. Binding a bound computation,
// or one with slots already attached elsewhere, is a programmer error.
func (c *Computation) Bind(ctx Context) {
	if c.local != nil {
		panic("compute: computation bound twice")
	}
	for _, v := range c.Variables.Items() {
		if v.IsAttached() {
			panic("compute: variable already attached: " + v.Name())
		}
	}
	for _, o := range c.Outputs.Items() {
		if o.IsAttached() {
			panic("compute: output already attached: " + o.Name())
		}
	}
	c.local = &localContext{outer: ctx, comp: c}
	for _, v := range c.Variables.Items() {
		c.bindVariable(v)
	}
	for _, o := range c.Outputs.Items() {
		c.bindOutput(o)
	}
}

// Unbind detaches every slot, synchronously stopping all notification
// forwarding. Safe on an unbound computation.
func (c *Computation) Unbind() {
	for _, v := range c.Variables.Items() {
		c.unbindVariable(v)
	}
	for _, o := range c.Outputs.Items() {
		c.unbindOutput(o)
	}
	c.local = nil
}

// Close unbinds and closes the computation and all of its slots.
// Closing twice is a programmer error.
func (c *Computation) Close() {
	c.Unbind()
	for _, v := range c.Variables.Items() {
		v.Close()
	}
	for _, o := range c.Outputs.Items() {
		o.Close()
	}
	c.Base.Close()
}

func (c *Computation) bindVariable(v *Variable) {
	if c.variableWires == nil {
		c.variableWires = map[uuid.UUID][]*events.Listener{}
	}
	c.variableWires[v.UUID] = []*events.Listener{
		v.Changed.Listen(c.MarkUpdate),
		v.RebindRequested.Listen(func() {
			c.needsUpdate = true
			c.unbindVariable(v)
			c.bindVariable(v)
		}),
	}
	v.Attach(c.local)
}

func (c *Computation) unbindVariable(v *Variable) {
	for _, w := range c.variableWires[v.UUID] {
		w.Close()
	}
	delete(c.variableWires, v.UUID)
	v.Detach()
}

func (c *Computation) bindOutput(o *Output) {
	if c.outputWires == nil {
		c.outputWires = map[uuid.UUID][]*events.Listener{}
	}
	c.outputWires[o.UUID] = []*events.Listener{
		o.PropertyChanged.Listen(func(string) {
			c.Mutated.Emit()
		}),
		o.RebindRequested.Listen(func() {
			c.unbindOutput(o)
			c.bindOutput(o)
			c.OutputChanged.Emit()
		}),
	}
	o.Attach(c.local)
}

func (c *Computation) unbindOutput(o *Output) {
	for _, w := range c.outputWires[o.UUID] {
		w.Close()
	}
	delete(c.outputWires, o.UUID)
	o.Detach()
}

// AddVariable appends a variable slot, binding it if the computation
// is bound.
func (c *Computation) AddVariable(v *Variable) {
	c.InsertVariable(c.Variables.Len(), v)
}

// InsertVariable inserts a variable slot at index, binding it if the
// computation is bound.
func (c *Computation) InsertVariable(index int, v *Variable) {
	c.Variables.Insert(index, v)
	if c.local != nil {
		c.bindVariable(v)
	}
	c.MarkUpdate()
}

// RemoveVariable unbinds, removes, and closes a variable slot.
func (c *Computation) RemoveVariable(v *Variable) {
	c.unbindVariable(v)
	c.Variables.Remove(v)
	v.Close()
	c.MarkUpdate()
}

// AddOutput appends an output slot, binding it if the computation is
// bound.
func (c *Computation) AddOutput(o *Output) {
	c.Outputs.Append(o)
	if c.local != nil {
		c.bindOutput(o)
	}
	c.Mutated.Emit()
}

// RemoveOutput unbinds, removes, and closes an output slot.
func (c *Computation) RemoveOutput(o *Output) {
	c.unbindOutput(o)
	c.Outputs.Remove(o)
	o.Close()
	c.Mutated.Emit()
}

// CreateVariable appends a new literal variable and returns it.
func (c *Computation) CreateVariable(name, valueType string, value any) *Variable {
	v := NewVariable(name, valueType, value)
	c.AddVariable(v)
	return v
}

// CreateInputItem appends a new specifier variable and returns it.
func (c *Computation) CreateInputItem(name string, spec, secondary ref.Specifier, property string) *Variable {
	v := NewInputItem(name, spec, secondary, property)
	c.AddVariable(v)
	return v
}

// CreateListInput appends a new list-valued variable and returns it.
func (c *Computation) CreateListInput(name string, specs []ref.Specifier) *Variable {
	v := NewListInput(name, specs)
	c.AddVariable(v)
	return v
}

// CreateOutputItem appends a new output slot and returns it.
func (c *Computation) CreateOutputItem(name string, spec ref.Specifier) *Output {
	o := NewOutputItem(name, spec)
	c.AddOutput(o)
	return o
}

// VariableByName returns the first variable with the given name, or
// nil.
func (c *Computation) VariableByName(name string) *Variable {
	for _, v := range c.Variables.Items() {
		if v.Name() == name {
			return v
		}
	}
	return nil
}

// ResolveVariable returns the computation's own variable named by a
// variable specifier, or nil.
func (c *Computation) ResolveVariable(spec ref.Specifier) *Variable {
	if spec.Type != ref.TypeVariable {
		return nil
	}
	v, _ := c.Variables.ByUUID(spec.UUID)
	return v
}

// IsResolved reports whether evaluation can run: every variable slot
// resolves to a non-nil value and every output slot naming results is
// fully bound.
func (c *Computation) IsResolved() bool {
	for _, v := range c.Variables.Items() {
		if v.ResolvedValue() == nil {
			return false
		}
	}
	for _, o := range c.Outputs.Items() {
		if !o.IsResolved() {
			return false
		}
	}
	return true
}

// Evaluate runs a value-mode computation through the evaluator if it
// needs updating. An unresolved computation records "Missing
// parameters." and stays marked for update without invoking the
// evaluator; evaluator failures and unknown processing ids are
// captured as error text and clear the update mark so they are not
// retried in a loop. Calling Evaluate on a target-mode computation is
// a programmer error.
func (c *Computation) Evaluate(ev Evaluator) {
	if c.resultMode != ModeValue {
		panic("compute: Evaluate on a target-mode computation")
	}
	if !c.needsUpdate {
		return
	}
	if !c.IsResolved() {
		c.setErrorText(missingParameters)
		return
	}
	inputs := c.resolvedInputs()
	var result any
	var err error
	if c.processingID != "" {
		result, err = ev.Evaluate(c.processingID, inputs)
	} else {
		result, err = ev.EvaluateExpression(c.expression, inputs)
	}
	c.evalCount++
	c.lastEvaluated = time.Now()
	c.needsUpdate = false
	if err != nil {
		c.lastResult = nil
		c.setErrorText(evaluationError(err))
		return
	}
	c.lastResult = result
	c.setErrorText("")
}

// EvaluateWithTarget runs a target-mode computation, threading the
// supplied output object into the evaluator instead of producing a
// fresh result. Gating and failure capture match [Computation.Evaluate].
// Calling it on a value-mode computation, or with a nil target, is a
// programmer error.
func (c *Computation) EvaluateWithTarget(ev Evaluator, target any) {
	if c.resultMode != ModeTarget {
		panic("compute: EvaluateWithTarget on a value-mode computation")
	}
	if target == nil {
		panic("compute: EvaluateWithTarget with nil target")
	}
	if !c.needsUpdate {
		return
	}
	if !c.IsResolved() {
		c.setErrorText(missingParameters)
		return
	}
	err := ev.ExecuteWithTarget(c.expression, target, c.resolvedInputs())
	c.evalCount++
	c.lastEvaluated = time.Now()
	c.needsUpdate = false
	if err != nil {
		c.setErrorText(evaluationError(err))
		return
	}
	c.setErrorText("")
}

// resolvedInputs gathers slot name to resolved value for evaluation.
func (c *Computation) resolvedInputs() map[string]any {
	inputs := map[string]any{}
	for _, v := range c.Variables.Items() {
		inputs[v.Name()] = v.ResolvedValue()
	}
	return inputs
}

func evaluationError(err error) string {
	if text := err.Error(); text != "" {
		return text
	}
	return "Unable to evaluate script."
}

// LastResult returns the result captured by the most recent successful
// evaluation of a value-mode computation.
func (c *Computation) LastResult() any { return c.lastResult }

// LastEvaluated returns the time of the most recent evaluator run.
func (c *Computation) LastEvaluated() time.Time { return c.lastEvaluated }

// EvaluationCount returns how many times the evaluator has been
// invoked, for asserting evaluation idempotence.
func (c *Computation) EvaluationCount() int { return c.evalCount }

// InputItems returns the flattened set of concrete entities the
// variable bindings depend on. Derived, never stored.
func (c *Computation) InputItems() []persist.Object {
	var out []persist.Object
	seen := map[persist.Object]bool{}
	for _, v := range c.Variables.Items() {
		b := v.Bound()
		if b == nil {
			continue
		}
		for _, obj := range b.Objects() {
			if !seen[obj] {
				seen[obj] = true
				out = append(out, obj)
			}
		}
	}
	return out
}

// OutputItems returns the flattened set of concrete entities the
// output bindings point at. Derived, never stored.
func (c *Computation) OutputItems() []persist.Object {
	var out []persist.Object
	seen := map[persist.Object]bool{}
	for _, o := range c.Outputs.Items() {
		for _, obj := range o.Objects() {
			if !seen[obj] {
				seen[obj] = true
				out = append(out, obj)
			}
		}
	}
	return out
}

// ReferencedUUIDs returns every UUID named by any slot's specifiers,
// resolved or not, for the store's cascade collector.
func (c *Computation) ReferencedUUIDs() []uuid.UUID {
	var out []uuid.UUID
	for _, v := range c.Variables.Items() {
		out = append(out, v.ReferencedUUIDs()...)
	}
	for _, o := range c.Outputs.Items() {
		out = append(out, o.ReferencedUUIDs()...)
	}
	return out
}

// ChildUUIDs returns the UUIDs of the computation's own variables and
// outputs. References to them count as references to the computation.
func (c *Computation) ChildUUIDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, c.Variables.Len()+c.Outputs.Len())
	for _, v := range c.Variables.Items() {
		out = append(out, v.UUID)
	}
	for _, o := range c.Outputs.Items() {
		out = append(out, o.UUID)
	}
	return out
}

// WriteDict implements [persist.Object].
func (c *Computation) WriteDict() map[string]any {
	dict := c.WriteBase(c.TypeTag())
	dict["original_expression"] = c.expression
	if c.processingID != "" {
		dict["processing_id"] = c.processingID
	}
	if c.label != "" {
		dict["label"] = c.label
	}
	if c.errorText != "" {
		dict["error_text"] = c.errorText
	}
	dict["result_mode"] = c.resultMode
	vars := make([]any, 0, c.Variables.Len())
	for _, v := range c.Variables.Items() {
		vars = append(vars, v.WriteDict())
	}
	dict["variables"] = vars
	outs := make([]any, 0, c.Outputs.Len())
	for _, o := range c.Outputs.Items() {
		outs = append(outs, o.WriteDict())
	}
	dict["outputs"] = outs
	return dict
}

// ReadDict implements [persist.Object]. A loaded computation is marked
// for update when it has anything to evaluate, since results are not
// persisted.
func (c *Computation) ReadDict(dict map[string]any) error {
	if err := c.ReadBase(dict); err != nil {
		return err
	}
	c.expression, _ = persist.DictString(dict, "original_expression")
	c.processingID, _ = persist.DictString(dict, "processing_id")
	c.label, _ = persist.DictString(dict, "label")
	c.errorText, _ = persist.DictString(dict, "error_text")
	c.resultMode, _ = persist.DictString(dict, "result_mode")
	if c.resultMode == "" {
		c.resultMode = ModeValue
	}
	if vds, ok := persist.DictSlice(dict, "variables"); ok {
		for _, vd := range vds {
			vdict, ok := vd.(map[string]any)
			if !ok {
				continue
			}
			v := &Variable{}
			if err := v.ReadDict(vdict); err != nil {
				return err
			}
			c.Variables.Append(v)
		}
	}
	if ods, ok := persist.DictSlice(dict, "outputs"); ok {
		for _, od := range ods {
			odict, ok := od.(map[string]any)
			if !ok {
				continue
			}
			o := &Output{}
			if err := o.ReadDict(odict); err != nil {
				return err
			}
			c.Outputs.Append(o)
		}
	}
	c.needsUpdate = c.expression != "" || c.processingID != ""
	return nil
}
