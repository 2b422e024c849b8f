// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compute_test

import (
	"testing"

	"cogentcore.org/loom/compute"
	"cogentcore.org/loom/events"
	"cogentcore.org/loom/item"
	"cogentcore.org/loom/persist"
	"cogentcore.org/loom/ref"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testContext is a minimal store: data items by UUID, resolving
// data_item specifiers to the object and xdata specifiers to its data.
type testContext struct {
	objects      map[uuid.UUID]*item.DataItem
	inserted     events.Event[uuid.UUID]
	removed      events.Event[uuid.UUID]
	resolveCalls int
}

func newTestContext() *testContext {
	return &testContext{objects: map[uuid.UUID]*item.DataItem{}}
}

func (c *testContext) add(di *item.DataItem) {
	c.objects[di.UUID] = di
	c.inserted.Emit(di.UUID)
}

func (c *testContext) remove(di *item.DataItem) {
	delete(c.objects, di.UUID)
	c.removed.Emit(di.UUID)
}

func (c *testContext) ItemInserted() *events.Event[uuid.UUID] { return &c.inserted }

func (c *testContext) Resolve(spec, secondary ref.Specifier, property string) ref.Bound {
	c.resolveCalls++
	di, ok := c.objects[spec.UUID]
	if !ok {
		return nil
	}
	b := &testBound{}
	switch spec.Type {
	case ref.TypeDataItem:
		b.value = func() any { return di }
	case ref.TypeXData:
		b.value = func() any {
			if di.Data == nil {
				return nil
			}
			return di.Data
		}
	default:
		return nil
	}
	b.objs = []persist.Object{di}
	b.Watch(
		di.DataChanged.Listen(func() { b.Changed().Emit() }),
		c.removed.Listen(func(id uuid.UUID) {
			if id == di.UUID {
				b.NeedsRebind().Emit()
			}
		}),
	)
	return b
}

type testBound struct {
	ref.BoundBase
	value func() any
	objs  []persist.Object
}

func (b *testBound) Value() any               { return b.value() }
func (b *testBound) Objects() []persist.Object { return b.objs }

func newItem(values ...float64) *item.DataItem {
	return item.NewDataItem(item.NewData(values))
}

func TestEvaluateExpression(t *testing.T) {
	ctx := newTestContext()
	d1 := newItem(5)
	ctx.add(d1)

	c := compute.NewComputation("mul(a, k)")
	c.CreateInputItem("a", ref.New(ref.TypeXData, d1.UUID), ref.Specifier{}, "")
	c.CreateVariable("k", compute.ValueIntegral, int64(2))
	c.Bind(ctx)
	require.True(t, c.IsResolved())
	require.True(t, c.NeedsUpdate())

	ev := compute.NewExec(compute.StandardRegistry())
	c.Evaluate(ev)
	assert.Empty(t, c.ErrorText())
	assert.False(t, c.NeedsUpdate())
	assert.Equal(t, 1, c.EvaluationCount())
	result, ok := c.LastResult().(*item.Data)
	require.True(t, ok, "result is %T", c.LastResult())
	assert.Equal(t, []float64{10}, result.Values)

	// Without an intervening update the evaluator must not run again.
	c.Evaluate(ev)
	assert.Equal(t, 1, c.EvaluationCount())

	// A data change re-arms evaluation.
	d1.SetData(item.NewData([]float64{7}, 1))
	assert.True(t, c.NeedsUpdate())
	c.Evaluate(ev)
	assert.Equal(t, 2, c.EvaluationCount())
	assert.Equal(t, []float64{14}, c.LastResult().(*item.Data).Values)
}

func TestEvaluateProcessor(t *testing.T) {
	ctx := newTestContext()
	d1 := newItem(1, 2, 3)
	ctx.add(d1)

	c := compute.NewComputation("")
	c.SetProcessingID("invert")
	c.CreateInputItem("src", ref.New(ref.TypeXData, d1.UUID), ref.Specifier{}, "")
	c.Bind(ctx)

	ev := compute.NewExec(compute.StandardRegistry())
	c.Evaluate(ev)
	assert.Empty(t, c.ErrorText())
	assert.Equal(t, []float64{-1, -2, -3}, c.LastResult().(*item.Data).Values)
}

func TestEvaluateMissingProcessor(t *testing.T) {
	ctx := newTestContext()
	d1 := newItem(1)
	ctx.add(d1)

	c := compute.NewComputation("")
	c.SetProcessingID("fft")
	c.CreateInputItem("src", ref.New(ref.TypeXData, d1.UUID), ref.Specifier{}, "")
	c.Bind(ctx)

	ev := compute.NewExec(compute.StandardRegistry())
	c.Evaluate(ev)
	assert.Equal(t, "Missing computation (fft).", c.ErrorText())
	// A missing transform is a completed evaluation, not a retry loop.
	assert.False(t, c.NeedsUpdate())
	assert.Equal(t, 1, c.EvaluationCount())
}

func TestEvaluateUnresolved(t *testing.T) {
	ctx := newTestContext()
	missing := uuid.New()

	c := compute.NewComputation("mul(a, 2)")
	c.CreateInputItem("a", ref.New(ref.TypeXData, missing), ref.Specifier{}, "")
	c.Bind(ctx)
	require.False(t, c.IsResolved())

	ev := compute.NewExec(compute.StandardRegistry())
	c.Evaluate(ev)
	assert.Equal(t, "Missing parameters.", c.ErrorText())
	// The evaluator never ran, and the computation stays marked so it
	// evaluates as soon as the dependency appears.
	assert.True(t, c.NeedsUpdate())
	assert.Equal(t, 0, c.EvaluationCount())

	di := item.NewDataItem(item.NewData([]float64{3}))
	di.UUID = missing
	ctx.add(di)
	require.True(t, c.IsResolved())

	c.Evaluate(ev)
	assert.Empty(t, c.ErrorText())
	assert.Equal(t, []float64{6}, c.LastResult().(*item.Data).Values)
}

func TestRemovalUnresolvesAndRestoreRebinds(t *testing.T) {
	ctx := newTestContext()
	d1 := newItem(5)
	ctx.add(d1)

	c := compute.NewComputation("mul(a, 2)")
	a := c.CreateInputItem("a", ref.New(ref.TypeXData, d1.UUID), ref.Specifier{}, "")
	c.Bind(ctx)
	require.True(t, c.IsResolved())

	ctx.remove(d1)
	assert.Nil(t, a.Bound())
	assert.False(t, c.IsResolved())
	assert.True(t, c.NeedsUpdate())

	// Restoring the same identity re-resolves the slot without anyone
	// touching the specifier.
	ctx.add(d1)
	assert.NotNil(t, a.Bound())
	assert.True(t, c.IsResolved())
}

func TestEvaluateWithTarget(t *testing.T) {
	ctx := newTestContext()
	d1 := newItem(5)
	ctx.add(d1)
	out := item.NewDataItem(nil)

	c := compute.NewTargetComputation("target.SetData(mul(a, k))")
	c.CreateInputItem("a", ref.New(ref.TypeXData, d1.UUID), ref.Specifier{}, "")
	c.CreateVariable("k", compute.ValueReal, 2.0)
	c.Bind(ctx)

	ev := compute.NewExec(compute.StandardRegistry())
	c.EvaluateWithTarget(ev, out)
	assert.Empty(t, c.ErrorText())
	require.NotNil(t, out.Data)
	assert.Equal(t, []float64{10}, out.Data.Values)

	assert.Panics(t, func() { c.Evaluate(ev) })
	assert.Panics(t, func() { compute.NewComputation("x").EvaluateWithTarget(ev, out) })
}

func TestEvaluationFailureCaptured(t *testing.T) {
	ctx := newTestContext()
	d1 := newItem(1, 2)
	d2 := newItem(1, 2, 3)
	ctx.add(d1)
	ctx.add(d2)

	c := compute.NewComputation("add(a, b)")
	c.CreateInputItem("a", ref.New(ref.TypeXData, d1.UUID), ref.Specifier{}, "")
	c.CreateInputItem("b", ref.New(ref.TypeXData, d2.UUID), ref.Specifier{}, "")
	c.Bind(ctx)

	ev := compute.NewExec(compute.StandardRegistry())
	c.Evaluate(ev)
	assert.NotEmpty(t, c.ErrorText())
	assert.False(t, c.NeedsUpdate())
	assert.Equal(t, 1, c.EvaluationCount())
	assert.Nil(t, c.LastResult())
}

func TestBindContract(t *testing.T) {
	ctx := newTestContext()
	c := compute.NewComputation("1")
	c.Bind(ctx)
	assert.Panics(t, func() { c.Bind(ctx) })

	c.Unbind()
	c.Unbind() // safe on an unbound computation
	c.Bind(ctx)
	c.Close()
	assert.Panics(t, func() { c.Close() })
}

func TestListInput(t *testing.T) {
	ctx := newTestContext()
	d1 := newItem(1)
	d2 := newItem(2)
	d3 := newItem(3)
	ctx.add(d1)
	ctx.add(d2)
	ctx.add(d3)

	c := compute.NewComputation("srcs")
	v := c.CreateListInput("srcs", []ref.Specifier{
		ref.New(ref.TypeXData, d1.UUID),
		ref.New(ref.TypeXData, d2.UUID),
	})
	c.Bind(ctx)
	require.True(t, c.IsResolved())

	vals, ok := v.ResolvedValue().([]any)
	require.True(t, ok)
	require.Len(t, vals, 2)
	assert.Equal(t, []float64{1}, vals[0].(*item.Data).Values)
	assert.Equal(t, []float64{2}, vals[1].(*item.Data).Values)

	// Extending the list reuses the bindings of unchanged members.
	before := ctx.resolveCalls
	v.SetObjectSpecifiers([]ref.Specifier{
		ref.New(ref.TypeXData, d1.UUID),
		ref.New(ref.TypeXData, d2.UUID),
		ref.New(ref.TypeXData, d3.UUID),
	})
	assert.Equal(t, before+1, ctx.resolveCalls)
	vals = v.ResolvedValue().([]any)
	require.Len(t, vals, 3)
	assert.Equal(t, []float64{3}, vals[2].(*item.Data).Values)

	// Removing a member's target unresolves the slot; restoring it
	// resolves again.
	ctx.remove(d2)
	assert.False(t, c.IsResolved())
	ctx.add(d2)
	assert.True(t, c.IsResolved())
}

func TestOutputCleared(t *testing.T) {
	ctx := newTestContext()
	d1 := newItem(1)
	out := newItem(0)
	ctx.add(d1)
	ctx.add(out)

	c := compute.NewComputation("mul(a, 2)")
	c.CreateInputItem("a", ref.New(ref.TypeXData, d1.UUID), ref.Specifier{}, "")
	o := c.CreateOutputItem("result", ref.New(ref.TypeDataItem, out.UUID))
	c.Bind(ctx)
	require.True(t, c.IsResolved())
	assert.Same(t, out, o.TargetObject())

	outputChanges := 0
	c.OutputChanged.Listen(func() { outputChanges++ })

	// When the result object disappears the slot is cleared rather
	// than left naming nothing.
	ctx.remove(out)
	assert.True(t, o.Specifier().IsZero())
	assert.Nil(t, o.TargetObject())
	assert.Greater(t, outputChanges, 0)
	// A cleared output no longer blocks resolution.
	assert.True(t, c.IsResolved())
}

func TestComputationDict(t *testing.T) {
	d1 := uuid.New()
	out := uuid.New()

	c := compute.NewComputation("mul(a, k)")
	c.CreateInputItem("a", ref.New(ref.TypeXData, d1), ref.Specifier{}, "")
	c.CreateVariable("k", compute.ValueIntegral, int64(2))
	c.CreateListInput("extra", []ref.Specifier{ref.New(ref.TypeDataItem, d1)})
	c.CreateOutputItem("result", ref.New(ref.TypeDataItem, out))
	c.SetLabel("scaled")

	obj, err := persist.ReadNew(c.WriteDict())
	require.NoError(t, err)
	got, ok := obj.(*compute.Computation)
	require.True(t, ok)

	assert.Equal(t, c.UUID, got.UUID)
	assert.Equal(t, "mul(a, k)", got.Expression())
	assert.Equal(t, compute.ModeValue, got.ResultMode())
	assert.Equal(t, "scaled", got.Label())
	assert.True(t, got.NeedsUpdate())
	require.Equal(t, 3, got.Variables.Len())

	a := got.VariableByName("a")
	require.NotNil(t, a)
	assert.Equal(t, ref.New(ref.TypeXData, d1), a.Specifier())

	k := got.VariableByName("k")
	require.NotNil(t, k)
	assert.Equal(t, compute.ValueIntegral, k.ValueType())
	assert.Equal(t, int64(2), k.Value())

	extra := got.VariableByName("extra")
	require.NotNil(t, extra)
	assert.True(t, extra.IsList())
	assert.Equal(t, []ref.Specifier{ref.New(ref.TypeDataItem, d1)}, extra.ObjectSpecifiers())

	require.Equal(t, 1, got.Outputs.Len())
	assert.Equal(t, ref.New(ref.TypeDataItem, out), got.Outputs.At(0).Specifier())

	uuids := got.ReferencedUUIDs()
	assert.Contains(t, uuids, d1)
	assert.Contains(t, uuids, out)
}
