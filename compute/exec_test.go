// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compute_test

import (
	"testing"

	"cogentcore.org/loom/compute"
	"cogentcore.org/loom/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardRegistry(t *testing.T) {
	reg := compute.StandardRegistry()
	assert.Equal(t, []string{"add", "crop", "invert", "scalar-multiply"}, reg.IDs())

	p, ok := reg.Find("scalar-multiply")
	require.True(t, ok)
	assert.Equal(t, "Scalar Multiply", p.Title)
	require.Len(t, p.Sources, 1)
	assert.Equal(t, "src", p.Sources[0].Name)
	require.Len(t, p.Parameters, 1)
	assert.Equal(t, "k", p.Parameters[0].Name)
	assert.Equal(t, compute.ValueReal, p.Parameters[0].ValueType)

	_, ok = reg.Find("fft")
	assert.False(t, ok)

	assert.Panics(t, func() {
		reg.Register(&compute.Processor{ID: "add"})
	})
}

func TestExecProcessors(t *testing.T) {
	ev := compute.NewExec(compute.StandardRegistry())
	a := item.NewData([]float64{1, 2, 3}, 3)
	b := item.NewData([]float64{10, 20, 30}, 3)

	res, err := ev.Evaluate("add", map[string]any{"src1": a, "src2": b})
	require.NoError(t, err)
	assert.Equal(t, []float64{11, 22, 33}, res.(*item.Data).Values)

	res, err = ev.Evaluate("scalar-multiply", map[string]any{"src": a, "k": 3.0})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 6, 9}, res.(*item.Data).Values)

	res, err = ev.Evaluate("invert", map[string]any{"src": a})
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, -2, -3}, res.(*item.Data).Values)

	_, err = ev.Evaluate("fft", map[string]any{"src": a})
	require.Error(t, err)
	assert.Equal(t, "Missing computation (fft).", err.Error())

	// A missing input is an error, not a crash.
	_, err = ev.Evaluate("add", map[string]any{"src1": a})
	require.Error(t, err)
}

func TestExecExpressions(t *testing.T) {
	ev := compute.NewExec(compute.StandardRegistry())
	a := item.NewData([]float64{2, 4}, 2)

	res, err := ev.EvaluateExpression("mul(a, 2)", map[string]any{"a": a})
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 8}, res.(*item.Data).Values)

	res, err = ev.EvaluateExpression("mul(a, k)", map[string]any{"a": a, "k": int64(3)})
	require.NoError(t, err)
	assert.Equal(t, []float64{6, 12}, res.(*item.Data).Values)

	res, err = ev.EvaluateExpression("mean(a)", map[string]any{"a": a})
	require.NoError(t, err)
	assert.Equal(t, 3.0, res)

	res, err = ev.EvaluateExpression("invert(add(a, a))", map[string]any{"a": a})
	require.NoError(t, err)
	assert.Equal(t, []float64{-4, -8}, res.(*item.Data).Values)

	// Syntax errors come back as errors, never panics.
	_, err = ev.EvaluateExpression("mul(a,", map[string]any{"a": a})
	require.Error(t, err)

	// So do runtime failures inside helpers.
	b := item.NewData([]float64{1, 2, 3}, 3)
	_, err = ev.EvaluateExpression("add(a, b)", map[string]any{"a": a, "b": b})
	require.Error(t, err)
}

func TestExecWithTarget(t *testing.T) {
	ev := compute.NewExec(compute.StandardRegistry())
	a := item.NewData([]float64{5}, 1)
	out := item.NewDataItem(nil)

	err := ev.ExecuteWithTarget("target.SetData(mul(a, 2))", out, map[string]any{"a": a})
	require.NoError(t, err)
	require.NotNil(t, out.Data)
	assert.Equal(t, []float64{10}, out.Data.Values)

	err = ev.ExecuteWithTarget("target.Missing()", out, map[string]any{"a": a})
	require.Error(t, err)
}
