// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compute

import (
	"fmt"
	"reflect"
	"strings"

	"cogentcore.org/loom/base/errors"
	"cogentcore.org/loom/item"
	"github.com/cogentcore/yaegi/interp"
	"github.com/cogentcore/yaegi/stdlib"
)

// Evaluator runs computations. The engine never constructs one: an
// evaluator is always injected into the evaluate calls, so tests can
// count and script invocations.
type Evaluator interface {

	// Evaluate applies the registered transform tagged by processingID
	// to the resolved inputs.
	Evaluate(processingID string, inputs map[string]any) (any, error)

	// EvaluateExpression evaluates a free expression over the resolved
	// inputs and returns its result.
	EvaluateExpression(expression string, inputs map[string]any) (any, error)

	// ExecuteWithTarget runs statements over the resolved inputs with
	// the supplied output object in scope as target.
	ExecuteWithTarget(expression string, target any, inputs map[string]any) error
}

// Exec is the standard evaluator. Registered transforms come from an
// injected registry; free expressions are interpreted as Go code with
// the resolved inputs and the array helpers in the current scope.
type Exec struct {
	registry *Registry
}

// NewExec returns an evaluator over the given transform registry.
func NewExec(registry *Registry) *Exec {
	return &Exec{registry: registry}
}

// Evaluate implements [Evaluator].
func (e *Exec) Evaluate(processingID string, inputs map[string]any) (result any, err error) {
	defer capturePanic(&err)
	p, ok := e.registry.Find(processingID)
	if !ok {
		return nil, fmt.Errorf("Missing computation (%s).", processingID)
	}
	return p.Apply(inputs)
}

// EvaluateExpression implements [Evaluator].
func (e *Exec) EvaluateExpression(expression string, inputs map[string]any) (result any, err error) {
	defer capturePanic(&err)
	in, err := newInterpreter(inputs, nil)
	if err != nil {
		return nil, err
	}
	res, err := in.Eval(expression)
	if err != nil {
		return nil, err
	}
	if !res.IsValid() {
		return nil, nil
	}
	return res.Interface(), nil
}

// ExecuteWithTarget implements [Evaluator].
func (e *Exec) ExecuteWithTarget(expression string, target any, inputs map[string]any) (err error) {
	defer capturePanic(&err)
	in, err := newInterpreter(inputs, target)
	if err != nil {
		return err
	}
	str := expression
	// all code must be in a function for declarations to be handled correctly
	if !strings.Contains(str, "func main()") {
		str = "func main() {\n" + str + "\n}"
	}
	_, err = in.Eval(str)
	return err
}

// capturePanic converts panics at the evaluator boundary into captured
// errors, which the computation records as error text.
func capturePanic(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%v", r)
	}
}

// newInterpreter builds an interpreter with the standard library, the
// array helpers, and the given inputs available in the current scope.
// Inputs shadow helpers of the same name.
func newInterpreter(inputs map[string]any, target any) (*interp.Interpreter, error) {
	in := interp.New(interp.Options{})
	if err := errors.Log(in.Use(stdlib.Symbols)); err != nil {
		return nil, err
	}
	scope := map[string]reflect.Value{
		"mul":    reflect.ValueOf(mulData),
		"add":    reflect.ValueOf(addData),
		"crop":   reflect.ValueOf(item.Crop),
		"invert": reflect.ValueOf(item.Invert),
		"mean":   reflect.ValueOf(item.Mean),
		"rect":   reflect.ValueOf(newRect),
	}
	for name, val := range inputs {
		if val == nil {
			continue
		}
		scope[name] = reflect.ValueOf(val)
	}
	if target != nil {
		scope["target"] = reflect.ValueOf(target)
	}
	if err := errors.Log(in.Use(interp.Exports{".": scope})); err != nil {
		return nil, err
	}
	in.ImportUsed()
	return in, nil
}

// addData adds element-wise, panicking on shape mismatch so the
// interpreter surfaces it as an evaluation error.
func addData(a, b *item.Data) *item.Data {
	return errors.Must1(item.Add(a, b))
}

// mulData scales by any numeric scalar, so integral variables work
// without a cast in the expression.
func mulData(d *item.Data, k any) *item.Data {
	return item.Multiply(d, toFloat(k))
}

func toFloat(v any) float64 {
	switch k := v.(type) {
	case float64:
		return k
	case int64:
		return float64(k)
	case int:
		return float64(k)
	case float32:
		return float64(k)
	}
	panic(fmt.Sprintf("not a numeric scalar: %T", v))
}

func newRect(x, y, w, h float64) item.Rect {
	return item.Rect{X: x, Y: y, W: w, H: h}
}
