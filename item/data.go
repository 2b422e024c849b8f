// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package item provides the concrete data-bearing entities of the
// store: data items holding array data, display items presenting them
// through data channels, and graphics annotating the displays.
package item

import (
	"fmt"
	"math"
	"time"

	"cogentcore.org/loom/base/metadata"
	"cogentcore.org/loom/persist"
)

// Data is an n-dimensional array with its shape, acquisition
// timestamp, and open metadata. One and two dimensional data is what
// the built-in transforms operate on; higher ranks pass through
// untouched. Values are stored in row-major order.
type Data struct {
	Values    []float64
	Shape     []int
	Timestamp time.Time
	Metadata  metadata.Data
}

// NewData returns data over the given values. With no shape the data
// is one-dimensional; otherwise the shape product must match the
// number of values.
func NewData(values []float64, shape ...int) *Data {
	if len(shape) == 0 {
		shape = []int{len(values)}
	}
	d := &Data{Values: values, Shape: shape, Timestamp: time.Now()}
	if d.Size() != len(values) {
		panic(fmt.Sprintf("item: shape %v does not cover %d values", shape, len(values)))
	}
	return d
}

// Size returns the number of values the shape covers.
func (d *Data) Size() int {
	n := 1
	for _, s := range d.Shape {
		n *= s
	}
	return n
}

// Clone returns a fully independent copy of the data.
func (d *Data) Clone() *Data {
	if d == nil {
		return nil
	}
	out := &Data{
		Values:    make([]float64, len(d.Values)),
		Shape:     make([]int, len(d.Shape)),
		Timestamp: d.Timestamp,
		Metadata:  d.Metadata.DeepCopy(),
	}
	copy(out.Values, d.Values)
	copy(out.Shape, d.Shape)
	return out
}

// ToDict returns the persisted representation of the data.
func (d *Data) ToDict() map[string]any {
	values := make([]any, len(d.Values))
	for i, v := range d.Values {
		values[i] = v
	}
	shape := make([]any, len(d.Shape))
	for i, s := range d.Shape {
		shape[i] = s
	}
	return map[string]any{
		"values":    values,
		"shape":     shape,
		"timestamp": d.Timestamp.UTC().Format(time.RFC3339Nano),
		"metadata":  map[string]any(d.Metadata),
	}
}

// DataFromDict parses the representation written by [Data.ToDict].
func DataFromDict(dict map[string]any) (*Data, error) {
	values, ok := persist.DictFloats(dict, "values")
	if !ok {
		return nil, fmt.Errorf("item: data dict has no values")
	}
	shape, ok := persist.DictInts(dict, "shape")
	if !ok {
		return nil, fmt.Errorf("item: data dict has no shape")
	}
	d := &Data{Values: values, Shape: shape}
	if d.Size() != len(values) {
		return nil, fmt.Errorf("item: data dict shape %v does not cover %d values", shape, len(values))
	}
	if tm, ok := persist.DictTime(dict, "timestamp"); ok {
		d.Timestamp = tm
	}
	if md, ok := persist.DictMap(dict, "metadata"); ok {
		d.Metadata = metadata.Data(md).DeepCopy()
	}
	return d, nil
}

// Multiply returns the data scaled by k.
func Multiply(d *Data, k float64) *Data {
	out := d.Clone()
	for i, v := range out.Values {
		out.Values[i] = v * k
	}
	out.Timestamp = time.Now()
	return out
}

// Add returns the element-wise sum of a and b,
// which must have equal shapes.
func Add(a, b *Data) (*Data, error) {
	if len(a.Values) != len(b.Values) {
		return nil, fmt.Errorf("item: cannot add shapes %v and %v", a.Shape, b.Shape)
	}
	out := a.Clone()
	for i, v := range b.Values {
		out.Values[i] += v
	}
	out.Timestamp = time.Now()
	return out, nil
}

// Invert returns the data negated.
func Invert(d *Data) *Data {
	out := d.Clone()
	for i, v := range out.Values {
		out.Values[i] = -v
	}
	out.Timestamp = time.Now()
	return out
}

// Mean returns the mean value, or 0 for empty data.
func Mean(d *Data) float64 {
	if len(d.Values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range d.Values {
		sum += v
	}
	return sum / float64(len(d.Values))
}

// Crop returns the subset of one or two dimensional data selected by
// the given fractional bounds. Bounds are clamped to the data; an
// empty selection yields empty data of the same rank.
func Crop(d *Data, bounds Rect) *Data {
	switch len(d.Shape) {
	case 1:
		n := d.Shape[0]
		lo, hi := fracRange(bounds.X, bounds.W, n)
		out := NewData(append([]float64{}, d.Values[lo:hi]...))
		out.Metadata = d.Metadata.DeepCopy()
		return out
	case 2:
		rows, cols := d.Shape[0], d.Shape[1]
		r0, r1 := fracRange(bounds.Y, bounds.H, rows)
		c0, c1 := fracRange(bounds.X, bounds.W, cols)
		values := make([]float64, 0, (r1-r0)*(c1-c0))
		for r := r0; r < r1; r++ {
			values = append(values, d.Values[r*cols+c0:r*cols+c1]...)
		}
		out := NewData(values, r1-r0, c1-c0)
		out.Metadata = d.Metadata.DeepCopy()
		return out
	default:
		return d.Clone()
	}
}

func fracRange(origin, size float64, n int) (int, int) {
	lo := int(math.Round(origin * float64(n)))
	hi := int(math.Round((origin + size) * float64(n)))
	lo = max(0, min(lo, n))
	hi = max(lo, min(hi, n))
	return lo, hi
}

// Mask returns mask data over the given one or two dimensional shape:
// 1 inside any of the graphics' regions and 0 outside. With no
// graphics the mask is all ones.
func Mask(shape []int, graphics ...*Graphic) *Data {
	d := &Data{Shape: append([]int{}, shape...), Timestamp: time.Now()}
	d.Values = make([]float64, d.Size())
	if len(graphics) == 0 {
		for i := range d.Values {
			d.Values[i] = 1
		}
		return d
	}
	switch len(shape) {
	case 1:
		n := shape[0]
		for _, g := range graphics {
			lo, hi := fracRange(g.Bounds.X, g.Bounds.W, n)
			for i := lo; i < hi; i++ {
				d.Values[i] = 1
			}
		}
	case 2:
		rows, cols := shape[0], shape[1]
		for _, g := range graphics {
			markMask(d.Values, rows, cols, g)
		}
	}
	return d
}

func markMask(values []float64, rows, cols int, g *Graphic) {
	if g.GraphicType == GraphicEllipse {
		cy := g.Bounds.Y + g.Bounds.H/2
		cx := g.Bounds.X + g.Bounds.W/2
		ry := g.Bounds.H / 2
		rx := g.Bounds.W / 2
		if rx <= 0 || ry <= 0 {
			return
		}
		for r := 0; r < rows; r++ {
			py := (float64(r) + 0.5) / float64(rows)
			for c := 0; c < cols; c++ {
				px := (float64(c) + 0.5) / float64(cols)
				dy := (py - cy) / ry
				dx := (px - cx) / rx
				if dy*dy+dx*dx <= 1 {
					values[r*cols+c] = 1
				}
			}
		}
		return
	}
	r0, r1 := fracRange(g.Bounds.Y, g.Bounds.H, rows)
	c0, c1 := fracRange(g.Bounds.X, g.Bounds.W, cols)
	for r := r0; r < r1; r++ {
		for c := c0; c < c1; c++ {
			values[r*cols+c] = 1
		}
	}
}

// ApplyMask returns the data multiplied element-wise by the mask,
// zeroing everything outside it. Mismatched sizes return the data
// unchanged.
func ApplyMask(d, mask *Data) *Data {
	out := d.Clone()
	if mask == nil || len(mask.Values) != len(out.Values) {
		return out
	}
	for i, v := range mask.Values {
		out.Values[i] *= v
	}
	out.Timestamp = time.Now()
	return out
}
