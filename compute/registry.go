// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compute

import (
	_ "embed"
	"slices"

	"cogentcore.org/loom/base/errors"
	"cogentcore.org/loom/item"
	"gopkg.in/yaml.v3"
)

// Processor is one registered transform: a stable processing id that
// computations are tagged with, a description of its input slots, and
// the function applying it.
type Processor struct {

	// ID is the stable processing id.
	ID string `yaml:"id"`

	// Title is the user-visible name of the transform.
	Title string `yaml:"title"`

	// Sources describes the object inputs by slot name.
	Sources []Slot `yaml:"sources"`

	// Parameters describes the literal inputs by slot name.
	Parameters []Slot `yaml:"parameters"`

	// Apply computes the transform from the resolved input values.
	Apply func(inputs map[string]any) (any, error) `yaml:"-"`
}

// Slot describes one named input of a processor.
type Slot struct {
	Name      string `yaml:"name"`
	Label     string `yaml:"label"`
	ValueType string `yaml:"value_type,omitempty"`
	Value     any    `yaml:"value,omitempty"`
}

// Registry maps processing ids to processors. A registry is built once
// at startup, injected into the evaluator, and read-only thereafter.
type Registry struct {
	processors map[string]*Processor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{processors: map[string]*Processor{}}
}

// Register adds a processor. Registering an id twice is a programmer
// error.
func (r *Registry) Register(p *Processor) {
	if _, ok := r.processors[p.ID]; ok {
		panic("compute: processor registered twice: " + p.ID)
	}
	r.processors[p.ID] = p
}

// Find returns the processor registered under id.
func (r *Registry) Find(id string) (*Processor, bool) {
	p, ok := r.processors[id]
	return p, ok
}

// IDs returns the registered processing ids, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.processors))
	for id := range r.processors {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

//go:embed builtins.yaml
var builtins []byte

// StandardRegistry returns a registry holding the built-in transforms,
// with slot descriptions loaded from the embedded manifest.
func StandardRegistry() *Registry {
	var procs []*Processor
	errors.Must(yaml.Unmarshal(builtins, &procs))
	apply := map[string]func(inputs map[string]any) (any, error){
		"add":             applyAdd,
		"scalar-multiply": applyScalarMultiply,
		"crop":            applyCrop,
		"invert":          applyInvert,
	}
	r := NewRegistry()
	for _, p := range procs {
		p.Apply = apply[p.ID]
		if p.Apply == nil {
			panic("compute: no function for built-in processor: " + p.ID)
		}
		r.Register(p)
	}
	return r
}

func applyAdd(inputs map[string]any) (any, error) {
	a, err := dataInput(inputs, "src1")
	if err != nil {
		return nil, err
	}
	b, err := dataInput(inputs, "src2")
	if err != nil {
		return nil, err
	}
	return item.Add(a, b)
}

func applyScalarMultiply(inputs map[string]any) (any, error) {
	d, err := dataInput(inputs, "src")
	if err != nil {
		return nil, err
	}
	return item.Multiply(d, floatInput(inputs, "k", 1)), nil
}

// applyCrop copies its source. Crop computations bind their source
// through a cropped facet specifier, so the value arriving here has
// already been cut to the graphic's bounds.
func applyCrop(inputs map[string]any) (any, error) {
	d, err := dataInput(inputs, "src")
	if err != nil {
		return nil, err
	}
	return d.Clone(), nil
}

func applyInvert(inputs map[string]any) (any, error) {
	d, err := dataInput(inputs, "src")
	if err != nil {
		return nil, err
	}
	return item.Invert(d), nil
}

func dataInput(inputs map[string]any, name string) (*item.Data, error) {
	d, ok := inputs[name].(*item.Data)
	if !ok || d == nil {
		return nil, errors.New("missing data input: " + name)
	}
	return d, nil
}

func floatInput(inputs map[string]any, name string, def float64) float64 {
	switch n := inputs[name].(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return def
}
