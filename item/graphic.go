// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package item

import "cogentcore.org/loom/persist"

// Rect is a rectangle in fractional display coordinates: origin and
// size, each in [0, 1] relative to the displayed data extent.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// IsZero reports whether the rect is entirely unset.
func (r Rect) IsZero() bool { return r == Rect{} }

// Graphic types.
const (
	// GraphicRect is a rectangular region, usable as a crop.
	GraphicRect = "rect"

	// GraphicEllipse is an elliptical region.
	GraphicEllipse = "ellipse"

	// GraphicInterval is a one-dimensional interval; only the X extent
	// of the bounds is meaningful.
	GraphicInterval = "interval"
)

// Graphic is an annotation over a display item: a typed region with
// fractional bounds. Rect graphics double as crop regions for the
// cropped facet references.
type Graphic struct {
	persist.Base `copier:"-"`

	// GraphicType is one of [GraphicRect], [GraphicEllipse],
	// [GraphicInterval].
	GraphicType string

	// Label is the user-visible annotation label.
	Label string

	// Bounds is the region in fractional display coordinates.
	// Use [Graphic.SetBounds] so the change is tracked.
	Bounds Rect
}

func init() {
	persist.AddType("graphic", func() persist.Object { return &Graphic{} })
}

// NewGraphic returns a graphic of the given type and bounds.
func NewGraphic(graphicType string, bounds Rect) *Graphic {
	g := &Graphic{GraphicType: graphicType, Bounds: bounds}
	g.Init()
	return g
}

// TypeTag implements [persist.Object].
func (g *Graphic) TypeTag() string { return "graphic" }

// SetBounds sets the bounds and notifies. References bound to the
// graphic (crops in particular) see this as a value change.
func (g *Graphic) SetBounds(bounds Rect) {
	g.Bounds = bounds
	g.Notify("bounds")
}

// SetLabel sets the label and notifies.
func (g *Graphic) SetLabel(label string) {
	g.Label = label
	g.Notify("label")
}

// Property implements [persist.PropertyAccessor]. Graphics expose
// "label", "bounds" ([Rect]), and the read-only "graphic_type".
func (g *Graphic) Property(name string) (any, bool) {
	switch name {
	case "label":
		return g.Label, true
	case "bounds":
		return g.Bounds, true
	case "graphic_type":
		return g.GraphicType, true
	}
	return nil, false
}

// SetProperty implements [persist.PropertyAccessor].
func (g *Graphic) SetProperty(name string, value any) bool {
	switch name {
	case "label":
		if label, ok := value.(string); ok {
			g.SetLabel(label)
			return true
		}
	case "bounds":
		if bounds, ok := value.(Rect); ok {
			g.SetBounds(bounds)
			return true
		}
	}
	return false
}

// WriteDict implements [persist.Object].
func (g *Graphic) WriteDict() map[string]any {
	dict := g.WriteBase(g.TypeTag())
	dict["graphic_type"] = g.GraphicType
	dict["label"] = g.Label
	dict["bounds"] = []any{g.Bounds.X, g.Bounds.Y, g.Bounds.W, g.Bounds.H}
	return dict
}

// ReadDict implements [persist.Object].
func (g *Graphic) ReadDict(dict map[string]any) error {
	if err := g.ReadBase(dict); err != nil {
		return err
	}
	g.GraphicType, _ = persist.DictString(dict, "graphic_type")
	g.Label, _ = persist.DictString(dict, "label")
	if b, ok := persist.DictFloats(dict, "bounds"); ok && len(b) == 4 {
		g.Bounds = Rect{X: b[0], Y: b[1], W: b[2], H: b[3]}
	}
	return nil
}
