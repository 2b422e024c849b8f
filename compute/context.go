// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compute

import (
	"cogentcore.org/loom/events"
	"cogentcore.org/loom/ref"
	"github.com/google/uuid"
)

// Context is the resolution surface a computation binds against.
// The project implements it; computations wrap it in a local context
// that first answers specifiers naming their own variables.
type Context interface {
	ref.Resolver

	// ItemInserted reports objects newly inserted into the store.
	// Unresolved slots watch it to retry binding, which is how a
	// computation re-resolves after an undelete without anyone
	// re-specifying its inputs.
	ItemInserted() *events.Event[uuid.UUID]
}

// localContext resolves variable specifiers against the computation's
// own value-typed variables and delegates everything else outward.
type localContext struct {
	outer Context
	comp  *Computation
}

func (c *localContext) ItemInserted() *events.Event[uuid.UUID] {
	return c.outer.ItemInserted()
}

func (c *localContext) Resolve(spec, secondary ref.Specifier, property string) ref.Bound {
	if spec.Type == ref.TypeVariable {
		if v := c.comp.ResolveVariable(spec); v != nil && v.ValueType() != "" {
			return v.literal()
		}
		return nil
	}
	return c.outer.Resolve(spec, secondary, property)
}
