// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package project

import (
	"cogentcore.org/loom/compute"
	"cogentcore.org/loom/item"
	"github.com/google/uuid"
)

// QueueChange records, from any goroutine, that the named data item's
// content changed outside the graph. Nothing happens until the owning
// goroutine drains the queue, so background producers never touch a
// partially bound graph.
func (p *Project) QueueChange(u uuid.UUID) {
	p.pending.Add(u)
}

// DrainChanges delivers queued external changes: each queued data item
// notifies as if its data had been set, marking dependent computations
// for update. Unknown UUIDs are skipped. Call only from the goroutine
// that owns the graph. Returns how many notifications were delivered.
func (p *Project) DrainChanges() int {
	n := 0
	for _, u := range p.pending.Drain() {
		if di, ok := p.DataItems.ByUUID(u); ok {
			di.NotifyDataChanged()
			n++
		}
	}
	return n
}

// Recompute drains the pending queue and then evaluates every
// computation needing update, committing value-mode results into the
// bound output targets. Committing a result can mark downstream
// computations, so passes repeat until the graph settles; a cycle
// cannot run past one pass per computation plus one.
func (p *Project) Recompute(ev compute.Evaluator) {
	p.DrainChanges()
	limit := p.Computations.Len() + 1
	for pass := 0; pass < limit; pass++ {
		progress := false
		for _, c := range p.Computations.Items() {
			if !c.NeedsUpdate() {
				continue
			}
			switch c.ResultMode() {
			case compute.ModeTarget:
				target := targetObject(c)
				if target == nil {
					continue
				}
				c.EvaluateWithTarget(ev, target)
			default:
				c.Evaluate(ev)
				p.commit(c)
			}
			if !c.NeedsUpdate() {
				progress = true
			}
		}
		if !progress {
			return
		}
	}
}

// commit writes a value-mode result into the first output's bound
// target. Scalar results are wrapped as single-element data.
func (p *Project) commit(c *compute.Computation) {
	if c.ErrorText() != "" || c.Outputs.Len() == 0 {
		return
	}
	di, ok := c.Outputs.At(0).TargetObject().(*item.DataItem)
	if !ok {
		return
	}
	switch result := c.LastResult().(type) {
	case *item.Data:
		di.SetData(result.Clone())
	case float64:
		di.SetData(item.NewData([]float64{result}))
	}
}

func targetObject(c *compute.Computation) any {
	if c.Outputs.Len() == 0 {
		return nil
	}
	obj := c.Outputs.At(0).TargetObject()
	if obj == nil {
		return nil
	}
	return obj
}
