// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ref

// Reconcile brings a list of bindings in lockstep with a new specifier
// list. Existing bindings whose specifier still appears in want are
// reused (first unused match wins, preserving order for duplicates);
// dropped bindings are closed; missing ones are built with build, which
// returns nil for targets that do not resolve. The result is parallel
// to want and may contain nils.
//
// The second return reports whether the binding list changed
// structurally (any member created, dropped, or reordered).
func Reconcile(existing []Bound, existingSpecs []Specifier, want []Specifier, build func(Specifier) Bound) ([]Bound, bool) {
	used := make([]bool, len(existing))
	out := make([]Bound, len(want))
	changed := len(existing) != len(want)
	for wi, spec := range want {
		found := -1
		for ei, es := range existingSpecs {
			if !used[ei] && es == spec && existing[ei] != nil {
				found = ei
				break
			}
		}
		if found >= 0 {
			used[found] = true
			out[wi] = existing[found]
			if found != wi {
				changed = true
			}
			continue
		}
		out[wi] = build(spec)
		changed = true
	}
	for ei, b := range existing {
		if !used[ei] && b != nil {
			b.Close()
		}
	}
	return out, changed
}
