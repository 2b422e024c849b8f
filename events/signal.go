// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package events

// Signal is a broadcast with no payload, used for plain "something
// happened" notifications such as content-changed and rebind-needed.
// The zero value is ready to use.
type Signal struct {
	event Event[struct{}]
}

// Listen adds a listener function called on every subsequent [Signal.Emit],
// returning a [Listener] handle that removes it when closed.
func (s *Signal) Listen(fun func()) *Listener {
	return s.event.Listen(func(struct{}) { fun() })
}

// Emit calls every live listener in the order added.
func (s *Signal) Emit() {
	s.event.Emit(struct{}{})
}

// HasListeners reports whether any listener is currently attached.
func (s *Signal) HasListeners() bool {
	return s.event.HasListeners()
}
