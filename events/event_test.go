// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package events_test

import (
	"testing"

	"cogentcore.org/loom/events"
	"github.com/stretchr/testify/assert"
)

func TestEventOrder(t *testing.T) {
	var ev events.Event[int]
	var got []int
	ev.Listen(func(v int) { got = append(got, v) })
	ev.Listen(func(v int) { got = append(got, v*10) })
	ev.Emit(1)
	ev.Emit(2)
	assert.Equal(t, []int{1, 10, 2, 20}, got)
}

func TestListenerClose(t *testing.T) {
	var ev events.Event[string]
	n := 0
	l := ev.Listen(func(string) { n++ })
	ev.Emit("a")
	l.Close()
	ev.Emit("b")
	assert.Equal(t, 1, n)
	assert.NotPanics(t, func() { l.Close() })
	assert.False(t, ev.HasListeners())
}

func TestCloseDuringEmit(t *testing.T) {
	var ev events.Event[int]
	n := 0
	var l2 *events.Listener
	ev.Listen(func(int) { l2.Close() })
	l2 = ev.Listen(func(int) { n++ })
	ev.Emit(0)
	assert.Equal(t, 0, n, "listener closed during dispatch must not fire")
}

func TestSignal(t *testing.T) {
	var s events.Signal
	n := 0
	l := s.Listen(func() { n++ })
	s.Emit()
	s.Emit()
	l.Close()
	s.Emit()
	assert.Equal(t, 2, n)
}

func TestNilListener(t *testing.T) {
	var l *events.Listener
	assert.NotPanics(t, func() { l.Close() })
}
