// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package events_test

import (
	"sync"
	"testing"

	"cogentcore.org/loom/events"
	"github.com/stretchr/testify/assert"
)

func TestQueueOrder(t *testing.T) {
	q := events.NewQueue[int](8)
	for i := range 5 {
		assert.False(t, q.Add(i))
	}
	assert.Equal(t, 5, q.Len())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, q.Drain())
	assert.Equal(t, 0, q.Len())
	assert.Empty(t, q.Drain())
}

func TestQueueBounded(t *testing.T) {
	q := events.NewQueue[int](2)
	assert.False(t, q.Add(1))
	assert.False(t, q.Add(2))
	assert.True(t, q.Add(3), "overflow must drop the oldest entry")
	assert.Equal(t, []int{2, 3}, q.Drain())
}

func TestQueueConcurrent(t *testing.T) {
	q := events.NewQueue[int](0)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				q.Add(i)
			}
		}()
	}
	wg.Wait()
	assert.Len(t, q.Drain(), 800)
}
