// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtsched

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDescriptor(id uint64, deadline uint64) *Descriptor {
	d := &Descriptor{ID: id, Class: Periodic, Constraints: &PeriodicConstraints{Period: 1000, Slice: 100}, heapIndex: -1}
	d.Deadline = deadline
	d.setStatus(Admitted)
	return d
}

func byDeadline(a, b *Descriptor) bool { return a.Deadline < b.Deadline }

func TestHeapQueue_EnqueueDequeueOrder(t *testing.T) {
	h := newHeapQueue(RunnableQueue, 8, byDeadline)

	deadlines := []uint64{500, 100, 900, 50, 300}
	for i, dl := range deadlines {
		require.NoError(t, h.Enqueue(newTestDescriptor(uint64(i), dl)))
	}
	assert.Equal(t, 5, h.Len())

	// P2/P4: draining a heap queue yields entries in non-decreasing key
	// order, regardless of insertion order.
	var drained []uint64
	for h.Len() > 0 {
		d, err := h.Dequeue()
		require.NoError(t, err)
		drained = append(drained, d.Deadline)
	}
	assert.Equal(t, []uint64{50, 100, 300, 500, 900}, drained)
}

func TestHeapQueue_EnqueueFullRejects(t *testing.T) {
	h := newHeapQueue(AperiodicQueue, 2, byDeadline)
	require.NoError(t, h.Enqueue(newTestDescriptor(1, 10)))
	require.NoError(t, h.Enqueue(newTestDescriptor(2, 20)))

	err := h.Enqueue(newTestDescriptor(3, 30))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindQueueFull))
}

func TestHeapQueue_DequeueEmptyErrors(t *testing.T) {
	h := newHeapQueue(RunnableQueue, 4, byDeadline)
	_, err := h.Dequeue()
	require.Error(t, err)
	assert.True(t, IsKind(err, KindQueueEmpty))
}

func TestHeapQueue_SingletonRoundTrip(t *testing.T) {
	// P4: dequeue(enqueue(q, x)) in isolation returns x.
	h := newHeapQueue(RunnableQueue, 1, byDeadline)
	x := newTestDescriptor(7, 42)
	require.NoError(t, h.Enqueue(x))
	got, err := h.Dequeue()
	require.NoError(t, err)
	assert.Same(t, x, got)
}

func TestHeapQueue_ToBeRemovedTransitiveSkip(t *testing.T) {
	// S6 / P7: a ToBeRemoved descriptor is never returned by Dequeue.
	h := newHeapQueue(RunnableQueue, 8, byDeadline)
	victim := newTestDescriptor(1, 100)
	survivor := newTestDescriptor(2, 200)
	require.NoError(t, h.Enqueue(victim))
	require.NoError(t, h.Enqueue(survivor))

	victim.markToBeRemoved()

	got, err := h.Dequeue()
	require.NoError(t, err)
	assert.Same(t, survivor, got)
	assert.Equal(t, Removed, victim.Status())
}

func TestHeapQueue_RemoveByIdentity(t *testing.T) {
	h := newHeapQueue(RunnableQueue, 8, byDeadline)
	ids := []*Descriptor{
		newTestDescriptor(1, 10),
		newTestDescriptor(2, 20),
		newTestDescriptor(3, 30),
		newTestDescriptor(4, 40),
	}
	for _, d := range ids {
		require.NoError(t, h.Enqueue(d))
	}

	require.NoError(t, h.RemoveByIdentity(ids[1]))
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, NoQueue, ids[1].CurrentQueue)

	var drained []uint64
	for h.Len() > 0 {
		d, err := h.Dequeue()
		require.NoError(t, err)
		drained = append(drained, d.ID)
	}
	assert.ElementsMatch(t, []uint64{1, 3, 4}, drained)
}

func TestHeapQueue_RemoveByIdentityNotFound(t *testing.T) {
	h := newHeapQueue(RunnableQueue, 4, byDeadline)
	d := newTestDescriptor(1, 10)
	err := h.RemoveByIdentity(d)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestHeapQueue_AperiodicOrderedByPriority(t *testing.T) {
	less := func(a, b *Descriptor) bool {
		return a.Constraints.(*AperiodicConstraints).Priority < b.Constraints.(*AperiodicConstraints).Priority
	}
	h := newHeapQueue(AperiodicQueue, 4, less)

	low := &Descriptor{ID: 1, Class: Aperiodic, Constraints: &AperiodicConstraints{Priority: 50}, heapIndex: -1}
	high := &Descriptor{ID: 2, Class: Aperiodic, Constraints: &AperiodicConstraints{Priority: 5}, heapIndex: -1}
	require.NoError(t, h.Enqueue(low))
	require.NoError(t, h.Enqueue(high))

	got, err := h.Dequeue()
	require.NoError(t, err)
	assert.Same(t, high, got, "lower priority value should dequeue first")
}
