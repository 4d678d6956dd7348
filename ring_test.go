// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtsched

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRingDescriptor(id uint64) *Descriptor {
	d := &Descriptor{ID: id, Class: Aperiodic, Constraints: &AperiodicConstraints{}, heapIndex: -1}
	d.setStatus(Arrived)
	return d
}

func TestRingQueue_FIFOOrder(t *testing.T) {
	r := newRingQueue(ArrivalQueue, 4)
	a, b, c := newRingDescriptor(1), newRingDescriptor(2), newRingDescriptor(3)
	require.NoError(t, r.Enqueue(a))
	require.NoError(t, r.Enqueue(b))
	require.NoError(t, r.Enqueue(c))

	got1, err := r.Dequeue()
	require.NoError(t, err)
	assert.Same(t, a, got1)

	got2, err := r.Dequeue()
	require.NoError(t, err)
	assert.Same(t, b, got2)

	got3, err := r.Dequeue()
	require.NoError(t, err)
	assert.Same(t, c, got3)
}

func TestRingQueue_WrapAround(t *testing.T) {
	r := newRingQueue(ArrivalQueue, 2)
	a, b := newRingDescriptor(1), newRingDescriptor(2)
	require.NoError(t, r.Enqueue(a))
	require.NoError(t, r.Enqueue(b))

	got, err := r.Dequeue()
	require.NoError(t, err)
	assert.Same(t, a, got)

	c := newRingDescriptor(3)
	require.NoError(t, r.Enqueue(c))

	got, err = r.Dequeue()
	require.NoError(t, err)
	assert.Same(t, b, got)

	got, err = r.Dequeue()
	require.NoError(t, err)
	assert.Same(t, c, got)
}

func TestRingQueue_EnqueueFullRejects(t *testing.T) {
	r := newRingQueue(WaitingQueue, 1)
	require.NoError(t, r.Enqueue(newRingDescriptor(1)))
	err := r.Enqueue(newRingDescriptor(2))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindQueueFull))
}

func TestRingQueue_DequeueEmptyErrors(t *testing.T) {
	r := newRingQueue(SleepingQueue, 2)
	_, err := r.Dequeue()
	require.Error(t, err)
	assert.True(t, IsKind(err, KindQueueEmpty))
}

func TestRingQueue_ToBeRemovedTransitiveSkip(t *testing.T) {
	r := newRingQueue(ExitedQueue, 4)
	victim := newRingDescriptor(1)
	survivor := newRingDescriptor(2)
	require.NoError(t, r.Enqueue(victim))
	require.NoError(t, r.Enqueue(survivor))

	victim.markToBeRemoved()

	got, err := r.Dequeue()
	require.NoError(t, err)
	assert.Same(t, survivor, got)
	assert.Equal(t, Removed, victim.Status())
}

func TestRingQueue_RemoveByIdentityPreservesOrder(t *testing.T) {
	r := newRingQueue(WaitingQueue, 4)
	a, b, c := newRingDescriptor(1), newRingDescriptor(2), newRingDescriptor(3)
	require.NoError(t, r.Enqueue(a))
	require.NoError(t, r.Enqueue(b))
	require.NoError(t, r.Enqueue(c))

	require.NoError(t, r.RemoveByIdentity(b))
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, NoQueue, b.CurrentQueue)

	got1, err := r.Dequeue()
	require.NoError(t, err)
	assert.Same(t, a, got1)

	got2, err := r.Dequeue()
	require.NoError(t, err)
	assert.Same(t, c, got2)
}

func TestRingQueue_RemoveByIdentityNotFound(t *testing.T) {
	r := newRingQueue(WaitingQueue, 2)
	d := newRingDescriptor(1)
	err := r.RemoveByIdentity(d)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))
}
