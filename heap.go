// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtsched

// heapQueue is a fixed-capacity binary min-heap over *Descriptor,
// ordered by a queue-specific comparator. It backs the runnable and
// pending queues (ordered by deadline) and the aperiodic queue (ordered
// by priority). Descriptors carry their own heapIndex so remove-by-
// identity does not need a linear scan beyond the initial lookup... in
// fact it needs none: heapIndex makes it O(log n).
type heapQueue struct {
	id       QueueID
	capacity int
	size     int
	items    []*Descriptor
	less     func(a, b *Descriptor) bool
}

func newHeapQueue(id QueueID, capacity int, less func(a, b *Descriptor) bool) *heapQueue {
	return &heapQueue{
		id:       id,
		capacity: capacity,
		items:    make([]*Descriptor, capacity),
		less:     less,
	}
}

func (h *heapQueue) ID() QueueID { return h.id }
func (h *heapQueue) Len() int    { return h.size }
func (h *heapQueue) Cap() int    { return h.capacity }

// Items returns the heap's live entries in heap (not sorted) order. Used
// by the admission controller to sum utilization across runnable and
// pending; callers must not retain or mutate the returned slice.
func (h *heapQueue) Items() []*Descriptor { return h.items[:h.size] }

// Peek returns the root (minimum by the queue's ordering) without
// removing it, or false if the queue is empty.
func (h *heapQueue) Peek() (*Descriptor, bool) {
	if h.size == 0 {
		return nil, false
	}
	return h.items[0], true
}

func (h *heapQueue) swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].heapIndex = i
	h.items[j].heapIndex = j
}

func (h *heapQueue) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(h.items[i], h.items[parent]) {
			break
		}
		h.swap(i, parent)
		i = parent
	}
}

func (h *heapQueue) siftDown(i int) {
	for {
		left, right := 2*i+1, 2*i+2
		smallest := i
		if left < h.size && h.less(h.items[left], h.items[smallest]) {
			smallest = left
		}
		if right < h.size && h.less(h.items[right], h.items[smallest]) {
			smallest = right
		}
		if smallest == i {
			return
		}
		h.swap(i, smallest)
		i = smallest
	}
}

// fix restores heap order around i after an in-place value change,
// mirroring container/heap.Fix: try moving up first, fall back to down.
func (h *heapQueue) fix(i int) {
	if i > 0 && h.less(h.items[i], h.items[(i-1)/2]) {
		h.siftUp(i)
		return
	}
	h.siftDown(i)
}

// Enqueue places d at the next free slot and sifts it up. Rejects with
// KindQueueFull when the heap is at capacity.
func (h *heapQueue) Enqueue(d *Descriptor) error {
	if h.size == h.capacity {
		return errQueueFull(h.id)
	}
	i := h.size
	h.items[i] = d
	d.heapIndex = i
	d.CurrentQueue = h.id
	h.size++
	h.siftUp(i)
	return nil
}

// Dequeue removes and returns the root. If the root's status is
// ToBeRemoved it is marked Removed and the dequeue transparently
// retries against the new root (the "transitive skip" of §4.1).
func (h *heapQueue) Dequeue() (*Descriptor, error) {
	for {
		if h.size == 0 {
			return nil, errQueueEmpty(h.id)
		}
		root := h.items[0]
		h.size--
		h.items[0] = h.items[h.size]
		h.items[h.size] = nil
		if h.size > 0 {
			h.items[0].heapIndex = 0
			h.siftDown(0)
		}
		root.heapIndex = -1
		root.CurrentQueue = NoQueue

		if root.Status() == ToBeRemoved {
			root.setStatus(Removed)
			continue
		}
		return root, nil
	}
}

// RemoveByIdentity removes d from wherever it sits in the heap using its
// cached heapIndex, restoring heap order from that position.
func (h *heapQueue) RemoveByIdentity(d *Descriptor) error {
	i := d.heapIndex
	if i < 0 || i >= h.size || h.items[i] != d {
		return errNotFound(h.id)
	}
	last := h.size - 1
	h.size--
	if i != last {
		h.items[i] = h.items[last]
		h.items[i].heapIndex = i
	}
	h.items[last] = nil
	d.heapIndex = -1
	d.CurrentQueue = NoQueue
	if i < h.size {
		h.fix(i)
	}
	return nil
}
