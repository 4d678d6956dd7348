// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtsched

import (
	"fmt"
	"sync/atomic"
)

// Class is the scheduling class a thread was created with.
type Class int

const (
	Periodic Class = iota
	Sporadic
	Aperiodic
)

func (c Class) String() string {
	switch c {
	case Periodic:
		return "periodic"
	case Sporadic:
		return "sporadic"
	case Aperiodic:
		return "aperiodic"
	default:
		return "unknown"
	}
}

// Status is the lifecycle state of a descriptor. Only the dispatcher may
// set Running; only the housekeeper may transition ToBeRemoved to
// Removed and free the descriptor.
type Status int32

const (
	Arrived Status = iota
	Admitted
	Waiting
	Running
	ToBeRemoved
	Removed
	Sleeping
)

func (s Status) String() string {
	switch s {
	case Arrived:
		return "arrived"
	case Admitted:
		return "admitted"
	case Waiting:
		return "waiting"
	case Running:
		return "running"
	case ToBeRemoved:
		return "to-be-removed"
	case Removed:
		return "removed"
	case Sleeping:
		return "sleeping"
	default:
		return "unknown"
	}
}

// Constraints is the tagged value distinguishing the three thread
// classes. The three implementations below are exhaustive; a type
// switch on Constraints never needs a default case that does real work.
type Constraints interface {
	class() Class
}

// PeriodicConstraints is a fixed period and a per-release CPU slice.
type PeriodicConstraints struct {
	Period uint64 // ticks between releases
	Slice  uint64 // ticks of CPU budget per release
}

func (*PeriodicConstraints) class() Class { return Periodic }

// SporadicConstraints is the total CPU a single job requires. The
// relative deadline is supplied at creation time and baked into the
// descriptor's absolute Deadline; it is not re-derived from here.
type SporadicConstraints struct {
	Work uint64 // ticks of CPU the job requires
}

func (*SporadicConstraints) class() Class { return Sporadic }

// AperiodicConstraints carries a priority that is re-tagged at every
// preemption to the descriptor's accumulated run time, so the thread
// that has received the least CPU wins (an aging / longest-idle
// policy). Lower priority value means more urgent.
type AperiodicConstraints struct {
	Priority uint64
}

func (*AperiodicConstraints) class() Class { return Aperiodic }

// Handle is the opaque back-reference to the underlying OS thread. The
// core never dereferences it; it only hands it back to the caller that
// performs the actual context switch.
type Handle interface{}

// Descriptor is the scheduler-visible state of one thread. Descriptors
// are owned by the Scheduler that created them; queues hold non-owning
// *Descriptor pointers to them.
type Descriptor struct {
	ID          uint64
	Class       Class
	Constraints Constraints

	status atomic.Int32

	// CurrentQueue is the queue this descriptor is parked on, or NoQueue
	// when it is Running. It is touched only by the owning CPU's
	// sequential dispatch path, so it needs no synchronization beyond
	// that program order (see the Scheduler type's doc, §5 concurrency
	// model).
	CurrentQueue QueueID

	StartTime uint64 // cycle the current dispatch began
	RunTime   uint64 // cycles billed to the current release
	Deadline  uint64 // absolute cycle the current release must complete by
	ExitTime  uint64 // cycle the thread last yielded the CPU

	Handle Handle

	heapIndex int // position in a heap queue's dense array, -1 if absent

	// priorQueue snapshots CurrentQueue at the moment Exit() pushes the
	// descriptor onto the exited notification ring, which otherwise
	// overwrites CurrentQueue with ExitedQueue and loses the very queue
	// the housekeeper needs to clean the descriptor out of.
	priorQueue QueueID
}

// Status returns the descriptor's current lifecycle state. Reads the
// atomic marker directly since ToBeRemoved can be set as a lock-free
// intent from outside the owning CPU's sequential dispatch path (§5).
func (d *Descriptor) Status() Status {
	return Status(d.status.Load())
}

func (d *Descriptor) setStatus(s Status) {
	d.status.Store(int32(s))
}

// markToBeRemoved is the lock-free intent marker described in §5: any
// context may call it, the owning CPU's housekeeper performs the actual
// removal.
func (d *Descriptor) markToBeRemoved() {
	d.status.Store(int32(ToBeRemoved))
}

// DebugString is the Go equivalent of the original rt_thread_dump: a
// one-line summary of a descriptor's scheduler-visible state, useful in
// traces and tests.
func (d *Descriptor) DebugString() string {
	return fmt.Sprintf("thread#%d class=%s status=%s queue=%s deadline=%d run_time=%d start_time=%d exit_time=%d",
		d.ID, d.Class, d.Status(), d.CurrentQueue, d.Deadline, d.RunTime, d.StartTime, d.ExitTime)
}
