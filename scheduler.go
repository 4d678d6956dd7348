// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtsched

import "sync/atomic"

// Scheduler is one CPU's independent scheduler instance. Scheduler
// instances share nothing: no shared queues, no cross-CPU migration
// (spec §5). All of its state is touched only by the CPU that owns it,
// except the lock-free ToBeRemoved marker on a Descriptor.
type Scheduler struct {
	cpu int
	cfg config

	clock Clock
	timer OneShotTimer

	runnable  *heapQueue
	pending   *heapQueue
	aperiodic *heapQueue

	arrival  *ringQueue
	waiting  *ringQueue
	sleeping *ringQueue
	exited   *ringQueue

	current     *Descriptor
	housekeeper *Descriptor

	nextID uint64

	armedAt       uint64
	armedInterval uint64
}

// New returns a new per-CPU Scheduler instance. clock and timer are the
// external collaborators §1 carves out of scope: the monotonic cycle
// counter and the interrupt controller's one-shot timer.
func New(cpu int, clock Clock, timer OneShotTimer, options ...Option) *Scheduler {
	cfg := defaultConfig()
	for _, opt := range options {
		opt.apply(&cfg)
	}

	s := &Scheduler{
		cpu:   cpu,
		cfg:   cfg,
		clock: clock,
		timer: timer,
	}

	deadlineOrder := func(a, b *Descriptor) bool { return a.Deadline < b.Deadline }
	priorityOrder := func(a, b *Descriptor) bool {
		return a.Constraints.(*AperiodicConstraints).Priority < b.Constraints.(*AperiodicConstraints).Priority
	}

	s.runnable = newHeapQueue(RunnableQueue, cfg.maxQueue, deadlineOrder)
	s.pending = newHeapQueue(PendingQueue, cfg.maxQueue, deadlineOrder)
	s.aperiodic = newHeapQueue(AperiodicQueue, cfg.maxQueue, priorityOrder)

	s.arrival = newRingQueue(ArrivalQueue, cfg.maxQueue)
	s.waiting = newRingQueue(WaitingQueue, cfg.maxQueue)
	s.sleeping = newRingQueue(SleepingQueue, cfg.maxQueue)
	s.exited = newRingQueue(ExitedQueue, cfg.maxQueue)

	return s
}

// InitScheduler builds a Scheduler and places the bootstrap thread
// directly on the aperiodic queue, bypassing admission, so there is
// always an eligible fallback to dispatch to (spec §6). It also marks
// the bootstrap descriptor Running: the caller is assumed to already be
// executing as that thread when it calls InitScheduler.
func InitScheduler(cpu int, clock Clock, timer OneShotTimer, bootstrapHandle Handle, options ...Option) (*Scheduler, error) {
	s := New(cpu, clock, timer, options...)

	boot := s.newDescriptor(Aperiodic, &AperiodicConstraints{Priority: 0}, bootstrapHandle)
	boot.setStatus(Admitted)
	now := s.clock.Now()
	boot.StartTime = now

	if err := s.aperiodic.Enqueue(boot); err != nil {
		return nil, err
	}
	// the bootstrap thread is running before any reschedule() call, so
	// pull it back off the queue it was just parked on and mark it the
	// CPU's current thread.
	if err := s.aperiodic.RemoveByIdentity(boot); err != nil {
		return nil, err
	}
	boot.setStatus(Running)
	s.current = boot

	return s, nil
}

func (s *Scheduler) newDescriptor(class Class, c Constraints, handle Handle) *Descriptor {
	id := atomic.AddUint64(&s.nextID, 1)
	d := &Descriptor{
		ID:          id,
		Class:       class,
		Constraints: c,
		Handle:      handle,
		heapIndex:   -1,
	}
	d.setStatus(Arrived)
	return d
}

// Create allocates a new thread descriptor and places it on the arrival
// queue for the housekeeper to admit (spec §6). relativeDeadline is only
// meaningful for Sporadic; Periodic derives its deadline from period,
// Aperiodic has none.
func (s *Scheduler) Create(class Class, c Constraints, relativeDeadline uint64, handle Handle) (*Descriptor, error) {
	d := s.newDescriptor(class, c, handle)
	now := s.clock.Now()

	switch cc := c.(type) {
	case *PeriodicConstraints:
		d.Deadline = now + cc.Period
	case *SporadicConstraints:
		d.Deadline = now + relativeDeadline
	case *AperiodicConstraints:
		d.Deadline = 0
	}

	if err := s.arrival.Enqueue(d); err != nil {
		s.cfg.logger.Warn("arrival queue full, dropping new thread", "thread", d.ID)
		s.cfg.metrics.IncrCounter(metricQueueFull, 1)
		return nil, err
	}
	return d, nil
}

// Exit marks d ToBeRemoved and pushes it onto the exited queue for the
// housekeeper to reap. The ToBeRemoved marker is lock-free: it may be
// observed by a heap/ring Dequeue on another queue before the
// housekeeper gets to it, in which case that dequeue transparently
// skips it (spec §4.1, §5).
func (s *Scheduler) Exit(d *Descriptor) error {
	d.markToBeRemoved()
	d.priorQueue = d.CurrentQueue
	if err := s.exited.Enqueue(d); err != nil {
		s.cfg.logger.Warn("exited queue full, dropping exit request", "thread", d.ID)
		s.cfg.metrics.IncrCounter(metricQueueFull, 1)
		return err
	}
	return nil
}

// Sleep parks a descriptor on the sleeping ring. Supplements spec §4.7's
// note that the housekeeper takes "no action on waiting/sleeping beyond
// what the surrounding thread system does through exposed wake/sleep
// entries" by supplying those entries.
func (s *Scheduler) Sleep(d *Descriptor) error {
	d.setStatus(Sleeping)
	return s.sleeping.Enqueue(d)
}

// Wake removes d from the sleeping ring and re-parks it directly onto
// runnable or pending by comparing its deadline to now, the same split
// admission uses on acceptance (spec §4.6) — no second admission check,
// d was already Admitted.
func (s *Scheduler) Wake(d *Descriptor) error {
	if err := s.sleeping.RemoveByIdentity(d); err != nil {
		return err
	}
	return s.parkAdmitted(d)
}

// parkAdmitted enqueues an Admitted descriptor the way §4.6 parks a
// freshly accepted candidate: aperiodic always onto aperiodic; sporadic
// always onto runnable (a sporadic job's deadline gates the preemption
// check in the dispatcher, not which queue it starts on); periodic onto
// pending if its deadline is still in the future, runnable otherwise.
// Reused by Wake, which re-parks an already-Admitted descriptor by the
// same rule without repeating admission.
func (s *Scheduler) parkAdmitted(d *Descriptor) error {
	d.setStatus(Admitted)
	switch d.Class {
	case Aperiodic:
		return s.aperiodic.Enqueue(d)
	case Sporadic:
		return s.runnable.Enqueue(d)
	default: // Periodic
		if d.Deadline > s.clock.Now() {
			return s.pending.Enqueue(d)
		}
		return s.runnable.Enqueue(d)
	}
}

// queueByID resolves a QueueID to the concrete Queue backing it, for the
// Enqueue/Dequeue external interface of §6.
func (s *Scheduler) queueByID(id QueueID) Queue {
	switch id {
	case RunnableQueue:
		return s.runnable
	case PendingQueue:
		return s.pending
	case AperiodicQueue:
		return s.aperiodic
	case ArrivalQueue:
		return s.arrival
	case WaitingQueue:
		return s.waiting
	case SleepingQueue:
		return s.sleeping
	case ExitedQueue:
		return s.exited
	default:
		return nil
	}
}

// Enqueue places d onto the named queue.
func (s *Scheduler) Enqueue(id QueueID, d *Descriptor) error {
	q := s.queueByID(id)
	if q == nil {
		return errNotFound(id)
	}
	return q.Enqueue(d)
}

// Dequeue removes and returns the next descriptor from the named queue.
func (s *Scheduler) Dequeue(id QueueID) (*Descriptor, error) {
	q := s.queueByID(id)
	if q == nil {
		return nil, errNotFound(id)
	}
	return q.Dequeue()
}

// Current returns the descriptor currently marked Running on this CPU.
func (s *Scheduler) Current() *Descriptor { return s.current }

// CPU returns the CPU index this instance belongs to.
func (s *Scheduler) CPU() int { return s.cpu }

// LargestPeriodicBySlice returns the admitted periodic thread with the
// largest remaining slice across runnable and pending, mirroring the
// original's max_periodic. Read-only: it never changes dispatch order,
// it exists for load observability.
func (s *Scheduler) LargestPeriodicBySlice() *Descriptor {
	var best *Descriptor
	var bestRemaining uint64
	consider := func(items []*Descriptor) {
		for _, d := range items {
			if d.Class != Periodic {
				continue
			}
			pc := d.Constraints.(*PeriodicConstraints)
			var remaining uint64
			if pc.Slice > d.RunTime {
				remaining = pc.Slice - d.RunTime
			}
			if best == nil || remaining > bestRemaining {
				best, bestRemaining = d, remaining
			}
		}
	}
	consider(s.runnable.Items())
	consider(s.pending.Items())
	return best
}

// PeriodicUtilizationStats returns the current Σ slice/period across
// runnable ∪ pending, and the admission bound it is checked against, in
// units of 1/UtilScale. Mirrors the original's get_avg_per / get_per_util
// advisory queries: observability only, it is not an alternate admission
// path (the actual check lives in admission.go).
func (s *Scheduler) PeriodicUtilizationStats() (current, bound uint64) {
	return periodicUtilization(s.runnable, s.pending, nil), s.cfg.periodicUtilBound
}
