// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtsched

// Reschedule is the dispatcher entry point of spec §4.2: the only place
// the processor's next owner is decided and the one-shot timer is
// reprogrammed. It must be entered only from a reschedule point (timer
// interrupt, voluntary yield, blocking call) with local interrupts
// disabled; re-entry is strictly sequential within a CPU (spec §5).
func (s *Scheduler) Reschedule() Handle {
	now := s.clock.Now()
	cur := s.current

	if cur != nil {
		cur.RunTime += now - cur.StartTime
		cur.ExitTime = now
	}

	s.drainPendingReleases(now)

	var next *Descriptor
	switch {
	case cur == nil:
		next = s.pickRunnableElseAperiodic()
	case cur.Status() == ToBeRemoved:
		// cur called Exit on itself: it must never be re-tagged and
		// re-enqueued by selectNext, which would clear its removal
		// intent and resurrect it onto a live queue (spec §4.1, §5).
		next = s.pickRunnableElseAperiodic()
	default:
		next = s.selectNext(cur, now)
	}

	s.programTimer(next, now)
	next.StartTime = now
	next.setStatus(Running)
	s.current = next

	s.cfg.metrics.IncrCounter(metricDispatch, 1)
	return next.Handle
}

// drainPendingReleases promotes every pending thread whose deadline has
// arrived onto runnable, applying a periodic re-release to each (spec
// §4.2 step 2). Pending only ever holds Periodic descriptors (§4.6).
//
// The pre-Dequeue Peek only bounds which root we intend to promote; it
// is not a guarantee of which descriptor Dequeue actually returns.
// Dequeue's transitive ToBeRemoved skip can silently reap the peeked
// root and hand back a later, not-yet-due descriptor instead. Re-check
// the deadline against the one Dequeue actually returned and re-enqueue
// it without releasing if it turns out not to be due yet (I5/P5).
func (s *Scheduler) drainPendingReleases(now uint64) {
	for {
		root, ok := s.pending.Peek()
		if !ok || root.Deadline > now {
			return
		}
		d, err := s.pending.Dequeue()
		if err != nil {
			// the peeked root was a ToBeRemoved descriptor the
			// transitive skip just reaped; nothing left to promote.
			return
		}
		if d.Deadline > now {
			// the transitive skip reaped the peeked root and returned a
			// later descriptor that isn't due yet; put it back and stop.
			if err := s.pending.Enqueue(d); err != nil {
				s.cfg.logger.Warn("pending queue full re-enqueuing not-yet-due thread", "thread", d.ID)
				s.cfg.metrics.IncrCounter(metricQueueFull, 1)
			}
			return
		}
		s.periodicRelease(d, now)
		d.setStatus(Admitted)
		if err := s.runnable.Enqueue(d); err != nil {
			s.cfg.logger.Warn("runnable queue full during release drain, dropping thread",
				"thread", d.ID)
			s.cfg.metrics.IncrCounter(metricQueueFull, 1)
		}
	}
}

// periodicRelease implements spec §4.3: deadline <- now + period,
// run_time <- 0.
func (s *Scheduler) periodicRelease(d *Descriptor, now uint64) {
	pc := d.Constraints.(*PeriodicConstraints)
	d.Deadline = now + pc.Period
	d.RunTime = 0
}

// deadlineMissed implements the check of spec §4.4: missed iff
// exit_time > deadline.
func deadlineMissed(d *Descriptor) bool {
	return d.ExitTime > d.Deadline
}

// selectNext dispatches on cur's class per spec §4.2 step 3.
func (s *Scheduler) selectNext(cur *Descriptor, now uint64) *Descriptor {
	switch c := cur.Constraints.(type) {
	case *AperiodicConstraints:
		return s.selectFromAperiodic(cur, c)
	case *SporadicConstraints:
		return s.selectFromSporadic(cur, c, now)
	case *PeriodicConstraints:
		return s.selectFromPeriodic(cur, c, now)
	default:
		panicFatal("descriptor with unrecognized constraints class")
		return nil
	}
}

func (s *Scheduler) selectFromAperiodic(cur *Descriptor, c *AperiodicConstraints) *Descriptor {
	// re-tag priority to accumulated run time: the thread that has
	// received the least CPU wins the next aperiodic turn.
	c.Priority = cur.RunTime
	cur.setStatus(Admitted)
	if err := s.aperiodic.Enqueue(cur); err != nil {
		// aperiodic is full: silently drop, the bootstrap fallback is
		// always present elsewhere in the queue (spec §7).
		s.cfg.logger.Debug("aperiodic queue full, dropping preempted thread", "thread", cur.ID)
	}

	if s.runnable.Len() > 0 {
		if d, err := s.runnable.Dequeue(); err == nil {
			return d
		}
	}
	d, err := s.aperiodic.Dequeue()
	if err != nil {
		panicFatal("aperiodic queue empty at dispatch: no eligible thread to run")
	}
	return d
}

func (s *Scheduler) selectFromSporadic(cur *Descriptor, c *SporadicConstraints, now uint64) *Descriptor {
	if cur.RunTime >= c.Work {
		if deadlineMissed(cur) {
			s.cfg.metrics.IncrCounter(metricDeadlineMissSpo, 1)
			s.cfg.logger.Warn("sporadic job missed its deadline", "thread", cur.ID,
				"deadline", cur.Deadline, "exit_time", cur.ExitTime)
		}
		// job complete; sporadic jobs are never auto-released (I4).
		return s.pickRunnableElseAperiodic()
	}

	if root, ok := s.runnable.Peek(); ok && root.Deadline < cur.Deadline {
		cur.setStatus(Admitted)
		if err := s.runnable.Enqueue(cur); err != nil {
			s.cfg.logger.Warn("runnable queue full, dropping preempted sporadic thread", "thread", cur.ID)
			s.cfg.metrics.IncrCounter(metricQueueFull, 1)
			return s.pickRunnableElseAperiodic()
		}
		return s.pickRunnableElseAperiodic()
	}
	return cur
}

func (s *Scheduler) selectFromPeriodic(cur *Descriptor, c *PeriodicConstraints, now uint64) *Descriptor {
	if cur.RunTime >= c.Slice {
		if deadlineMissed(cur) {
			s.cfg.metrics.IncrCounter(metricDeadlineMissPer, 1)
			s.cfg.logger.Warn("periodic thread missed its deadline, parking until next period",
				"thread", cur.ID, "deadline", cur.Deadline, "exit_time", cur.ExitTime)
			cur.setStatus(Admitted)
			if err := s.pending.Enqueue(cur); err != nil {
				s.cfg.logger.Warn("pending queue full, dropping periodic thread", "thread", cur.ID)
				s.cfg.metrics.IncrCounter(metricQueueFull, 1)
			}
		} else {
			s.periodicRelease(cur, now)
			cur.setStatus(Admitted)
			if err := s.runnable.Enqueue(cur); err != nil {
				s.cfg.logger.Warn("runnable queue full, dropping re-released periodic thread", "thread", cur.ID)
				s.cfg.metrics.IncrCounter(metricQueueFull, 1)
			}
		}
		return s.pickRunnableElseAperiodic()
	}

	if root, ok := s.runnable.Peek(); ok && root.Deadline < cur.Deadline {
		cur.setStatus(Admitted)
		if err := s.runnable.Enqueue(cur); err != nil {
			s.cfg.logger.Warn("runnable queue full, dropping preempted periodic thread", "thread", cur.ID)
			s.cfg.metrics.IncrCounter(metricQueueFull, 1)
			return s.pickRunnableElseAperiodic()
		}
		return s.pickRunnableElseAperiodic()
	}
	return cur
}

// pickRunnableElseAperiodic implements the fallback chain used
// throughout §4.2: prefer runnable, else aperiodic. An aperiodic queue
// that turns up empty too is a fatal, unrecoverable condition — the
// bootstrap/idle descriptor must always be present there.
func (s *Scheduler) pickRunnableElseAperiodic() *Descriptor {
	if s.runnable.Len() > 0 {
		if d, err := s.runnable.Dequeue(); err == nil {
			return d
		}
		// every runnable entry was ToBeRemoved and transitively
		// skipped away; fall through exactly as if it were empty.
	}
	d, err := s.aperiodic.Dequeue()
	if err != nil {
		panicFatal("aperiodic queue empty at dispatch: no eligible thread to run")
	}
	return d
}
