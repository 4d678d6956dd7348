// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtsched

// periodicUtilization sums slice·UtilScale/period over runnable ∪
// pending, plus candidate if non-nil (spec §4.6: Σ slice/period ≤
// PeriodicUtilBound, units of 1/UtilScale).
func periodicUtilization(runnable, pending *heapQueue, candidate *Descriptor) uint64 {
	var total uint64
	add := func(d *Descriptor) {
		if d.Class != Periodic {
			return
		}
		pc := d.Constraints.(*PeriodicConstraints)
		if pc.Period == 0 {
			return
		}
		total += pc.Slice * UtilScale / pc.Period
	}
	for _, d := range runnable.Items() {
		add(d)
	}
	for _, d := range pending.Items() {
		add(d)
	}
	if candidate != nil {
		add(candidate)
	}
	return total
}

// sporadicUtilization sums work·UtilScale/(deadline-now) over runnable's
// sporadic members, plus candidate if non-nil (spec §4.6: Σ
// work/(deadline-now) ≤ SporadicUtilBound).
func sporadicUtilization(runnable *heapQueue, now uint64, candidate *Descriptor) uint64 {
	var total uint64
	add := func(d *Descriptor) {
		if d.Class != Sporadic {
			return
		}
		sc := d.Constraints.(*SporadicConstraints)
		relative := uint64(1)
		if d.Deadline > now {
			relative = d.Deadline - now
		}
		total += sc.Work * UtilScale / relative
	}
	for _, d := range runnable.Items() {
		add(d)
	}
	if candidate != nil {
		add(candidate)
	}
	return total
}

// Admit runs the admission controller of spec §4.6 against a candidate
// descriptor drained from the arrival queue. On acceptance the
// descriptor is marked Admitted and parked by parkAdmitted: periodic on
// pending or runnable by deadline, sporadic on runnable, aperiodic on
// aperiodic.
func (s *Scheduler) Admit(d *Descriptor) (bool, error) {
	switch d.Class {
	case Periodic:
		total := periodicUtilization(s.runnable, s.pending, d)
		if total > s.cfg.periodicUtilBound {
			s.cfg.logger.Warn("admission denied: periodic utilization bound exceeded",
				"thread", d.ID, "util", total, "bound", s.cfg.periodicUtilBound)
			s.cfg.metrics.IncrCounter(metricAdmissionDenied, 1)
			return false, errAdmissionDenied()
		}
	case Sporadic:
		now := s.clock.Now()
		total := sporadicUtilization(s.runnable, now, d)
		if total > s.cfg.sporadicUtilBound {
			s.cfg.logger.Warn("admission denied: sporadic utilization bound exceeded",
				"thread", d.ID, "util", total, "bound", s.cfg.sporadicUtilBound)
			s.cfg.metrics.IncrCounter(metricAdmissionDenied, 1)
			return false, errAdmissionDenied()
		}
	case Aperiodic:
		// always accepted, no bound to check (spec §4.6).
	}

	if err := s.parkAdmitted(d); err != nil {
		return false, err
	}
	s.cfg.metrics.IncrCounter(metricAdmissionOK, 1)
	return true, nil
}
