// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtsched

import "github.com/hashicorp/go-multierror"

// RegisterHousekeeper creates the housekeeper descriptor (spec §4.7): a
// long-running periodic thread, scheduled through the same dispatcher as
// any other thread, whose body is RunHousekeeperPass. The caller's
// driver loop is expected to invoke RunHousekeeperPass whenever
// Reschedule hands back the housekeeper's handle.
// RegisterHousekeeper takes the new descriptor straight off the arrival
// queue and runs it through Admit itself (utilization check included):
// the housekeeper has to be runnable before its own first release can
// drain the arrival queue, so it cannot wait on itself to admit it.
func (s *Scheduler) RegisterHousekeeper(period, slice uint64, handle Handle) (*Descriptor, error) {
	d, err := s.Create(Periodic, &PeriodicConstraints{Period: period, Slice: slice}, 0, handle)
	if err != nil {
		return nil, err
	}
	if err := s.arrival.RemoveByIdentity(d); err != nil {
		return nil, err
	}
	if _, err := s.Admit(d); err != nil {
		return nil, err
	}
	s.housekeeper = d
	return d, nil
}

// Housekeeper returns the registered housekeeper descriptor, or nil if
// RegisterHousekeeper has not been called.
func (s *Scheduler) Housekeeper() *Descriptor { return s.housekeeper }

// RunHousekeeperPass performs one release's worth of housekeeping (spec
// §4.7): drain arrival through admission, drain exited by removing each
// descriptor from whichever queue it is parked on and freeing it. Errors
// encountered along the way are non-fatal; every one is accumulated into
// the returned multierror rather than aborting the drain partway through.
func (s *Scheduler) RunHousekeeperPass() error {
	var result *multierror.Error

	for {
		d, err := s.arrival.Dequeue()
		if err != nil {
			break
		}
		if _, admitErr := s.Admit(d); admitErr != nil {
			result = multierror.Append(result, admitErr)
		}
	}

	// The exited ring is drained from its head by identity, not through
	// Dequeue: every entry was marked ToBeRemoved by Exit, and Dequeue's
	// transitive skip would discard each one without reaping it.
	for s.exited.Len() > 0 {
		d := s.exited.items[s.exited.head]
		if err := s.exited.RemoveByIdentity(d); err != nil {
			result = multierror.Append(result, err)
			break
		}
		if removeErr := s.removeFromCurrentQueue(d); removeErr != nil {
			result = multierror.Append(result, removeErr)
		}
		d.setStatus(Removed)
		s.freeDescriptor(d)
	}

	return result.ErrorOrNil()
}

// removeFromCurrentQueue removes d from whichever queue it was parked on
// at the moment Exit() was called (captured in priorQueue, since pushing
// d onto the exited ring itself overwrites CurrentQueue). A descriptor
// that was Running when it called Exit on itself has nothing to remove
// (priorQueue == NoQueue); same for one the dispatcher's ToBeRemoved
// transitive skip already reaped off its queue before the housekeeper
// got here.
func (s *Scheduler) removeFromCurrentQueue(d *Descriptor) error {
	q := s.queueByID(d.priorQueue)
	if q == nil {
		return nil
	}
	if err := q.RemoveByIdentity(d); err != nil {
		if IsKind(err, KindNotFound) {
			// already reaped via the transitive skip path; not an error.
			return nil
		}
		return err
	}
	return nil
}

// freeDescriptor releases the arena slot backing d. The core keeps no
// free-list of its own: Go's allocator reclaims the Descriptor once the
// last queue reference (and the caller's) is gone.
func (s *Scheduler) freeDescriptor(d *Descriptor) {
	d.Handle = nil
}
