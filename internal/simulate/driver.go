// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package simulate

import (
	"fmt"

	"github.com/cnotch/rtsched"
)

// Step is one recorded dispatcher decision, for demo output and test
// assertions against a run's trace.
type Step struct {
	Now     uint64
	Picked  *rtsched.Descriptor
	Handle  rtsched.Handle
	Armed   uint64
}

// Driver ties a Scheduler to a fake Clock/Timer and repeatedly calls
// Reschedule, advancing the clock by whatever interval was last armed.
// It never duplicates dispatch logic itself — every decision comes out
// of Scheduler.Reschedule; Driver only supplies the next collaborator
// call (§9: "a single dispatcher suffices").
type Driver struct {
	Sched *rtsched.Scheduler
	Clock *Clock
	Timer *Timer

	Housekeeper *rtsched.Descriptor // optional; RunHousekeeperPass runs when picked
}

// NewDriver wires a Scheduler already constructed with clock/timer into
// a Driver for stepping.
func NewDriver(sched *rtsched.Scheduler, clock *Clock, timer *Timer) *Driver {
	return &Driver{Sched: sched, Clock: clock, Timer: timer}
}

// Step advances one dispatcher cycle: call Reschedule, run the
// housekeeper body if it was picked, then advance the clock by the
// interval just armed so the next Step lands exactly when the timer
// would have fired. A zero interval advances the clock by one tick, so
// the run always moves forward.
func (d *Driver) Step() Step {
	before := d.Sched.Current()
	handle := d.Sched.Reschedule()
	now := d.Clock.Now()
	picked := d.Sched.Current()

	if d.Housekeeper != nil && picked == d.Housekeeper {
		_ = d.Sched.RunHousekeeperPass()
	}

	_ = before
	armed := d.Timer.Last()
	if armed == 0 {
		armed = 1
	}
	d.Clock.Advance(armed)

	return Step{Now: now, Picked: picked, Handle: handle, Armed: armed}
}

// Run calls Step n times, returning every step's trace.
func (d *Driver) Run(n int) []Step {
	steps := make([]Step, 0, n)
	for i := 0; i < n; i++ {
		steps = append(steps, d.Step())
	}
	return steps
}

// String renders a Step for human-readable demo output.
func (s Step) String() string {
	name := fmt.Sprintf("%v", s.Handle)
	if s.Picked != nil {
		return fmt.Sprintf("t=%-8d picked=%-20s deadline=%d armed=%d", s.Now, name, s.Picked.Deadline, s.Armed)
	}
	return fmt.Sprintf("t=%-8d picked=%-20s armed=%d", s.Now, name, s.Armed)
}
