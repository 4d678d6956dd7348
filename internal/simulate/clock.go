// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package simulate supplies fake collaborators — clock, one-shot timer,
// thread handle — for driving a Scheduler outside of a real kernel. It
// is the folded-back replacement for the duplicate "simulator" dispatch
// copy the original carried (spec §9): it never re-implements dispatch,
// it only fakes the things reschedule() calls out to.
package simulate

// Clock is a manually-advanced monotonic tick counter implementing
// rtsched.Clock.
type Clock struct {
	now uint64
}

// NewClock returns a Clock starting at the given tick.
func NewClock(start uint64) *Clock {
	return &Clock{now: start}
}

// Now implements rtsched.Clock.
func (c *Clock) Now() uint64 { return c.now }

// Advance moves the clock forward by ticks and returns the new value.
func (c *Clock) Advance(ticks uint64) uint64 {
	c.now += ticks
	return c.now
}

// Set pins the clock to an absolute tick value, for jumping straight to
// a scenario's interesting instant.
func (c *Clock) Set(ticks uint64) { c.now = ticks }
