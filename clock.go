// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtsched

// Clock reads the CPU-local monotonic cycle counter. Out of scope per
// spec §1: the core only ever reads it, it never owns the hardware.
type Clock interface {
	Now() uint64
}

// OneShotTimer programs the CPU-local interrupt controller's one-shot
// timer. Ticks is relative to the call, not absolute.
type OneShotTimer interface {
	Arm(ticks uint64)
}
